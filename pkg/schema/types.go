package schema

import (
	"fmt"
	"math"
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of date answers.
const DateLayout = "2006-01-02"

// Type defines the contract for answer validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "text", "email").
	Name() string
	// Validate checks if a non-blank value conforms to this type.
	Validate(value string) error
}

// TextType accepts any non-blank value.
type TextType struct{}

func (t *TextType) Name() string { return "text" }

func (t *TextType) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("must not be blank")
	}
	return nil
}

// NumberType accepts decimal numbers. Thousands separators are tolerated.
type NumberType struct{}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(value string) error {
	if _, err := ParseNumber(value); err != nil {
		return fmt.Errorf("expected a number, got %q", value)
	}
	return nil
}

// DateType accepts ISO dates (YYYY-MM-DD).
type DateType struct{}

func (t *DateType) Name() string { return "date" }

func (t *DateType) Validate(value string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("expected a date as YYYY-MM-DD, got %q", value)
	}
	return nil
}

// EmailType accepts plausible e-mail addresses.
type EmailType struct{}

func (t *EmailType) Name() string { return "email" }

func (t *EmailType) Validate(value string) error {
	if !PlausibleEmail(value) {
		return fmt.Errorf("expected an e-mail address, got %q", value)
	}
	return nil
}

// PhoneType accepts numbers with at least seven digits and common punctuation.
type PhoneType struct{}

func (t *PhoneType) Name() string { return "phone" }

func (t *PhoneType) Validate(value string) error {
	digits := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune(" +-().", r):
		default:
			return fmt.Errorf("unexpected character %q in phone number", r)
		}
	}
	if digits < 7 {
		return fmt.Errorf("phone number needs at least 7 digits")
	}
	return nil
}

// ChoiceType accepts one of a fixed set of options.
type ChoiceType struct {
	options []string
}

func (t *ChoiceType) Name() string { return "choice" }

func (t *ChoiceType) Validate(value string) error {
	if !slices.Contains(t.options, value) {
		return fmt.Errorf("%q is not one of %s", value, strings.Join(t.options, ", "))
	}
	return nil
}

// ConfirmationType accepts an affirmative answer.
type ConfirmationType struct{}

func (t *ConfirmationType) Name() string { return "confirmation" }

func (t *ConfirmationType) Validate(value string) error {
	if !IsAffirmative(value) {
		return fmt.Errorf("must be confirmed")
	}
	return nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(string) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value string) error {
	return t.validate(value)
}

// --- Factory Functions ---

// Text creates a non-blank text validator.
func Text() Type { return &TextType{} }

// Number creates a decimal number validator.
func Number() Type { return &NumberType{} }

// Date creates an ISO date validator.
func Date() Type { return &DateType{} }

// Email creates an e-mail validator.
func Email() Type { return &EmailType{} }

// Phone creates a phone number validator.
func Phone() Type { return &PhoneType{} }

// OneOf creates a validator accepting only the given options.
// With no options every value is accepted as plain text.
func OneOf(options ...string) Type {
	if len(options) == 0 {
		return Text()
	}
	return &ChoiceType{options: slices.Clone(options)}
}

// Confirmation creates a validator for acknowledgment checkboxes.
func Confirmation() Type { return &ConfirmationType{} }

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(string) error) Type {
	return &CustomType{name: name, validate: validate}
}

// PlausibleEmail reports whether s looks like a deliverable address:
// a bare addr-spec with a dotted domain.
func PlausibleEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// IsAffirmative reports whether a confirmation answer is set.
func IsAffirmative(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true":
		return true
	}
	return false
}

// ParseNumber parses a decimal answer, ignoring surrounding blanks,
// thousands separators and a leading currency sign. NaN and infinities are
// rejected.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return n, nil
}
