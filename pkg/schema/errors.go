package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is one rejected field. Value is empty when the field was
// missing or blank.
type ValidationError struct {
	Key    string
	Reason string
	Value  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
}

// FieldErrors collects every failure of one validation pass, in field order.
type FieldErrors []*ValidationError

func (fe FieldErrors) Error() string {
	if len(fe) == 1 {
		return fe[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(fe))
	for i, e := range fe {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, e)
	}
	return b.String()
}

// ValidationErrors unwraps err into its field failures, or nil when err did
// not come from Validate or ValidateFields.
func ValidationErrors(err error) []*ValidationError {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// FieldReasons maps each failing field to its reason.
func FieldReasons(err error) map[string]string {
	errs := ValidationErrors(err)
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Key] = e.Reason
	}
	return out
}
