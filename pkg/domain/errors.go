package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrWizardNotFound is returned when no bundle is registered under a wizard id.
var ErrWizardNotFound = errors.New("wizard not found")

// ErrValidationPending is returned by Advance while the current section does not
// validate. It is expected steady state, not a failure; the state is unchanged.
var ErrValidationPending = errors.New("section requirements not met")

// ErrUnknownQuestion is returned when an answer targets a question the bundle does not declare.
var ErrUnknownQuestion = errors.New("unknown question")

// ErrUnknownField is returned when a composite write targets a field the question does not declare.
var ErrUnknownField = errors.New("unknown field")

// ErrSectionNotFound is returned when a state points at a section the bundle does not declare.
var ErrSectionNotFound = errors.New("section not found")

// ErrCompositeQuestion is returned when a scalar write targets a composite question, or the reverse.
var ErrCompositeQuestion = errors.New("question kind does not accept this value")

// ErrMinimumRows is returned when removing the last remaining row of a list.
var ErrMinimumRows = errors.New("a list must keep at least one row")

// ErrRowIndex is returned for a row index outside the list.
var ErrRowIndex = errors.New("row index out of range")

// ErrNotInSection is returned when an answer targets a question the current
// section does not show.
var ErrNotInSection = errors.New("question is not asked in the current section")

// ErrWizardComplete is returned when an answer is written after the terminal
// section was passed. Retreat first to edit.
var ErrWizardComplete = errors.New("wizard is complete")

// ErrNotComplete is returned when contact capture is attempted before the terminal section was passed.
var ErrNotComplete = errors.New("wizard is not complete")

// NavigationError reports a section graph that points at a missing section.
// The state is left unchanged when it is returned.
type NavigationError struct {
	WizardID string
	From     string
	To       string
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("wizard %q: section %q points to unknown section %q", e.WizardID, e.From, e.To)
}

// ContactError lists the contact fields that failed client-side validation.
type ContactError struct {
	Fields map[string]string
}

func (e *ContactError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, key := range []string{"full_name", "email"} {
		if msg, ok := e.Fields[key]; ok {
			parts = append(parts, key+": "+msg)
		}
	}
	return "invalid contact: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a contact sink failure. Document generation is withheld.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to record contact: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// GenerationError wraps a composition or file-writing failure. The session stays
// complete so generation can be retried.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate document: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
