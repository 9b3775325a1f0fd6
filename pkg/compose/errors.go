package compose

import "fmt"

// ComposeError wraps a failure while producing a document.
type ComposeError struct {
	WizardID string
	Stage    string // "parse", "execute" or "layout"
	Err      error
}

func (e *ComposeError) Error() string {
	return fmt.Sprintf("compose %q (%s): %v", e.WizardID, e.Stage, e.Err)
}

func (e *ComposeError) Unwrap() error { return e.Err }
