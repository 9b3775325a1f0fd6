package wizard

import (
	"fmt"
	"strings"
)

// BundleError lists the structural problems found while compiling a definition.
type BundleError struct {
	WizardID string
	Problems []string
}

func (e *BundleError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("bundle %q: %s", e.WizardID, e.Problems[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "bundle %q: %d problems:\n", e.WizardID, len(e.Problems))
	for i, p := range e.Problems {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, p)
	}
	return sb.String()
}

func (e *BundleError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}
