package runner

import (
	"context"

	"github.com/aretw0/writ/pkg/domain"
)

// Action is the navigation choice made at the end of a section.
type Action int

const (
	ActionNext Action = iota
	ActionBack
	ActionQuit
)

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a {
	case ActionBack:
		return "back"
	case ActionQuit:
		return "quit"
	default:
		return "next"
	}
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between form-based (huh) and line-based modes.
type IOHandler interface {
	// Section presents the heading of the section about to be filled.
	Section(ctx context.Context, view *domain.SectionView) error

	// Ask reads a scalar answer. q.Value carries the stored answer.
	Ask(ctx context.Context, q domain.QuestionView) (string, error)

	// AskField reads one field of a party record or list row.
	AskField(ctx context.Context, q domain.QuestionView, f domain.Field, current string) (string, error)

	// Confirm asks a yes/no question outside the wizard answers.
	Confirm(ctx context.Context, prompt string) (bool, error)

	// Navigate asks where to go once the section has been filled.
	Navigate(ctx context.Context, view *domain.SectionView) (Action, error)

	// Notify prints a system message.
	Notify(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
