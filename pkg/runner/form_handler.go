package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/aretw0/writ/pkg/domain"
)

// FormHandler drives the wizard with huh forms, one form per prompt.
// When stdin is not a terminal the forms fall back to accessible mode.
type FormHandler struct {
	Writer     io.Writer
	Renderer   ContentRenderer
	Accessible bool
	Theme      *huh.Theme
}

// NewFormHandler creates a form handler writing section headers to w.
func NewFormHandler(w io.Writer, renderer ContentRenderer) *FormHandler {
	if w == nil {
		w = os.Stdout
	}
	return &FormHandler{
		Writer:     w,
		Renderer:   renderer,
		Accessible: !term.IsTerminal(int(os.Stdin.Fd())),
		Theme:      huh.ThemeDracula(),
	}
}

func (h *FormHandler) run(ctx context.Context, fields ...huh.Field) error {
	form := huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(h.Theme).
		WithAccessible(h.Accessible)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

// Section prints the section title and its rendered description.
func (h *FormHandler) Section(ctx context.Context, view *domain.SectionView) error {
	fmt.Fprintf(h.Writer, "\n%s  (%d/%d)\n", view.Title, view.Step, view.Total)
	if view.Description == "" {
		return nil
	}
	desc := view.Description
	if h.Renderer != nil {
		if rendered, err := h.Renderer(desc); err == nil {
			desc = rendered
		}
	}
	fmt.Fprintln(h.Writer, strings.TrimSpace(desc))
	return nil
}

// Ask picks the widget from the question kind.
func (h *FormHandler) Ask(ctx context.Context, q domain.QuestionView) (string, error) {
	value := q.Value

	switch {
	case q.Kind == domain.KindConfirmation:
		yes := value == domain.AnswerYes
		err := h.run(ctx, huh.NewConfirm().
			Title(q.Prompt).
			Description(q.Help).
			Affirmative("Yes").
			Negative("No").
			Value(&yes))
		if err != nil {
			return "", err
		}
		if yes {
			return domain.AnswerYes, nil
		}
		return domain.AnswerNo, nil

	case len(q.Choices) > 0:
		opts := make([]huh.Option[string], len(q.Choices))
		for i, c := range q.Choices {
			opts[i] = huh.NewOption(c.Label, c.Value)
		}
		err := h.run(ctx, huh.NewSelect[string]().
			Title(q.Prompt).
			Description(q.Help).
			Options(opts...).
			Value(&value))
		return value, err

	case q.Kind == domain.KindTextarea:
		err := h.run(ctx, huh.NewText().
			Title(q.Prompt).
			Description(q.Help).
			Placeholder(q.Placeholder).
			Value(&value))
		return value, err

	default:
		err := h.run(ctx, huh.NewInput().
			Title(q.Prompt).
			Description(q.Help).
			Placeholder(q.Placeholder).
			Validate(validatorFor(q.Kind)).
			Value(&value))
		return value, err
	}
}

// AskField reads one field of a composite record.
func (h *FormHandler) AskField(ctx context.Context, q domain.QuestionView, f domain.Field, current string) (string, error) {
	value := current
	err := h.run(ctx, huh.NewInput().
		Title(f.Label).
		Description(q.Prompt).
		Validate(validatorFor(f.Kind)).
		Value(&value))
	return value, err
}

// Confirm asks a yes/no question.
func (h *FormHandler) Confirm(ctx context.Context, prompt string) (bool, error) {
	var yes bool
	err := h.run(ctx, huh.NewConfirm().Title(prompt).Value(&yes))
	return yes, err
}

// Navigate offers next, back and quit.
func (h *FormHandler) Navigate(ctx context.Context, view *domain.SectionView) (Action, error) {
	next := "Continue"
	if view.Terminal {
		next = "Finish"
	}
	opts := []huh.Option[Action]{huh.NewOption(next, ActionNext)}
	if view.CanRetreat {
		opts = append(opts, huh.NewOption("Back", ActionBack))
	}
	opts = append(opts, huh.NewOption("Save and quit", ActionQuit))

	action := ActionNext
	if err := h.run(ctx, huh.NewSelect[Action]().Options(opts...).Value(&action)); err != nil {
		return ActionQuit, err
	}
	return action, nil
}

// Notify prints a system message.
func (h *FormHandler) Notify(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "› %s\n", msg)
	return err
}

func validatorFor(kind domain.QuestionKind) func(string) error {
	switch kind {
	case domain.KindNumber:
		return func(s string) error {
			if s == "" {
				return nil
			}
			if _, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err != nil {
				return errors.New("enter a number")
			}
			return nil
		}
	case domain.KindEmail:
		return func(s string) error {
			if s == "" {
				return nil
			}
			if _, err := mail.ParseAddress(s); err != nil {
				return errors.New("enter a valid email address")
			}
			return nil
		}
	}
	return func(string) error { return nil }
}
