package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/writ/internal/logging"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/ports"
)

// ErrAborted is returned when the user quits before the wizard completes.
var ErrAborted = errors.New("wizard aborted by user")

// Wizard is the subset of engine operations the runner drives.
type Wizard interface {
	Render(ctx context.Context, state *domain.State) (*domain.SectionView, error)
	RecordAnswer(ctx context.Context, state *domain.State, questionID, value string) (*domain.State, error)
	SetField(ctx context.Context, state *domain.State, questionID, field, value string) (*domain.State, error)
	AddRow(ctx context.Context, state *domain.State, questionID string) (*domain.State, error)
	UpdateRow(ctx context.Context, state *domain.State, questionID string, index int, field, value string) (*domain.State, error)
	Advance(ctx context.Context, state *domain.State) (*domain.State, error)
	Retreat(ctx context.Context, state *domain.State) (*domain.State, error)
}

// Submitter finishes a completed wizard with contact capture.
type Submitter interface {
	Submit(ctx context.Context, state *domain.State, contact domain.Contact) (*domain.GeneratedDocument, *domain.State, error)
}

// Runner handles the interactive loop of a wizard using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (forms vs lines).
type Runner struct {
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter. If nil, sessions are ephemeral.
	Store ports.StateStore

	MaxAttempts int
}

// NewRunner creates a Runner. Without a handler it reads lines from stdin.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{MaxAttempts: 3}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run fills sections until the wizard completes and returns the final state.
// The state reached so far is returned alongside any error, including ErrAborted.
func (r *Runner) Run(ctx context.Context, w Wizard, state *domain.State) (*domain.State, error) {
	log := r.Logger.With("session_id", state.SessionID, "wizard", state.WizardID)

	for !state.Complete {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		view, err := w.Render(ctx, state)
		if err != nil {
			return state, err
		}
		if err := r.Handler.Section(ctx, view); err != nil {
			return state, err
		}

		state, err = r.fill(ctx, w, state)
		r.save(ctx, log, state)
		if err != nil {
			return state, err
		}

		view, err = w.Render(ctx, state)
		if err != nil {
			return state, err
		}
		action, err := r.Handler.Navigate(ctx, view)
		if err != nil {
			return state, err
		}

		switch action {
		case ActionQuit:
			return state, ErrAborted
		case ActionBack:
			state, err = w.Retreat(ctx, state)
		default:
			var next *domain.State
			next, err = w.Advance(ctx, state)
			if errors.Is(err, domain.ErrValidationPending) {
				log.Debug("section pending", "section", state.CurrentSectionID)
				if err := r.Handler.Notify(ctx, "Some required answers are missing or invalid."); err != nil {
					return state, err
				}
				continue
			}
			if err == nil {
				state = next
			}
		}
		if err != nil {
			return state, err
		}
		r.save(ctx, log, state)
	}
	return state, nil
}

// fill asks every visible question of the current section once. The view is
// re-rendered after each answer so questions revealed by it are asked too.
func (r *Runner) fill(ctx context.Context, w Wizard, state *domain.State) (*domain.State, error) {
	asked := make(map[string]bool)
	for {
		view, err := w.Render(ctx, state)
		if err != nil {
			return state, err
		}

		var q *domain.QuestionView
		for i := range view.Questions {
			if !asked[view.Questions[i].ID] {
				q = &view.Questions[i]
				break
			}
		}
		if q == nil {
			return state, nil
		}
		asked[q.ID] = true

		switch q.Kind {
		case domain.KindCompositeParty:
			state, err = r.askParty(ctx, w, state, *q)
		case domain.KindCompositeList:
			state, err = r.askRows(ctx, w, state, *q)
		default:
			state, err = r.askScalar(ctx, w, state, *q)
		}
		if err != nil {
			return state, err
		}
	}
}

func (r *Runner) askScalar(ctx context.Context, w Wizard, state *domain.State, q domain.QuestionView) (*domain.State, error) {
	for {
		value, err := r.Handler.Ask(ctx, q)
		if err != nil {
			return state, err
		}
		next, err := w.RecordAnswer(ctx, state, q.ID, value)
		if errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8) {
			if err := r.Handler.Notify(ctx, err.Error()); err != nil {
				return state, err
			}
			continue
		}
		return next, err
	}
}

func (r *Runner) askParty(ctx context.Context, w Wizard, state *domain.State, q domain.QuestionView) (*domain.State, error) {
	for _, f := range q.Fields {
		value, err := r.Handler.AskField(ctx, q, f, q.Party[f.Key])
		if err != nil {
			return state, err
		}
		if state, err = w.SetField(ctx, state, q.ID, f.Key, value); err != nil {
			return state, err
		}
	}
	return state, nil
}

func (r *Runner) askRows(ctx context.Context, w Wizard, state *domain.State, q domain.QuestionView) (*domain.State, error) {
	rows := q.Rows
	for i := 0; ; i++ {
		if i >= len(rows) {
			more, err := r.Handler.Confirm(ctx, fmt.Sprintf("Add another entry to %q?", q.Prompt))
			if err != nil || !more {
				return state, err
			}
			if state, err = w.AddRow(ctx, state, q.ID); err != nil {
				return state, err
			}
			rows = append(rows, nil)
		}

		row := q
		row.Prompt = fmt.Sprintf("%s #%d", q.Prompt, i+1)
		for _, f := range q.Fields {
			value, err := r.Handler.AskField(ctx, row, f, rows[i][f.Key])
			if err != nil {
				return state, err
			}
			if state, err = w.UpdateRow(ctx, state, q.ID, i, f.Key, value); err != nil {
				return state, err
			}
		}
	}
}

// Finish captures the contact and submits the completed wizard. Invalid
// contact details are asked again; persistence and generation failures are
// retried on request up to MaxAttempts.
func (r *Runner) Finish(ctx context.Context, s Submitter, state *domain.State) (*domain.GeneratedDocument, *domain.State, error) {
	log := r.Logger.With("session_id", state.SessionID, "wizard", state.WizardID)
	contact := domain.Contact{}
	failures := 0

	for {
		var err error
		if contact, err = r.askContact(ctx, contact); err != nil {
			return nil, state, err
		}

		doc, next, err := s.Submit(ctx, state, contact)
		if err == nil {
			r.save(ctx, log, next)
			return doc, next, nil
		}

		var cerr *domain.ContactError
		if errors.As(err, &cerr) {
			if err := r.Handler.Notify(ctx, cerr.Error()); err != nil {
				return nil, state, err
			}
			continue
		}

		var perr *domain.PersistenceError
		var gerr *domain.GenerationError
		if !errors.As(err, &perr) && !errors.As(err, &gerr) {
			return nil, state, err
		}
		failures++
		log.Warn("submit failed", "attempt", failures, "err", err)
		if failures >= r.MaxAttempts {
			return nil, state, err
		}
		if err := r.Handler.Notify(ctx, err.Error()); err != nil {
			return nil, state, err
		}
		retry, askErr := r.Handler.Confirm(ctx, "Try again?")
		if askErr != nil {
			return nil, state, askErr
		}
		if !retry {
			return nil, state, err
		}
	}
}

func (r *Runner) askContact(ctx context.Context, prev domain.Contact) (domain.Contact, error) {
	name, err := r.Handler.Ask(ctx, domain.QuestionView{
		Question: domain.Question{ID: "full_name", Kind: domain.KindText, Prompt: "Your full name"},
		Value:    prev.FullName,
	})
	if err != nil {
		return prev, err
	}
	email, err := r.Handler.Ask(ctx, domain.QuestionView{
		Question: domain.Question{ID: "email", Kind: domain.KindEmail, Prompt: "Your email address"},
		Value:    prev.Email,
	})
	if err != nil {
		return prev, err
	}
	return domain.Contact{FullName: name, Email: email, UserAgent: "writ-cli"}, nil
}

func (r *Runner) save(ctx context.Context, log *slog.Logger, state *domain.State) {
	if r.Store == nil || state == nil {
		return
	}
	if err := r.Store.Save(ctx, state.SessionID, state); err != nil {
		log.Error("failed to save session", "err", err)
	}
}
