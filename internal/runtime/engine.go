package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/writ/internal/logging"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/wizard"
)

// Engine is the navigation controller of one wizard bundle.
// It holds no session data: every operation takes a state and returns a new
// one, leaving its input untouched.
type Engine struct {
	bundle *wizard.Bundle
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	clock  func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.clock = now
		}
	}
}

// NewEngine creates a new engine bound to a compiled bundle.
func NewEngine(bundle *wizard.Bundle, opts ...EngineOption) *Engine {
	e := &Engine{
		bundle: bundle,
		logger: logging.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("wizard", bundle.ID())
	return e
}

// Bundle returns the compiled bundle driving this engine.
func (e *Engine) Bundle() *wizard.Bundle {
	return e.bundle
}

// Inspect returns the sections in declaration order.
func (e *Engine) Inspect() []domain.Section {
	return e.bundle.Sections()
}

// Start creates the initial state for a new session: the entry section with
// an empty answer store, an empty record per party question and one default
// row per list question.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, error) {
	entry := e.bundle.Entry()
	if _, ok := e.bundle.Section(entry); !ok {
		return nil, &domain.NavigationError{WizardID: e.bundle.ID(), To: entry}
	}

	state := domain.NewState(sessionID, e.bundle.ID(), entry)
	for _, q := range e.bundle.Questions() {
		switch q.Kind {
		case domain.KindCompositeParty:
			state.Parties[q.ID] = q.NewRecord()
		case domain.KindCompositeList:
			state.Lists[q.ID] = []domain.Record{q.NewRecord()}
		}
	}
	now := e.clock()
	state.CreatedAt = now
	state.UpdatedAt = now

	e.logger.Debug("session started", "session_id", sessionID, "section", entry)
	e.emitSectionEnter(ctx, state, entry)
	return state, nil
}

// Reset discards every answer and returns to the entry section,
// keeping the session id.
func (e *Engine) Reset(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.Start(ctx, state.SessionID)
}

func (e *Engine) section(state *domain.State) (domain.Section, error) {
	sec, ok := e.bundle.Section(state.CurrentSectionID)
	if !ok {
		return domain.Section{}, fmt.Errorf("wizard %q, section %q: %w", e.bundle.ID(), state.CurrentSectionID, domain.ErrSectionNotFound)
	}
	return sec, nil
}

func (e *Engine) touch(state *domain.State) {
	state.UpdatedAt = e.clock()
}
