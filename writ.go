package writ

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/writ/internal/logging"
	"github.com/aretw0/writ/internal/runtime"
	loamAdapter "github.com/aretw0/writ/pkg/adapters/loam"
	"github.com/aretw0/writ/pkg/adapters/memory"
	"github.com/aretw0/writ/pkg/adapters/pdf"
	"github.com/aretw0/writ/pkg/compose"
	"github.com/aretw0/writ/pkg/documents"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/geo"
	"github.com/aretw0/writ/pkg/ports"
	"github.com/aretw0/writ/pkg/wizard"
)

// Engine is the high-level entry point for the writ library.
// It keeps a catalog of wizard bundles and routes every state to the
// navigation controller of the wizard it belongs to.
type Engine struct {
	loaders    []ports.BundleLoader
	bundlesDir string
	builtins   bool
	geo        ports.GeoProvider
	contacts   ports.ContactSink
	writer     ports.DocumentWriter
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	clock      func() time.Time
	layout     compose.Layout
	wizardOpts []wizard.Option

	mu       sync.RWMutex
	compiled map[string]*compiled
}

type compiled struct {
	bundle   *wizard.Bundle
	runtime  *runtime.Engine
	composer *compose.Composer
}

// Summary describes one wizard in the catalog.
type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Sections    int    `json:"sections"`
}

// New initializes an Engine. Without options it serves the built-in document
// bundles with the embedded geographic data, an in-memory contact sink and
// the PDF writer.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		builtins: true,
		clock:    time.Now,
		layout:   compose.DefaultLayout(),
		compiled: make(map[string]*compiled),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.geo == nil {
		eng.geo = geo.Default()
	}
	if eng.contacts == nil {
		eng.contacts = memory.NewContactSink()
	}
	if eng.writer == nil {
		eng.writer = pdf.New(pdf.WithLayout(eng.layout), pdf.WithClock(eng.clock))
	}

	if eng.bundlesDir != "" {
		abs, err := filepath.Abs(eng.bundlesDir)
		if err != nil {
			return nil, fmt.Errorf("invalid bundles path: %w", err)
		}
		dir, err := loamAdapter.Open(abs)
		if err != nil {
			return nil, err
		}
		eng.loaders = append(eng.loaders, dir)
	}
	if eng.builtins {
		builtin, err := documents.Loader()
		if err != nil {
			return nil, fmt.Errorf("failed to load built-in bundles: %w", err)
		}
		eng.loaders = append(eng.loaders, builtin)
		eng.wizardOpts = append(documents.Options(), eng.wizardOpts...)
	}
	if len(eng.loaders) == 0 {
		return nil, errors.New("no bundle loader configured")
	}
	return eng, nil
}

// List returns the wizards of every loader sorted by id. When two loaders
// provide the same id the one registered first wins.
func (e *Engine) List(ctx context.Context) ([]Summary, error) {
	seen := make(map[string]bool)
	var out []Summary
	for _, l := range e.loaders {
		ids, err := l.ListBundles(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			def, err := l.GetBundle(ctx, id)
			if err != nil {
				return nil, err
			}
			out = append(out, Summary{
				ID:          def.ID,
				Title:       def.Title,
				Description: def.Description,
				Sections:    len(def.Sections),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Definition returns the raw declaration of a wizard.
func (e *Engine) Definition(ctx context.Context, wizardID string) (*domain.Definition, error) {
	for _, l := range e.loaders {
		def, err := l.GetBundle(ctx, wizardID)
		if err == nil {
			return def, nil
		}
		if !errors.Is(err, domain.ErrWizardNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrWizardNotFound, wizardID)
}

// Bundle returns the compiled bundle of a wizard.
func (e *Engine) Bundle(ctx context.Context, wizardID string) (*wizard.Bundle, error) {
	c, err := e.wizard(ctx, wizardID)
	if err != nil {
		return nil, err
	}
	return c.bundle, nil
}

// Inspect returns the sections of a wizard in declaration order.
func (e *Engine) Inspect(ctx context.Context, wizardID string) ([]domain.Section, error) {
	c, err := e.wizard(ctx, wizardID)
	if err != nil {
		return nil, err
	}
	return c.runtime.Inspect(), nil
}

// Geo returns the geographic provider bound to every wizard.
func (e *Engine) Geo() ports.GeoProvider {
	return e.geo
}

// Invalidate drops compiled wizards so the next call reloads them.
// With no ids the whole cache is cleared.
func (e *Engine) Invalidate(wizardIDs ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(wizardIDs) == 0 {
		e.compiled = make(map[string]*compiled)
		return
	}
	for _, id := range wizardIDs {
		delete(e.compiled, id)
	}
}

// Watch returns a channel that signals when a bundle on disk changes. The
// compiled cache is cleared before each signal is delivered.
// Returns error if no loader supports watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	for _, l := range e.loaders {
		w, ok := l.(interface {
			Watch(context.Context) (<-chan string, error)
		})
		if !ok {
			continue
		}
		src, err := w.Watch(ctx)
		if err != nil {
			return nil, err
		}
		out := make(chan string)
		go func() {
			defer close(out)
			for id := range src {
				e.Invalidate()
				select {
				case out <- id:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out, nil
	}
	return nil, errors.New("no bundle loader supports watching")
}

func (e *Engine) wizard(ctx context.Context, wizardID string) (*compiled, error) {
	e.mu.RLock()
	c, ok := e.compiled[wizardID]
	e.mu.RUnlock()
	if ok {
		return c, nil
	}

	def, err := e.Definition(ctx, wizardID)
	if err != nil {
		return nil, err
	}
	opts := append([]wizard.Option{wizard.WithGeo(e.geo)}, e.wizardOpts...)
	bundle, err := wizard.Compile(*def, opts...)
	if err != nil {
		return nil, err
	}
	composer, err := compose.New(bundle, compose.WithLayout(e.layout), compose.WithClock(e.clock))
	if err != nil {
		return nil, err
	}
	c = &compiled{
		bundle: bundle,
		runtime: runtime.NewEngine(bundle,
			runtime.WithLifecycleHooks(e.hooks),
			runtime.WithLogger(e.logger),
			runtime.WithClock(e.clock),
		),
		composer: composer,
	}

	e.mu.Lock()
	e.compiled[wizardID] = c
	e.mu.Unlock()
	return c, nil
}

func (e *Engine) forState(ctx context.Context, state *domain.State) (*compiled, error) {
	if state == nil {
		return nil, errors.New("nil state")
	}
	return e.wizard(ctx, state.WizardID)
}

// Start creates a fresh session of a wizard. An empty sessionID is replaced
// by a random UUID.
func (e *Engine) Start(ctx context.Context, wizardID, sessionID string) (*domain.State, error) {
	c, err := e.wizard(ctx, wizardID)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return c.runtime.Start(ctx, sessionID)
}

// Render returns the current section bound to the state.
func (e *Engine) Render(ctx context.Context, state *domain.State) (*domain.SectionView, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return nil, err
	}
	return c.runtime.Render(ctx, state)
}

// CanAdvance reports whether the current section validates.
func (e *Engine) CanAdvance(ctx context.Context, state *domain.State) (bool, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return false, err
	}
	return c.runtime.CanAdvance(ctx, state), nil
}

// RecordAnswer stores a scalar answer and applies declared cascades.
func (e *Engine) RecordAnswer(ctx context.Context, state *domain.State, questionID, value string) (*domain.State, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return state, err
	}
	return c.runtime.RecordAnswer(ctx, state, questionID, value)
}

// SetField writes one field of a party record.
func (e *Engine) SetField(ctx context.Context, state *domain.State, questionID, field, value string) (*domain.State, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return state, err
	}
	return c.runtime.SetField(ctx, state, questionID, field, value)
}

// AddRow appends an empty row to a list question.
func (e *Engine) AddRow(ctx context.Context, state *domain.State, questionID string) (*domain.State, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return state, err
	}
	return c.runtime.AddRow(ctx, state, questionID)
}

// RemoveRow deletes a row from a list question. The last row cannot be removed.
func (e *Engine) RemoveRow(ctx context.Context, state *domain.State, questionID string, index int) (*domain.State, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return state, err
	}
	return c.runtime.RemoveRow(ctx, state, questionID, index)
}

// UpdateRow writes one field of a list row.
func (e *Engine) UpdateRow(ctx context.Context, state *domain.State, questionID string, index int, field, value string) (*domain.State, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return state, err
	}
	return c.runtime.UpdateRow(ctx, state, questionID, index, field, value)
}

// Advance moves to the next section, or completes the wizard at the terminal one.
func (e *Engine) Advance(ctx context.Context, state *domain.State) (*domain.State, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return state, err
	}
	return c.runtime.Advance(ctx, state)
}

// Retreat returns to the previous section in history.
func (e *Engine) Retreat(ctx context.Context, state *domain.State) (*domain.State, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return state, err
	}
	return c.runtime.Retreat(ctx, state)
}

// Reset discards every answer and starts the wizard over in the same session.
func (e *Engine) Reset(ctx context.Context, state *domain.State) (*domain.State, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return state, err
	}
	return c.runtime.Reset(ctx, state)
}

// Compose lays the document out from the answers collected so far. Missing
// answers are printed as placeholders.
func (e *Engine) Compose(ctx context.Context, state *domain.State) (*domain.Document, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return nil, err
	}
	return c.composer.Compose(ctx, state)
}

// Text renders the document body as markdown-like text, before layout.
func (e *Engine) Text(ctx context.Context, state *domain.State) (string, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return "", err
	}
	return c.composer.Text(ctx, state)
}
