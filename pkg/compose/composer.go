package compose

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/wizard"
)

// Composer renders documents for one bundle.
type Composer struct {
	bundle      *wizard.Bundle
	tmpl        *template.Template
	layout      Layout
	clock       func() time.Time
	placeholder string
}

// Option configures a Composer.
type Option func(*Composer)

// WithLayout overrides the page geometry.
func WithLayout(l Layout) Option {
	return func(c *Composer) {
		c.layout = l
	}
}

// WithClock overrides the time source behind the "today" helper.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithPlaceholder changes the default token printed for missing answers.
func WithPlaceholder(p string) Option {
	return func(c *Composer) {
		if p != "" {
			c.placeholder = p
		}
	}
}

// New parses the bundle template.
func New(bundle *wizard.Bundle, opts ...Option) (*Composer, error) {
	c := &Composer{
		bundle:      bundle,
		layout:      DefaultLayout(),
		clock:       time.Now,
		placeholder: domain.Placeholder,
	}
	for _, opt := range opts {
		opt(c)
	}

	tmpl, err := template.New(bundle.ID()).
		Option("missingkey=zero").
		Funcs(placeholderFuncs()).
		Parse(bundle.Template())
	if err != nil {
		return nil, &ComposeError{WizardID: bundle.ID(), Stage: "parse", Err: err}
	}
	c.tmpl = tmpl
	return c, nil
}

// Layout returns the page geometry used for pagination.
func (c *Composer) Layout() Layout {
	return c.layout
}

// Text executes the template and returns the marked-up text.
func (c *Composer) Text(ctx context.Context, state *domain.State) (string, error) {
	tmpl, err := c.tmpl.Clone()
	if err != nil {
		return "", &ComposeError{WizardID: c.bundle.ID(), Stage: "execute", Err: err}
	}
	f := &funcs{
		ctx:         ctx,
		bundle:      c.bundle,
		state:       state,
		now:         c.clock(),
		placeholder: c.placeholder,
	}
	tmpl.Funcs(f.funcMap())

	data := map[string]any{
		"Title":   c.bundle.Title(),
		"Answers": state.Answers,
		"Parties": state.Parties,
		"Lists":   state.Lists,
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", &ComposeError{WizardID: c.bundle.ID(), Stage: "execute", Err: err}
	}
	return sb.String(), nil
}

// Compose renders, parses and paginates the document for a state.
// A template producing no blocks still yields a titled single page.
func (c *Composer) Compose(ctx context.Context, state *domain.State) (doc *domain.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &ComposeError{WizardID: c.bundle.ID(), Stage: "layout", Err: fmt.Errorf("%v", r)}
		}
	}()

	text, err := c.Text(ctx, state)
	if err != nil {
		return nil, err
	}

	blocks := ParseBlocks(text)
	if len(blocks) == 0 {
		blocks = []domain.Block{{Kind: domain.BlockTitle, Text: c.bundle.Title()}}
	}

	return &domain.Document{
		Title: c.bundle.Title(),
		Pages: c.layout.Paginate(blocks),
	}, nil
}
