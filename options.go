package writ

import (
	"log/slog"
	"time"

	"github.com/aretw0/writ/pkg/compose"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/ports"
	"github.com/aretw0/writ/pkg/wizard"
)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader adds a bundle source. Loaders are consulted in registration
// order, before the built-in bundles.
func WithLoader(l ports.BundleLoader) Option {
	return func(e *Engine) {
		e.loaders = append(e.loaders, l)
	}
}

// WithBundlesDir reads additional bundles from a directory through loam.
func WithBundlesDir(dir string) Option {
	return func(e *Engine) {
		e.bundlesDir = dir
	}
}

// WithoutBuiltins drops the embedded document bundles from the catalog.
func WithoutBuiltins() Option {
	return func(e *Engine) {
		e.builtins = false
	}
}

// WithGeo replaces the embedded geographic data.
func WithGeo(g ports.GeoProvider) Option {
	return func(e *Engine) {
		e.geo = g
	}
}

// WithContactSink sets where captured contacts are persisted.
func WithContactSink(s ports.ContactSink) Option {
	return func(e *Engine) {
		e.contacts = s
	}
}

// WithDocumentWriter sets the file format of generated documents.
func WithDocumentWriter(w ports.DocumentWriter) Option {
	return func(e *Engine) {
		e.writer = w
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source for timestamps, filenames and "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.clock = now
		}
	}
}

// WithLayout overrides the page geometry used for pagination.
func WithLayout(l compose.Layout) Option {
	return func(e *Engine) {
		e.layout = l
	}
}

// WithValidator registers a named validator that bundle rules can reference.
func WithValidator(name string, fn wizard.Validator) Option {
	return func(e *Engine) {
		e.wizardOpts = append(e.wizardOpts, wizard.WithValidator(name, fn))
	}
}
