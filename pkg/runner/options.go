package runner

import (
	"log/slog"

	"github.com/aretw0/writ/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the StateStore the runner saves to after every step.
func WithStore(store ports.StateStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithMaxAttempts bounds how often contact capture is retried after a
// persistence or generation failure.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.MaxAttempts = n
		}
	}
}
