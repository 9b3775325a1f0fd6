package ports

import (
	"context"

	"github.com/aretw0/writ/pkg/domain"
)

// StateStore keeps wizard sessions between requests so a half-filled
// document can be resumed. Implementations must copy states on Save and
// Load; callers are free to mutate what they pass in or get back.
type StateStore interface {
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load fails with domain.ErrSessionNotFound for unknown or expired ids.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete is idempotent.
	Delete(ctx context.Context, sessionID string) error

	// List returns the live session ids in lexical order.
	List(ctx context.Context) ([]string, error)
}
