package ports

import (
	"context"

	"github.com/aretw0/writ/pkg/domain"
)

// ContactSink persists one contact row per document-generation attempt.
// No read path is required by the engine.
type ContactSink interface {
	Insert(ctx context.Context, contact domain.Contact) error
}
