package ports

import (
	"context"

	"github.com/aretw0/writ/pkg/domain"
)

// DocumentWriter renders a composed document into file bytes (e.g. PDF).
type DocumentWriter interface {
	// ContentType is the MIME type of the produced bytes.
	ContentType() string

	// Write renders the document.
	Write(ctx context.Context, doc *domain.Document) ([]byte, error)
}
