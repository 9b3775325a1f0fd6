package ports

import (
	"context"

	"github.com/aretw0/writ/pkg/domain"
)

// BundleLoader defines how the engine retrieves wizard definitions.
// This allows the bundle source (embedded files, Loam, memory) to be decoupled.
type BundleLoader interface {
	// GetBundle retrieves the definition of a wizard by ID.
	// It returns domain.ErrWizardNotFound (possibly wrapped) when absent.
	GetBundle(ctx context.Context, id string) (*domain.Definition, error)

	// ListBundles returns the IDs of all available bundles in a deterministic order.
	ListBundles(ctx context.Context) ([]string, error)
}
