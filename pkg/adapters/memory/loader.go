package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/writ/pkg/domain"
)

// Loader implements ports.BundleLoader over definitions held in memory.
type Loader struct {
	defs map[string]domain.Definition
}

// NewLoader creates a loader from definitions. Later duplicates win.
func NewLoader(defs ...domain.Definition) *Loader {
	l := &Loader{defs: make(map[string]domain.Definition, len(defs))}
	for _, d := range defs {
		l.defs[d.ID] = d
	}
	return l
}

// GetBundle retrieves a definition by wizard id.
func (l *Loader) GetBundle(ctx context.Context, id string) (*domain.Definition, error) {
	def, ok := l.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWizardNotFound, id)
	}
	return &def, nil
}

// ListBundles returns all wizard ids.
func (l *Loader) ListBundles(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.defs))
	for k := range l.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
