package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/ports"
)

// BundleLoaderContractTest is a reusable test suite that verifies if an adapter complies
// with ports.BundleLoader. expected maps bundle IDs to the title they must carry.
func BundleLoaderContractTest(t *testing.T, loader ports.BundleLoader, expected map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetBundle_Success", func(t *testing.T) {
		for id, title := range expected {
			def, err := loader.GetBundle(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error getting bundle %s: %v", id, err)
			}
			if def.ID != id {
				t.Errorf("id mismatch: got %q, want %q", def.ID, id)
			}
			if def.Title != title {
				t.Errorf("title mismatch for %s: got %q, want %q", id, def.Title, title)
			}
		}
	})

	t.Run("GetBundle_NotFound", func(t *testing.T) {
		_, err := loader.GetBundle(ctx, "non-existent-bundle")
		if !errors.Is(err, domain.ErrWizardNotFound) {
			t.Errorf("expected ErrWizardNotFound, got %v", err)
		}
	})

	t.Run("ListBundles", func(t *testing.T) {
		ids, err := loader.ListBundles(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing bundles: %v", err)
		}
		found := make(map[string]bool)
		for _, id := range ids {
			found[id] = true
		}
		for id := range expected {
			if !found[id] {
				t.Errorf("expected bundle %s in list, got %v", id, ids)
			}
		}
	})
}
