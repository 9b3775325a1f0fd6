package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract checks the behaviour every StateStore must share.
// Adapters call it from their own tests with a fresh store.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	prefix := fmt.Sprintf("contract-%d", time.Now().UnixNano())

	t.Run("Round Trip", func(t *testing.T) {
		id := prefix + "-roundtrip"
		st := domain.NewState(id, "residential_lease", "location")
		st.Answers["tenant_name"] = "Ada Lovelace"
		st.Answers["pets_allowed"] = "no"
		st.Parties["landlord"] = domain.Record{"name": "Grace", "address": "1 Main St"}
		st.Lists["items"] = []domain.Record{{"description": "Desk", "quantity": "2"}}
		st.History = []string{"location"}
		st.CurrentSectionID = "parties"

		require.NoError(t, store.Save(ctx, id, st))
		t.Cleanup(func() { _ = store.Delete(ctx, id) })

		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "residential_lease", got.WizardID)
		assert.Equal(t, "parties", got.CurrentSectionID)
		assert.Equal(t, []string{"location"}, got.History)
		assert.Equal(t, "Ada Lovelace", got.Answers["tenant_name"])
		assert.Equal(t, "1 Main St", got.Parties["landlord"]["address"])
		require.Len(t, got.Lists["items"], 1)
		assert.Equal(t, "2", got.Lists["items"][0]["quantity"])
	})

	t.Run("Copies On Save", func(t *testing.T) {
		id := prefix + "-copy"
		st := domain.NewState(id, "nda", "parties")
		st.Answers["kind"] = "mutual"
		require.NoError(t, store.Save(ctx, id, st))
		t.Cleanup(func() { _ = store.Delete(ctx, id) })

		st.Answers["kind"] = "one_way"

		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "mutual", got.Answers["kind"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		id := prefix + "-overwrite"
		require.NoError(t, store.Save(ctx, id, domain.NewState(id, "nda", "parties")))
		t.Cleanup(func() { _ = store.Delete(ctx, id) })

		next := domain.NewState(id, "nda", "terms")
		next.History = []string{"parties"}
		require.NoError(t, store.Save(ctx, id, next))

		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "terms", got.CurrentSectionID)
	})

	t.Run("Unknown Session", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "-delete"
		require.NoError(t, store.Save(ctx, id, domain.NewState(id, "nda", "parties")))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")
	})

	t.Run("List Sorted", func(t *testing.T) {
		ids := []string{prefix + "-list-b", prefix + "-list-a", prefix + "-list-c"}
		for _, id := range ids {
			require.NoError(t, store.Save(ctx, id, domain.NewState(id, "nda", "parties")))
		}
		t.Cleanup(func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		})

		listed, err := store.List(ctx)
		require.NoError(t, err)
		var ours []string
		for _, id := range listed {
			for _, want := range ids {
				if id == want {
					ours = append(ours, id)
				}
			}
		}
		assert.Equal(t, []string{prefix + "-list-a", prefix + "-list-b", prefix + "-list-c"}, ours)
	})
}
