package runtime_test

import (
	"testing"
	"time"

	"github.com/aretw0/writ/internal/runtime"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/geo"
	"github.com/aretw0/writ/pkg/wizard"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func leaseBuilder() *wizard.Builder {
	b := wizard.NewBuilder("lease").Title("Residential Lease")

	b.Question("country", domain.KindSelect).Prompt("Country").Source(domain.SourceCountries)
	b.Question("state", domain.KindSelect).Prompt("State").Source(domain.SourceSubdivisions).DependsOn("country")
	b.Question("landlord", domain.KindCompositeParty).Prompt("Landlord").
		Field("name", "Name").
		Field("address", "Address")
	b.Question("items", domain.KindCompositeList).Prompt("Furnishings").
		Field("description", "Description").
		FieldOf(domain.Field{Key: "qty", Label: "Quantity", Default: "1"})
	b.Question("pets", domain.KindRadio).Prompt("Pets allowed?").Options("yes", "no")
	b.Question("agree", domain.KindConfirmation).Prompt("I confirm")

	b.Section("location_selection").Title("Location").Ask("country", "state").Require("country", "state").Next("parties")
	b.Section("parties").Title("Parties").Ask("landlord").Party("landlord", "name", "address").Next("items")
	b.Section("items").Title("Items").Ask("items").Rows("items").Next("terms")
	b.Section("terms").Title("Terms").Ask("pets").Require("pets").Next("review")
	b.Section("review").Title("Review").Ask("agree").Acknowledge("agree")
	return b
}

func newEngine(t *testing.T, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	bundle, err := leaseBuilder().Build(wizard.WithGeo(geo.Default()))
	require.NoError(t, err)
	opts = append([]runtime.EngineOption{runtime.WithClock(func() time.Time { return fixedNow })}, opts...)
	return runtime.NewEngine(bundle, opts...)
}

// startAt returns a fresh session positioned on sectionID, skipping the
// gates before it.
func startAt(t *testing.T, e *runtime.Engine, sectionID string) *domain.State {
	t.Helper()
	st, err := e.Start(t.Context(), "s1")
	require.NoError(t, err)
	st.CurrentSectionID = sectionID
	st.History = append(st.History, sectionID)
	return st
}

// completeLease drives a fresh session to the review section.
func completeLease(t *testing.T, e *runtime.Engine) *domain.State {
	t.Helper()
	ctx := t.Context()
	st, err := e.Start(ctx, "s1")
	require.NoError(t, err)

	steps := []func(*domain.State) (*domain.State, error){
		func(s *domain.State) (*domain.State, error) { return e.RecordAnswer(ctx, s, "country", "1") },
		func(s *domain.State) (*domain.State, error) { return e.RecordAnswer(ctx, s, "state", "105") },
		func(s *domain.State) (*domain.State, error) { return e.Advance(ctx, s) },
		func(s *domain.State) (*domain.State, error) { return e.SetField(ctx, s, "landlord", "name", "Ann Lee") },
		func(s *domain.State) (*domain.State, error) { return e.SetField(ctx, s, "landlord", "address", "9 Pine Rd") },
		func(s *domain.State) (*domain.State, error) { return e.Advance(ctx, s) },
		func(s *domain.State) (*domain.State, error) { return e.UpdateRow(ctx, s, "items", 0, "description", "Sofa") },
		func(s *domain.State) (*domain.State, error) { return e.Advance(ctx, s) },
		func(s *domain.State) (*domain.State, error) { return e.RecordAnswer(ctx, s, "pets", "no") },
		func(s *domain.State) (*domain.State, error) { return e.Advance(ctx, s) },
	}
	for i, step := range steps {
		st, err = step(st)
		require.NoError(t, err, "step %d", i)
	}
	require.Equal(t, "review", st.CurrentSectionID)
	return st
}
