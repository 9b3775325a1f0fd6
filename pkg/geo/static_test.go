package geo

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.GeoProvider = (*Static)(nil)

func TestDefault_Dataset(t *testing.T) {
	ctx := context.Background()
	g := Default()

	countries, err := g.ListCountries(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, countries)
	assert.Equal(t, domain.Country{ID: "1", Name: "United States", ISO2: "US"}, countries[0])

	de, ok := g.Country(ctx, "2")
	require.True(t, ok)
	assert.Equal(t, "Germany", de.Name)

	states, err := g.ListSubdivisions(ctx, "1")
	require.NoError(t, err)
	assert.NotEmpty(t, states)
	for _, s := range states {
		assert.Equal(t, "1", s.CountryID)
	}

	bavaria, ok := g.Subdivision(ctx, "2", "201")
	require.True(t, ok)
	assert.Equal(t, "Bavaria", bavaria.Name)

	_, ok = g.Subdivision(ctx, "1", "201")
	assert.False(t, ok, "subdivision lookups are scoped to the country")

	none, err := g.ListSubdivisions(ctx, "5")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStatic_ResultsAreCopies(t *testing.T) {
	ctx := context.Background()
	g := New(
		[]domain.Country{{ID: "a", Name: "Alpha"}},
		[]domain.Subdivision{{ID: "a1", Name: "North", CountryID: "a"}},
	)

	countries, _ := g.ListCountries(ctx)
	countries[0].Name = "mutated"
	subs, _ := g.ListSubdivisions(ctx, "a")
	subs[0].Name = "mutated"

	c, _ := g.Country(ctx, "a")
	assert.Equal(t, "Alpha", c.Name)
	again, _ := g.ListSubdivisions(ctx, "a")
	assert.Equal(t, "North", again[0].Name)
}

func TestLoad(t *testing.T) {
	g, err := Load(strings.NewReader(`{"countries":[{"id":"9","name":"Nowhere"}],"subdivisions":[]}`))
	require.NoError(t, err)
	_, ok := g.Country(context.Background(), "9")
	assert.True(t, ok)

	_, err = Load(strings.NewReader(`{`))
	assert.Error(t, err)
}
