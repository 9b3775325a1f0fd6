// Package geo provides the geographic reference data consulted by location
// questions and by the document composer.
package geo

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/writ/pkg/domain"
)

//go:embed data.json
var dataset []byte

type dataFile struct {
	Countries    []domain.Country     `json:"countries"`
	Subdivisions []domain.Subdivision `json:"subdivisions"`
}

// Static is a read-only GeoProvider over a fixed dataset.
// Countries and subdivisions keep the order they were supplied in.
type Static struct {
	countries    []domain.Country
	byID         map[string]domain.Country
	subdivisions map[string][]domain.Subdivision
}

// New builds a provider from fixture data.
func New(countries []domain.Country, subdivisions []domain.Subdivision) *Static {
	s := &Static{
		countries:    append([]domain.Country(nil), countries...),
		byID:         make(map[string]domain.Country, len(countries)),
		subdivisions: make(map[string][]domain.Subdivision),
	}
	for _, c := range countries {
		s.byID[c.ID] = c
	}
	for _, sub := range subdivisions {
		s.subdivisions[sub.CountryID] = append(s.subdivisions[sub.CountryID], sub)
	}
	return s
}

// Load decodes a JSON dataset with "countries" and "subdivisions" arrays.
func Load(r io.Reader) (*Static, error) {
	var f dataFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode geographic dataset: %w", err)
	}
	return New(f.Countries, f.Subdivisions), nil
}

var defaultProvider = sync.OnceValue(func() *Static {
	var f dataFile
	if err := json.Unmarshal(dataset, &f); err != nil {
		panic(fmt.Sprintf("geo: embedded dataset is invalid: %v", err))
	}
	return New(f.Countries, f.Subdivisions)
})

// Default returns the provider backed by the embedded sample dataset.
func Default() *Static {
	return defaultProvider()
}

func (s *Static) ListCountries(ctx context.Context) ([]domain.Country, error) {
	return append([]domain.Country(nil), s.countries...), nil
}

func (s *Static) ListSubdivisions(ctx context.Context, countryID string) ([]domain.Subdivision, error) {
	return append([]domain.Subdivision(nil), s.subdivisions[countryID]...), nil
}

func (s *Static) Country(ctx context.Context, id string) (domain.Country, bool) {
	c, ok := s.byID[id]
	return c, ok
}

func (s *Static) Subdivision(ctx context.Context, countryID, id string) (domain.Subdivision, bool) {
	for _, sub := range s.subdivisions[countryID] {
		if sub.ID == id {
			return sub, true
		}
	}
	return domain.Subdivision{}, false
}
