package ports

import (
	"context"

	"github.com/aretw0/writ/pkg/domain"
)

// GeoProvider is the read-only geographic reference data consulted by select
// questions and by the composer for name lookups.
type GeoProvider interface {
	ListCountries(ctx context.Context) ([]domain.Country, error)
	ListSubdivisions(ctx context.Context, countryID string) ([]domain.Subdivision, error)
	Country(ctx context.Context, id string) (domain.Country, bool)
	Subdivision(ctx context.Context, countryID, id string) (domain.Subdivision, bool)
}
