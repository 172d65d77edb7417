// Package geocode resolves free-text addresses to coordinates.
//
// Geocoder is a single upstream call. Memo wraps one with the memoization the
// itinerary needs: lookups are best-effort, never fail a refresh, and the same
// address costs one upstream call per TTL no matter how often it recurs.
package geocode

import (
	"context"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// Geocoder resolves one address. Failures are returned as *Error.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinate, error)
}

// Resolver is the best-effort lookup used by the refresh pipeline.
// It returns nil when the address cannot be resolved, for any reason.
type Resolver interface {
	Resolve(ctx context.Context, address string) *domain.Coordinate
}

// Disabled is the Resolver used when no geocoding key is configured:
// stops keep whatever coordinates the sheet gives them.
type Disabled struct{}

// Resolve implements Resolver.
func (Disabled) Resolve(context.Context, string) *domain.Coordinate { return nil }
