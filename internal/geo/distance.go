// Package geo holds the geometric helpers shared by the sequencer and the views.
package geo

import (
	"math"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

const earthRadius = 6371e3 // meters

// Distance returns the great-circle (haversine) distance between a and b in meters.
func Distance(a, b domain.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

// DistanceFrom is Distance with optional endpoints: it returns +Inf when either
// side is nil, so a stop without a coordinate ranks after every located one.
func DistanceFrom(anchor, c *domain.Coordinate) float64 {
	if anchor == nil || c == nil {
		return math.Inf(1)
	}
	return Distance(*anchor, *c)
}
