package itinerary

import (
	"github.com/pkordes/campaign-itinerary/internal/domain"
	"github.com/pkordes/campaign-itinerary/internal/geo"
)

// Route returns the polyline for an ordered stop list: the coordinates of
// confirmed and pending stops in order. Declined stops and stops without a
// coordinate are skipped.
func Route(ordered []domain.Stop) []domain.Coordinate {
	route := make([]domain.Coordinate, 0, len(ordered))
	for _, s := range ordered {
		if s.Attendance == domain.Declined || !s.HasCoordinate() {
			continue
		}
		route = append(route, *s.Coordinate)
	}
	return route
}

// Next returns the first pending stop of an ordered list, or nil.
func Next(ordered []domain.Stop) *domain.Stop {
	for i := range ordered {
		if ordered[i].Attendance == domain.Pending {
			s := ordered[i]
			return &s
		}
	}
	return nil
}

// Distances returns the meters from anchor to every located stop, keyed by ID.
// It returns nil when anchor is nil.
func Distances(anchor *domain.Coordinate, stops []domain.Stop) map[int]float64 {
	if anchor == nil {
		return nil
	}
	out := make(map[int]float64, len(stops))
	for _, s := range stops {
		if s.HasCoordinate() {
			out[s.ID] = geo.Distance(*anchor, *s.Coordinate)
		}
	}
	return out
}
