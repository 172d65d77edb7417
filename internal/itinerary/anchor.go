package itinerary

import (
	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// Anchor returns the starting reference point for a day's stops: the
// coordinate of the most recently confirmed stop, or, when nothing with a
// coordinate has been confirmed, the earliest scheduled non-declined stop that
// has a coordinate. It returns nil when no usable coordinate exists.
//
// Anchor depends only on stops; nothing is carried over between calls.
func Anchor(stops []domain.Stop) *domain.Coordinate {
	var latest *domain.Stop
	for i := range stops {
		s := &stops[i]
		if s.Attendance != domain.Confirmed || s.ConfirmedAt == nil || !s.HasCoordinate() {
			continue
		}
		if latest == nil || s.ConfirmedAt.After(*latest.ConfirmedAt) {
			latest = s
		}
	}
	if latest != nil {
		return latest.Coordinate
	}

	var first *domain.Stop
	for i := range stops {
		s := &stops[i]
		if s.Attendance == domain.Declined || !s.HasCoordinate() {
			continue
		}
		if first == nil || s.Scheduled.Before(first.Scheduled) {
			first = s
		}
	}
	if first != nil {
		return first.Coordinate
	}
	return nil
}
