// Package itinerary orders a day's stops for display and for the map route.
//
// The order threads the remaining stops from where the traveller last confirmed
// a visit. There is no live position: the most recent confirmation is the best
// proxy, and the anchor is moved forward slot by slot so the suggestion follows
// the path actually walked.
package itinerary

import (
	"cmp"
	"slices"

	"github.com/pkordes/campaign-itinerary/internal/domain"
	"github.com/pkordes/campaign-itinerary/internal/geo"
)

// Plan orders stops starting from Anchor(stops).
func Plan(stops []domain.Stop) []domain.Stop {
	return Sequence(stops, Anchor(stops))
}

// Sequence returns stops in display order.
//
// Stops are grouped into slots by time of day and slots are emitted in
// chronological order. Within a slot, confirmed stops come first in the order
// they were confirmed, then pending stops nearest-first from the running
// anchor, then declined stops. After each slot the anchor moves to the last
// confirmed stop, or failing that to the nearest pending one.
//
// The input slice is not modified. Ties keep input order.
func Sequence(stops []domain.Stop, anchor *domain.Coordinate) []domain.Stop {
	out := make([]domain.Stop, 0, len(stops))
	current := anchor
	for _, slot := range slots(stops) {
		var ordered []domain.Stop
		ordered, current = sequenceSlot(slot, current)
		out = append(out, ordered...)
	}
	return out
}

// sequenceSlot orders one slot and returns the anchor for the next one.
func sequenceSlot(slot []domain.Stop, anchor *domain.Coordinate) ([]domain.Stop, *domain.Coordinate) {
	var confirmed, pending, declined []domain.Stop
	for _, s := range slot {
		switch s.Attendance {
		case domain.Confirmed:
			confirmed = append(confirmed, s)
		case domain.Declined:
			declined = append(declined, s)
		default:
			pending = append(pending, s)
		}
	}

	slices.SortStableFunc(confirmed, byConfirmedAt)
	if anchor != nil {
		slices.SortStableFunc(pending, func(a, b domain.Stop) int {
			return cmp.Compare(geo.DistanceFrom(anchor, a.Coordinate), geo.DistanceFrom(anchor, b.Coordinate))
		})
	}

	next := anchor
	if c := lastLocated(confirmed); c != nil {
		next = c
	} else if len(pending) > 0 && pending[0].HasCoordinate() {
		next = pending[0].Coordinate
	}

	out := make([]domain.Stop, 0, len(slot))
	out = append(out, confirmed...)
	out = append(out, pending...)
	out = append(out, declined...)
	return out, next
}

// slots groups stops by SlotKey in ascending order, keeping input order inside each slot.
func slots(stops []domain.Stop) [][]domain.Stop {
	byKey := make(map[int64][]domain.Stop)
	var keys []int64
	for _, s := range stops {
		k := int64(s.SlotKey())
		if _, ok := byKey[k]; !ok {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], s)
	}
	slices.Sort(keys)

	out := make([][]domain.Stop, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out
}

// byConfirmedAt orders by confirmation time; stops missing one go last.
func byConfirmedAt(a, b domain.Stop) int {
	switch {
	case a.ConfirmedAt == nil && b.ConfirmedAt == nil:
		return 0
	case a.ConfirmedAt == nil:
		return 1
	case b.ConfirmedAt == nil:
		return -1
	}
	return a.ConfirmedAt.Compare(*b.ConfirmedAt)
}

// lastLocated returns the coordinate of the last stop in ss that has one.
func lastLocated(ss []domain.Stop) *domain.Coordinate {
	for i := len(ss) - 1; i >= 0; i-- {
		if ss[i].HasCoordinate() {
			return ss[i].Coordinate
		}
	}
	return nil
}
