package domain

import (
	"time"

	"github.com/google/uuid"
)

// Itinerary is the result of one refresh for one date: the stops in display
// order plus everything the views need to draw them.
type Itinerary struct {
	// RefreshID identifies the refresh that produced this view, for log correlation.
	RefreshID uuid.UUID `json:"refresh_id"`
	Date      string    `json:"date"`
	Stops     []Stop    `json:"stops"`
	// Anchor is the reference position the pending stops were ranked from.
	Anchor *Coordinate `json:"anchor,omitempty"`
	// Route is the polyline through confirmed and pending stops, in order.
	Route []Coordinate `json:"route"`
	// Next is the first pending stop in display order, if any.
	Next *Stop `json:"next,omitempty"`
	// Distances holds the straight-line metres from Anchor, keyed by stop ID.
	// Stops without a coordinate have no entry.
	Distances   map[int]float64 `json:"distances,omitempty"`
	Empty       bool            `json:"empty"`
	GeneratedAt time.Time       `json:"generated_at"`
	// Stale is set when the latest read failed and this is the last good view.
	Stale  bool   `json:"stale"`
	Notice string `json:"notice,omitempty"`
}
