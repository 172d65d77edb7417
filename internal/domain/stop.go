// Package domain contains the core data types for the campaign itinerary service.
// This package has no dependencies on other internal packages and is imported by
// every one of them (sheet, itinerary, geocode, gateway, service, handler).
package domain

import "time"

// DateLayout is the layout of Stop.Date and of every ?date= parameter.
const DateLayout = "2006-01-02"

// Stop is one row of the campaign schedule.
// Stops are rebuilt from the sheet on every refresh; only ID survives across
// refreshes, and it is the row handle used when writing attendance back.
type Stop struct {
	// ID is the 0-based position of the data row on the sheet (header excluded).
	ID int `json:"id"`
	// Date is the calendar day the stop belongs to, formatted with DateLayout.
	Date string `json:"date"`
	// Scheduled is the start of the stop. Stops sharing its time of day form a slot.
	Scheduled time.Time `json:"scheduled"`
	// End is display-only.
	End     *time.Time `json:"end,omitempty"`
	Title   string     `json:"title"`
	Address string     `json:"address,omitempty"`
	// Coordinate is nil when the sheet has none and geocoding failed.
	Coordinate  *Coordinate `json:"coordinate,omitempty"`
	Attendance  Attendance  `json:"attendance"`
	ConfirmedAt *time.Time  `json:"confirmed_at,omitempty"`
}

// Normalize enforces the attendance/timestamp invariant: ConfirmedAt is only
// kept on a Confirmed stop. A Confirmed stop without a timestamp is left as is;
// the sequencer orders it after stamped ones.
func (s Stop) Normalize() Stop {
	if s.Attendance != Confirmed {
		s.ConfirmedAt = nil
	}
	return s
}

// HasCoordinate reports whether the stop can take part in distance ranking.
func (s Stop) HasCoordinate() bool {
	return s.Coordinate != nil
}

// SlotKey returns the time-of-day bucket of the stop, truncated to the minute.
// Two stops on the same date with equal keys belong to the same slot.
func (s Stop) SlotKey() time.Duration {
	h, m, _ := s.Scheduled.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

// Ack is the acknowledgement of a successful status write.
type Ack struct {
	StopID     int        `json:"stop_id"`
	Attendance Attendance `json:"attendance"`
	// Response is the raw text the endpoint answered with.
	Response string    `json:"response"`
	At       time.Time `json:"at"`
}
