package domain

import (
	"time"

	"github.com/google/uuid"
)

// GeocodeEntry is one memoized geocoding answer. A nil Coordinate records
// that the service found no match, so the address is not retried until the
// entry expires.
type GeocodeEntry struct {
	ID         uuid.UUID
	Address    string
	Coordinate *Coordinate
	ResolvedAt time.Time
}

// Found reports whether the entry holds a coordinate.
func (e GeocodeEntry) Found() bool {
	return e.Coordinate != nil
}
