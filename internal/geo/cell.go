package geo

import (
	"fmt"

	"github.com/uber/h3-go/v4"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// MarkerResolution is the H3 resolution used to merge co-located map markers.
// Resolution 11 cells are roughly 25 m across: stops in one building share a cell.
const MarkerResolution = 11

// Cell returns the H3 cell containing c at the given resolution.
func Cell(c domain.Coordinate, res int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(c.Lat, c.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("geo.Cell: res %d: %w", res, err)
	}
	return cell, nil
}

// CellCenter returns the centre of cell as a coordinate.
func CellCenter(cell h3.Cell) (domain.Coordinate, error) {
	ll, err := h3.CellToLatLng(cell)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geo.CellCenter: %w", err)
	}
	return domain.Coordinate{Lat: ll.Lat, Lng: ll.Lng}, nil
}
