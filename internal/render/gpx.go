package render

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// GPX encodes the day's route as a GPX 1.1 document: one waypoint per
// located, non-declined stop and one route through them in order.
func GPX(it domain.Itinerary) ([]byte, error) {
	g := &gpx.GPX{
		Version: "1.1",
		Creator: "campaign-itinerary",
		Name:    "일정 " + it.Date,
	}
	if !it.GeneratedAt.IsZero() {
		t := it.GeneratedAt
		g.Time = &t
	}

	route := gpx.GPXRoute{Name: it.Date}
	for _, s := range it.Stops {
		if s.Attendance == domain.Declined || !s.HasCoordinate() {
			continue
		}
		p := gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  s.Coordinate.Lat,
				Longitude: s.Coordinate.Lng,
			},
			Timestamp:   s.Scheduled,
			Name:        s.Title,
			Description: s.Address,
			Comment:     s.Attendance.String(),
		}
		g.Waypoints = append(g.Waypoints, p)
		route.Points = append(route.Points, p)
	}
	if len(route.Points) > 0 {
		g.Routes = append(g.Routes, route)
	}

	b, err := g.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("render.GPX: %w", err)
	}
	return b, nil
}
