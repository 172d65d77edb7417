package render

import (
	"strconv"
	"strings"

	"github.com/pkordes/campaign-itinerary/internal/domain"
	"github.com/pkordes/campaign-itinerary/internal/geo"
)

// Marker colours by attendance.
const (
	ColorConfirmed = "#2e7d32"
	ColorPending   = "#1565c0"
	ColorNext      = "#ef6c00"
)

// FeatureCollection is a GeoJSON FeatureCollection (RFC 7946).
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON Feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry is a GeoJSON Point or LineString. Positions are [lng, lat].
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// MarkerStop describes one stop behind a marker.
type MarkerStop struct {
	ID         int    `json:"id"`
	Order      int    `json:"order"`
	Title      string `json:"title"`
	Time       string `json:"time"`
	Attendance string `json:"attendance"`
	Next       bool   `json:"next"`
}

func position(c domain.Coordinate) [2]float64 {
	return [2]float64{c.Lng, c.Lat}
}

type markerGroup struct {
	at    domain.Coordinate
	stops []MarkerStop
}

// GeoJSON builds the map layer for an itinerary: one marker per location for
// confirmed and pending stops, an anchor point, and the route line.
//
// Stops whose coordinates fall in the same H3 cell share one marker placed
// at the cell centre, so a building visited twice shows a single pin
// labelled with both visit numbers.
func GeoJSON(it domain.Itinerary) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}

	var (
		groups []*markerGroup
		byKey  = make(map[string]*markerGroup)
		order  int
	)
	for _, s := range it.Stops {
		if s.Attendance == domain.Declined || !s.HasCoordinate() {
			continue
		}
		order++

		key := s.Coordinate.String()
		if cell, err := geo.Cell(*s.Coordinate, geo.MarkerResolution); err == nil {
			key = cell.String()
		}
		g, ok := byKey[key]
		if !ok {
			g = &markerGroup{at: *s.Coordinate}
			byKey[key] = g
			groups = append(groups, g)
		} else if cell, err := geo.Cell(g.at, geo.MarkerResolution); err == nil {
			if center, err := geo.CellCenter(cell); err == nil {
				g.at = center
			}
		}
		g.stops = append(g.stops, MarkerStop{
			ID:         s.ID,
			Order:      order,
			Title:      s.Title,
			Time:       s.Scheduled.Format("15:04"),
			Attendance: s.Attendance.String(),
			Next:       it.Next != nil && it.Next.ID == s.ID,
		})
	}

	for _, g := range groups {
		fc.Features = append(fc.Features, markerFeature(g))
	}

	if it.Anchor != nil {
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Point", Coordinates: position(*it.Anchor)},
			Properties: map[string]any{"kind": "anchor"},
		})
	}

	if len(it.Route) >= 2 {
		line := make([][2]float64, len(it.Route))
		for i, c := range it.Route {
			line[i] = position(c)
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "LineString", Coordinates: line},
			Properties: map[string]any{"kind": "route"},
		})
	}

	return fc
}

func markerFeature(g *markerGroup) Feature {
	attendance := domain.Confirmed.String()
	color := ColorConfirmed
	next := false
	labels := make([]string, len(g.stops))
	for i, s := range g.stops {
		labels[i] = strconv.Itoa(s.Order)
		if s.Attendance == domain.Pending.String() {
			attendance = s.Attendance
			if color != ColorNext {
				color = ColorPending
			}
		}
		if s.Next {
			next = true
			color = ColorNext
		}
	}

	return Feature{
		Type:     "Feature",
		Geometry: Geometry{Type: "Point", Coordinates: position(g.at)},
		Properties: map[string]any{
			"kind":       "stop",
			"label":      strings.Join(labels, ","),
			"attendance": attendance,
			"color":      color,
			"next":       next,
			"stops":      g.stops,
		},
	}
}
