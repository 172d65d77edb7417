package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/campaign-itinerary/internal/domain"
	"github.com/pkordes/campaign-itinerary/internal/render"
)

// stopResponse is a stop plus its navigation links.
type stopResponse struct {
	domain.Stop
	Links []render.Link `json:"links,omitempty"`
}

// itineraryResponse is the JSON form of an itinerary.
type itineraryResponse struct {
	domain.Itinerary
	Stops []stopResponse `json:"stops"`
	Next  *stopResponse  `json:"next,omitempty"`
}

func (s *Server) toResponse(it domain.Itinerary) itineraryResponse {
	out := itineraryResponse{Itinerary: it, Stops: make([]stopResponse, len(it.Stops))}
	for i, st := range it.Stops {
		out.Stops[i] = stopResponse{Stop: st, Links: render.NavLinks(s.nav, st)}
	}
	if it.Next != nil {
		out.Next = &stopResponse{Stop: *it.Next, Links: render.NavLinks(s.nav, *it.Next)}
	}
	if out.Route == nil {
		out.Route = []domain.Coordinate{}
	}
	return out
}

// dateParam binds the optional ?date= parameter. Empty means today.
func dateParam(r *http.Request) (string, error) {
	var date *openapi_types.Date
	if err := runtime.BindQueryParameter("form", true, false, "date", r.URL.Query(), &date); err != nil {
		return "", fmt.Errorf("invalid date parameter: %w", domain.ErrValidation)
	}
	if date == nil {
		return "", nil
	}
	return date.Format(domain.DateLayout), nil
}

// day binds the date and refreshes the itinerary, writing the error
// response itself when either fails.
func (s *Server) day(w http.ResponseWriter, r *http.Request) (domain.Itinerary, bool) {
	date, err := dateParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return domain.Itinerary{}, false
	}
	it, err := s.itineraries.Day(r.Context(), date)
	if err != nil {
		s.writeServiceError(w, r, err)
		return domain.Itinerary{}, false
	}
	w.Header().Set("X-Refresh-Id", it.RefreshID.String())
	return it, true
}

// GetItinerary handles GET /api/itinerary.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	it, ok := s.day(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(it))
}

// GetItineraryMap handles GET /api/itinerary/map.
func (s *Server) GetItineraryMap(w http.ResponseWriter, r *http.Request) {
	it, ok := s.day(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // the client is gone if this fails.
	json.NewEncoder(w).Encode(render.GeoJSON(it))
}

// GetItineraryGPX handles GET /api/itinerary/route.gpx.
func (s *Server) GetItineraryGPX(w http.ResponseWriter, r *http.Request) {
	it, ok := s.day(w, r)
	if !ok {
		return
	}
	b, err := render.GPX(it)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="itinerary-%s.gpx"`, it.Date))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // the client is gone if this fails.
	w.Write(b)
}
