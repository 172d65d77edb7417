// Package handler implements the HTTP surface of the itinerary service: the
// JSON API, the map and route exports, and the HTML dashboard.
// Handlers are methods on Server, split into files by concern.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/campaign-itinerary/internal/domain"
	"github.com/pkordes/campaign-itinerary/internal/render"
)

// ItineraryServicer defines the operations the handlers depend on.
// service.ItineraryService implements it; tests inject a mock.
type ItineraryServicer interface {
	Day(ctx context.Context, date string) (domain.Itinerary, error)
	SetAttendance(ctx context.Context, date string, stopID int, status domain.Attendance) (domain.Itinerary, domain.Ack, error)
}

// Server holds the handlers' dependencies.
type Server struct {
	itineraries ItineraryServicer
	nav         render.Provider
	logger      *slog.Logger
}

// NewServer constructs the Server. nav is the primary navigation provider
// for stop links.
func NewServer(itineraries ItineraryServicer, nav render.Provider, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{itineraries: itineraries, nav: nav, logger: logger}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, render.Kakao, nil)
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/", s.GetDashboard)
	r.Post("/stops/{stopId}/attendance", s.PostAttendanceForm)

	r.Route("/api", func(r chi.Router) {
		r.Get("/itinerary", s.GetItinerary)
		r.Get("/itinerary/map", s.GetItineraryMap)
		r.Get("/itinerary/route.gpx", s.GetItineraryGPX)
		r.Post("/stops/{stopId}/attendance", s.PostAttendance)
	})
}

// Handler returns a chi router with every endpoint registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
