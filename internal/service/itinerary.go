// Package service contains the business logic of the itinerary service.
// Services validate inputs and orchestrate the schedule source, the geocoder
// and the status gateway; they depend on interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/campaign-itinerary/internal/domain"
	"github.com/pkordes/campaign-itinerary/internal/geocode"
	"github.com/pkordes/campaign-itinerary/internal/itinerary"
)

// ScheduleLoader returns every stop on the schedule. sheet.Schedule implements it.
type ScheduleLoader interface {
	Load(ctx context.Context) ([]domain.Stop, error)
}

// StatusWriter records attendance on the schedule. gateway.Client implements it.
type StatusWriter interface {
	SetAttendance(ctx context.Context, stopID int, status domain.Attendance) (domain.Ack, error)
}

// maxHeldViews bounds how many dates keep a last good view.
const maxHeldViews = 31

// Options configures an ItineraryService. Zero values take the defaults.
type Options struct {
	// Location is the campaign's time zone, used for "today". Default UTC.
	Location *time.Location
	Logger   *slog.Logger
	Now      func() time.Time
}

// ItineraryService builds the day view and forwards attendance changes.
//
// Every call to Day re-reads the schedule; the only state kept between
// calls is the last good view per date, served when a later read fails.
type ItineraryService struct {
	schedule ScheduleLoader
	geocoder geocode.Resolver
	status   StatusWriter
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	lastGood map[string]domain.Itinerary
}

// NewItineraryService constructs an ItineraryService. status may be nil for
// read-only use.
func NewItineraryService(schedule ScheduleLoader, geocoder geocode.Resolver, status StatusWriter, opts Options) *ItineraryService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ItineraryService{
		schedule: schedule,
		geocoder: geocoder,
		status:   status,
		loc:      opts.Location,
		logger:   opts.Logger,
		now:      opts.Now,
		lastGood: make(map[string]domain.Itinerary),
	}
}

// Today returns the current date in the campaign's time zone.
func (s *ItineraryService) Today() string {
	return s.now().In(s.loc).Format(domain.DateLayout)
}

// ResolveDate validates a date parameter. Empty means today.
func (s *ItineraryService) ResolveDate(date string) (string, error) {
	if date == "" {
		return s.Today(), nil
	}
	if _, err := time.ParseInLocation(domain.DateLayout, date, s.loc); err != nil {
		return "", fmt.Errorf("date %q: want YYYY-MM-DD: %w", date, domain.ErrValidation)
	}
	return date, nil
}

// Day refreshes the itinerary for date: it reads the schedule, resolves
// missing coordinates and orders the stops.
//
// When the read fails and an earlier view of the same date is held, that
// view is returned marked Stale instead of an error.
func (s *ItineraryService) Day(ctx context.Context, date string) (domain.Itinerary, error) {
	date, err := s.ResolveDate(date)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Day: %w", err)
	}

	refreshID := uuid.New()
	log := s.logger.With("refresh_id", refreshID.String(), "date", date)

	stops, err := s.schedule.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrScheduleSource) {
			err = fmt.Errorf("%w: %w", domain.ErrScheduleSource, err)
		}
		if held, ok := s.held(date); ok {
			log.WarnContext(ctx, "schedule read failed, serving last good view", "error", err, "held_refresh_id", held.RefreshID.String())
			held.Stale = true
			held.Notice = fmt.Sprintf("The schedule could not be read; showing the view from %s.",
				held.GeneratedAt.In(s.loc).Format("15:04"))
			return held, nil
		}
		log.WarnContext(ctx, "schedule read failed", "error", err)
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Day: %w", err)
	}

	day := s.locate(ctx, stopsOn(stops, date))
	ordered := itinerary.Plan(day)
	anchor := itinerary.Anchor(day)

	it := domain.Itinerary{
		RefreshID:   refreshID,
		Date:        date,
		Stops:       ordered,
		Anchor:      anchor,
		Route:       itinerary.Route(ordered),
		Next:        itinerary.Next(ordered),
		Distances:   itinerary.Distances(anchor, ordered),
		Empty:       len(ordered) == 0,
		GeneratedAt: s.now(),
	}
	s.hold(it)

	log.InfoContext(ctx, "itinerary refreshed", "stops", len(ordered), "route_points", len(it.Route))
	return it, nil
}

// SetAttendance writes status for the stop and returns a fresh view of date.
// Local state is never patched: the new view comes from a re-read, so a
// failed write leaves everything as it was.
func (s *ItineraryService) SetAttendance(ctx context.Context, date string, stopID int, status domain.Attendance) (domain.Itinerary, domain.Ack, error) {
	if s.status == nil {
		return domain.Itinerary{}, domain.Ack{}, fmt.Errorf("service.ItineraryService.SetAttendance: no status endpoint configured: %w", domain.ErrGateway)
	}
	if stopID < 0 {
		return domain.Itinerary{}, domain.Ack{}, fmt.Errorf("service.ItineraryService.SetAttendance: stop id %d: %w", stopID, domain.ErrValidation)
	}
	date, err := s.ResolveDate(date)
	if err != nil {
		return domain.Itinerary{}, domain.Ack{}, fmt.Errorf("service.ItineraryService.SetAttendance: %w", err)
	}

	ack, err := s.status.SetAttendance(ctx, stopID, status)
	if err != nil {
		return domain.Itinerary{}, domain.Ack{}, fmt.Errorf("service.ItineraryService.SetAttendance: %w", err)
	}

	it, err := s.Day(ctx, date)
	if err != nil {
		return domain.Itinerary{}, ack, fmt.Errorf("service.ItineraryService.SetAttendance: refresh: %w", err)
	}
	return it, ack, nil
}

// GeocodeReport summarizes a warm-up run.
type GeocodeReport struct {
	Total      int
	FromSheet  int
	Resolved   int
	Unresolved []string
}

// Geocode resolves every address on date ahead of time so later refreshes
// hit the memo. progress, when non-nil, is called once per stop.
func (s *ItineraryService) Geocode(ctx context.Context, date string, progress func(domain.Stop)) (GeocodeReport, error) {
	date, err := s.ResolveDate(date)
	if err != nil {
		return GeocodeReport{}, fmt.Errorf("service.ItineraryService.Geocode: %w", err)
	}
	stops, err := s.schedule.Load(ctx)
	if err != nil {
		return GeocodeReport{}, fmt.Errorf("service.ItineraryService.Geocode: %w", err)
	}

	day := stopsOn(stops, date)
	report := GeocodeReport{Total: len(day)}
	for _, st := range day {
		switch {
		case st.HasCoordinate():
			report.FromSheet++
		case st.Address == "":
			report.Unresolved = append(report.Unresolved, st.Title)
		case s.geocoder.Resolve(ctx, st.Address) != nil:
			report.Resolved++
		default:
			report.Unresolved = append(report.Unresolved, st.Address)
		}
		if progress != nil {
			progress(st)
		}
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("service.ItineraryService.Geocode: %w", err)
		}
	}
	return report, nil
}

// locate fills missing coordinates through the geocoder. Declined stops are
// left alone since they are never ranked or drawn.
func (s *ItineraryService) locate(ctx context.Context, stops []domain.Stop) []domain.Stop {
	for i := range stops {
		st := &stops[i]
		if st.HasCoordinate() || st.Attendance == domain.Declined || st.Address == "" {
			continue
		}
		st.Coordinate = s.geocoder.Resolve(ctx, st.Address)
	}
	return stops
}

func (s *ItineraryService) held(date string) (domain.Itinerary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.lastGood[date]
	return it, ok
}

func (s *ItineraryService) hold(it domain.Itinerary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lastGood[it.Date]; !ok && len(s.lastGood) >= maxHeldViews {
		var oldest string
		for d, v := range s.lastGood {
			if oldest == "" || v.GeneratedAt.Before(s.lastGood[oldest].GeneratedAt) {
				oldest = d
			}
		}
		delete(s.lastGood, oldest)
	}
	s.lastGood[it.Date] = it
}

// stopsOn returns a copy of the stops scheduled on date.
func stopsOn(stops []domain.Stop, date string) []domain.Stop {
	var day []domain.Stop
	for _, st := range stops {
		if st.Date == date {
			day = append(day, st)
		}
	}
	return day
}
