package sheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// Reader returns the raw cells of the schedule sheet, header row first.
type Reader interface {
	Rows(ctx context.Context) ([][]string, error)
}

// Schedule reads and parses the schedule on every call; nothing is kept
// between refreshes.
type Schedule struct {
	reader Reader
	loc    *time.Location
}

// NewSchedule constructs a Schedule reading through r and interpreting
// dates and times in loc.
func NewSchedule(r Reader, loc *time.Location) *Schedule {
	return &Schedule{reader: r, loc: loc}
}

// Load fetches the sheet and returns every dated stop on it.
// All failures wrap domain.ErrScheduleSource.
func (s *Schedule) Load(ctx context.Context) ([]domain.Stop, error) {
	rows, err := s.reader.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheet.Schedule.Load: %w", err)
	}
	stops, err := Parse(rows, s.loc)
	if err != nil {
		return nil, fmt.Errorf("sheet.Schedule.Load: %w", err)
	}
	return stops, nil
}

// Location returns the zone dates are interpreted in.
func (s *Schedule) Location() *time.Location {
	return s.loc
}

// open returns the content at location, which is either an http(s) URL or a
// local file path.
func open(ctx context.Context, client *http.Client, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", location, resp.StatusCode)
	}
	return resp.Body, nil
}

func httpClientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 10 * time.Second}
}
