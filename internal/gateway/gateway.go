// Package gateway sends attendance changes to the spreadsheet's write
// endpoint, a deployed Apps Script web app that records the status (and a
// timestamp for non-pending statuses) on the stop's row.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// DefaultSuccessMarker is the text the endpoint answers with on success.
const DefaultSuccessMarker = "성공"

// maxResponseBody caps how much of the endpoint's answer is read.
const maxResponseBody = 64 << 10

// Kind classifies a failed status update.
type Kind int

const (
	KindTimeout Kind = iota + 1
	KindNetwork
	KindHTTPStatus
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http_status"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Error is a failed status update. errors.Is(err, domain.ErrGateway) holds.
type Error struct {
	Kind     Kind
	StopID   int
	Status   int    // HTTP status, KindHTTPStatus only
	Response string // endpoint body, trimmed
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("status update for stop %d: endpoint returned HTTP %d", e.StopID, e.Status)
	case KindRejected:
		return fmt.Sprintf("status update for stop %d rejected: %s", e.StopID, e.Response)
	default:
		return fmt.Sprintf("status update for stop %d: %s: %v", e.StopID, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{domain.ErrGateway, e.Err}
	}
	return []error{domain.ErrGateway}
}

// Client talks to the write endpoint.
type Client struct {
	endpoint      string
	successMarker string
	httpClient    *http.Client
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (10 second timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithSuccessMarker replaces DefaultSuccessMarker.
func WithSuccessMarker(m string) Option {
	return func(cl *Client) { cl.successMarker = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a Client for the endpoint URL.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:      endpoint,
		successMarker: DefaultSuccessMarker,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetAttendance records status for the stop. The endpoint addresses the
// row by the stop's data index and derives the sheet row itself.
//
// There is no retry: a failure is reported and the sheet is assumed
// unchanged.
func (c *Client) SetAttendance(ctx context.Context, stopID int, status domain.Attendance) (domain.Ack, error) {
	if stopID < 0 {
		return domain.Ack{}, fmt.Errorf("gateway.Client.SetAttendance: stop id %d: %w", stopID, domain.ErrValidation)
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("gateway.Client.SetAttendance: parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("row", strconv.Itoa(stopID))
	q.Set("status", status.Label())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("gateway.Client.SetAttendance: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		gErr := &Error{Kind: KindNetwork, StopID: stopID, Err: err}
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			gErr.Kind = KindTimeout
		}
		c.logger.WarnContext(ctx, "status update failed", "stop_id", stopID, "status", status.String(), "kind", gErr.Kind.String(), "error", err)
		return domain.Ack{}, gErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return domain.Ack{}, &Error{Kind: KindNetwork, StopID: stopID, Err: err}
	}
	text := strings.TrimSpace(string(body))

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "status update rejected", "stop_id", stopID, "http_status", resp.StatusCode)
		return domain.Ack{}, &Error{Kind: KindHTTPStatus, StopID: stopID, Status: resp.StatusCode, Response: text}
	}
	if !strings.Contains(text, c.successMarker) {
		c.logger.WarnContext(ctx, "status update rejected", "stop_id", stopID, "response", text)
		return domain.Ack{}, &Error{Kind: KindRejected, StopID: stopID, Response: text}
	}

	c.logger.InfoContext(ctx, "status updated", "stop_id", stopID, "status", status.String())
	return domain.Ack{StopID: stopID, Attendance: status, Response: text, At: c.now()}, nil
}
