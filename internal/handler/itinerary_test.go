package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/campaign-itinerary/internal/domain"
	"github.com/pkordes/campaign-itinerary/internal/handler"
	"github.com/pkordes/campaign-itinerary/internal/render"
)

// mockItineraries is a test double for handler.ItineraryServicer.
// Set only the method fields your test needs.
type mockItineraries struct {
	day           func(ctx context.Context, date string) (domain.Itinerary, error)
	setAttendance func(ctx context.Context, date string, stopID int, status domain.Attendance) (domain.Itinerary, domain.Ack, error)
}

func (m *mockItineraries) Day(ctx context.Context, date string) (domain.Itinerary, error) {
	return m.day(ctx, date)
}
func (m *mockItineraries) SetAttendance(ctx context.Context, date string, stopID int, status domain.Attendance) (domain.Itinerary, domain.Ack, error) {
	return m.setAttendance(ctx, date, stopID, status)
}

// compile-time check: mockItineraries must satisfy handler.ItineraryServicer.
var _ handler.ItineraryServicer = (*mockItineraries)(nil)

// ---- helpers ---------------------------------------------------------------

var (
	seoul     = time.FixedZone("KST", 9*60*60)
	refreshID = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	cityHall  = domain.Coordinate{Lat: 37.5663, Lng: 126.9779}
	gangnam   = domain.Coordinate{Lat: 37.4979, Lng: 127.0276}
)

func sampleItinerary(date string) domain.Itinerary {
	c1, c2 := cityHall, gangnam
	stamp := time.Date(2026, 10, 17, 9, 5, 0, 0, seoul)
	stops := []domain.Stop{
		{ID: 0, Date: date, Scheduled: time.Date(2026, 10, 17, 9, 0, 0, 0, seoul), Title: "출근 인사", Address: "서울 중구 세종대로 110", Coordinate: &c1, Attendance: domain.Confirmed, ConfirmedAt: &stamp},
		{ID: 1, Date: date, Scheduled: time.Date(2026, 10, 17, 10, 0, 0, 0, seoul), Title: "거리 유세", Address: "서울 강남구 강남대로 396", Coordinate: &c2, Attendance: domain.Pending},
	}
	next := stops[1]
	return domain.Itinerary{
		RefreshID:   refreshID,
		Date:        date,
		Stops:       stops,
		Anchor:      &c1,
		Route:       []domain.Coordinate{c1, c2},
		Next:        &next,
		Distances:   map[int]float64{0: 0, 1: 9300},
		GeneratedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, seoul),
	}
}

func echoDay() *mockItineraries {
	return &mockItineraries{
		day: func(_ context.Context, date string) (domain.Itinerary, error) {
			if date == "" {
				date = "2026-10-17"
			}
			return sampleItinerary(date), nil
		},
	}
}

func serve(t *testing.T, svc handler.ItineraryServicer, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	h := handler.NewServer(svc, render.Kakao, nil).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

// ---- GET /api/itinerary ----------------------------------------------------

func TestGetItinerary_OK(t *testing.T) {
	var gotDate string
	svc := echoDay()
	inner := svc.day
	svc.day = func(ctx context.Context, date string) (domain.Itinerary, error) {
		gotDate = date
		return inner(ctx, date)
	}

	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/itinerary?date=2026-10-17", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-10-17", gotDate)
	assert.Equal(t, refreshID.String(), rec.Header().Get("X-Refresh-Id"))

	var body struct {
		RefreshID string `json:"refresh_id"`
		Date      string `json:"date"`
		Stops     []struct {
			ID         int    `json:"id"`
			Title      string `json:"title"`
			Attendance string `json:"attendance"`
			Links      []struct {
				Provider string `json:"provider"`
				URL      string `json:"url"`
			} `json:"links"`
		} `json:"stops"`
		Next *struct {
			ID int `json:"id"`
		} `json:"next"`
		Route     []domain.Coordinate `json:"route"`
		Distances map[string]float64  `json:"distances"`
		Empty     bool                `json:"empty"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, refreshID.String(), body.RefreshID)
	require.Len(t, body.Stops, 2)
	assert.Equal(t, "confirmed", body.Stops[0].Attendance)
	assert.Equal(t, "pending", body.Stops[1].Attendance)
	require.Len(t, body.Stops[1].Links, 3)
	assert.Equal(t, "kakao", body.Stops[1].Links[0].Provider)
	require.NotNil(t, body.Next)
	assert.Equal(t, 1, body.Next.ID)
	assert.Len(t, body.Route, 2)
	assert.InDelta(t, 9300, body.Distances["1"], 0.1)
	assert.False(t, body.Empty)
}

func TestGetItinerary_DefaultsDate(t *testing.T) {
	var gotDate = "unset"
	svc := &mockItineraries{day: func(_ context.Context, date string) (domain.Itinerary, error) {
		gotDate = date
		return domain.Itinerary{Date: "2026-10-17", Empty: true}, nil
	}}

	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/itinerary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", gotDate, "the service picks today")
	assert.JSONEq(t, `[]`, mustField(t, rec.Body.Bytes(), "route"))
	assert.JSONEq(t, `[]`, mustField(t, rec.Body.Bytes(), "stops"))
	assert.JSONEq(t, `true`, mustField(t, rec.Body.Bytes(), "empty"))
}

func mustField(t *testing.T, b []byte, name string) string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &m))
	return string(m[name])
}

func TestGetItinerary_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		err    error
		status int
		code   string
	}{
		{"malformed date", "?date=17-10-2026", nil, http.StatusUnprocessableEntity, "validation_error"},
		{"schedule unavailable", "", fmt.Errorf("sheet.Schedule.Load: %w: HTTP 503", domain.ErrScheduleSource), http.StatusBadGateway, "schedule_unavailable"},
		{"service validation", "", fmt.Errorf("service.ItineraryService.Day: date \"x\": %w", domain.ErrValidation), http.StatusUnprocessableEntity, "validation_error"},
		{"unexpected", "", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockItineraries{day: func(context.Context, string) (domain.Itinerary, error) {
				if tc.err == nil {
					t.Fatal("service must not be called")
				}
				return domain.Itinerary{}, tc.err
			}}

			rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/itinerary"+tc.query, nil))

			require.Equal(t, tc.status, rec.Code)
			detail := decodeError(t, rec)
			assert.Equal(t, tc.code, detail.Code)
			assert.NotContains(t, detail.Message, "service.ItineraryService")
		})
	}
}

func TestGetItinerary_StaleViewIsOK(t *testing.T) {
	svc := &mockItineraries{day: func(context.Context, string) (domain.Itinerary, error) {
		it := sampleItinerary("2026-10-17")
		it.Stale = true
		it.Notice = "showing the view from 09:30"
		return it, nil
	}}

	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/itinerary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `true`, mustField(t, rec.Body.Bytes(), "stale"))
	assert.JSONEq(t, `"showing the view from 09:30"`, mustField(t, rec.Body.Bytes(), "notice"))
}

// ---- map and GPX -----------------------------------------------------------

func TestGetItineraryMap(t *testing.T) {
	rec := serve(t, echoDay(), httptest.NewRequest(http.MethodGet, "/api/itinerary/map?date=2026-10-17", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var fc render.FeatureCollection
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 4, "two markers, the anchor and the route")
}

func TestGetItineraryGPX(t *testing.T) {
	rec := serve(t, echoDay(), httptest.NewRequest(http.MethodGet, "/api/itinerary/route.gpx?date=2026-10-17", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/gpx+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "itinerary-2026-10-17.gpx")
	assert.Contains(t, rec.Body.String(), "<gpx")
	assert.Contains(t, rec.Body.String(), "거리 유세")
}

func TestGetItineraryGPX_ScheduleUnavailable(t *testing.T) {
	svc := &mockItineraries{day: func(context.Context, string) (domain.Itinerary, error) {
		return domain.Itinerary{}, domain.ErrScheduleSource
	}}

	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/itinerary/route.gpx", nil))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "schedule_unavailable", decodeError(t, rec).Code)
}

// ---- dashboard -------------------------------------------------------------

func TestGetDashboard(t *testing.T) {
	rec := serve(t, echoDay(), httptest.NewRequest(http.MethodGet, "/?date=2026-10-17", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "거리 유세")
	assert.Contains(t, rec.Body.String(), `action="/stops/1/attendance"`)
}

func TestGetDashboard_FailedWriteNotice(t *testing.T) {
	rec := serve(t, echoDay(), httptest.NewRequest(http.MethodGet, "/?date=2026-10-17&failed=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "상태를 저장하지 못했습니다")
}

func TestGetDashboard_ScheduleUnavailable(t *testing.T) {
	svc := &mockItineraries{day: func(context.Context, string) (domain.Itinerary, error) {
		return domain.Itinerary{}, fmt.Errorf("sheet.Schedule.Load: %w: missing columns: date", domain.ErrScheduleSource)
	}}

	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing columns: date")
	assert.NotContains(t, rec.Body.String(), "sheet.Schedule.Load")
}

// ---- POST /api/stops/{stopId}/attendance -----------------------------------

func TestPostAttendance_OK(t *testing.T) {
	var gotDate string
	var gotID int
	var gotStatus domain.Attendance
	svc := &mockItineraries{setAttendance: func(_ context.Context, date string, id int, status domain.Attendance) (domain.Itinerary, domain.Ack, error) {
		gotDate, gotID, gotStatus = date, id, status
		return sampleItinerary("2026-10-17"), domain.Ack{StopID: id, Attendance: status, Response: "성공"}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/stops/1/attendance?date=2026-10-17", strings.NewReader(`{"status":"declined"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(t, svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-10-17", gotDate)
	assert.Equal(t, 1, gotID)
	assert.Equal(t, domain.Declined, gotStatus)

	var body struct {
		Ack struct {
			StopID     int    `json:"stop_id"`
			Attendance string `json:"attendance"`
		} `json:"ack"`
		Itinerary struct {
			RefreshID string `json:"refresh_id"`
		} `json:"itinerary"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 1, body.Ack.StopID)
	assert.Equal(t, "declined", body.Ack.Attendance)
	assert.Equal(t, refreshID.String(), body.Itinerary.RefreshID)
}

func TestPostAttendance_AcceptsSheetLabels(t *testing.T) {
	var gotStatus domain.Attendance
	svc := &mockItineraries{setAttendance: func(_ context.Context, _ string, _ int, status domain.Attendance) (domain.Itinerary, domain.Ack, error) {
		gotStatus = status
		return sampleItinerary("2026-10-17"), domain.Ack{}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/stops/0/attendance", strings.NewReader(`{"status":"참석"}`))
	rec := serve(t, svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Confirmed, gotStatus)
}

func TestPostAttendance_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		err    error
		status int
		code   string
	}{
		{"non-numeric id", "/api/stops/abc/attendance", `{"status":"confirmed"}`, nil, http.StatusUnprocessableEntity, "validation_error"},
		{"negative id", "/api/stops/-1/attendance", `{"status":"confirmed"}`, nil, http.StatusUnprocessableEntity, "validation_error"},
		{"bad date", "/api/stops/1/attendance?date=tomorrow", `{"status":"confirmed"}`, nil, http.StatusUnprocessableEntity, "validation_error"},
		{"unknown status", "/api/stops/1/attendance", `{"status":"maybe"}`, nil, http.StatusUnprocessableEntity, "validation_error"},
		{"bad json", "/api/stops/1/attendance", `{`, nil, http.StatusUnprocessableEntity, "validation_error"},
		{"unknown field", "/api/stops/1/attendance", `{"status":"confirmed","row":3}`, nil, http.StatusUnprocessableEntity, "validation_error"},
		{"gateway timeout", "/api/stops/1/attendance", `{"status":"confirmed"}`,
			fmt.Errorf("service.ItineraryService.SetAttendance: %w", domain.ErrGateway), http.StatusBadGateway, "gateway_error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockItineraries{setAttendance: func(context.Context, string, int, domain.Attendance) (domain.Itinerary, domain.Ack, error) {
				if tc.err == nil {
					t.Fatal("service must not be called")
				}
				return domain.Itinerary{}, domain.Ack{}, tc.err
			}}

			rec := serve(t, svc, httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.body)))

			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Code)
		})
	}
}

// ---- POST /stops/{stopId}/attendance (dashboard form) ----------------------

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPostAttendanceForm_RedirectsBack(t *testing.T) {
	var gotID int
	svc := &mockItineraries{setAttendance: func(_ context.Context, _ string, id int, _ domain.Attendance) (domain.Itinerary, domain.Ack, error) {
		gotID = id
		return sampleItinerary("2026-10-17"), domain.Ack{}, nil
	}}

	rec := serve(t, svc, postForm("/stops/1/attendance", url.Values{"date": {"2026-10-17"}, "status": {"confirmed"}}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?date=2026-10-17", rec.Header().Get("Location"))
	assert.Equal(t, 1, gotID)
}

func TestPostAttendanceForm_GatewayFailureFlagsRedirect(t *testing.T) {
	svc := &mockItineraries{setAttendance: func(context.Context, string, int, domain.Attendance) (domain.Itinerary, domain.Ack, error) {
		return domain.Itinerary{}, domain.Ack{}, domain.ErrGateway
	}}

	rec := serve(t, svc, postForm("/stops/2/attendance", url.Values{"date": {"2026-10-17"}, "status": {"declined"}}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?date=2026-10-17&failed=2", rec.Header().Get("Location"))
}

func TestPostAttendanceForm_BadStatus(t *testing.T) {
	rec := serve(t, &mockItineraries{}, postForm("/stops/2/attendance", url.Values{"status": {"maybe"}}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
