package gateway_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/campaign-itinerary/internal/domain"
	"github.com/pkordes/campaign-itinerary/internal/gateway"
)

func TestClient_SetAttendance_Success(t *testing.T) {
	var gotRow, gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		gotRow = r.URL.Query().Get("row")
		gotStatus = r.URL.Query().Get("status")
		_, _ = w.Write([]byte("성공"))
	}))
	defer srv.Close()

	c := gateway.New(srv.URL + "/exec")
	ack, err := c.SetAttendance(context.Background(), 3, domain.Confirmed)

	require.NoError(t, err)
	assert.Equal(t, "3", gotRow)
	assert.Equal(t, "참석", gotStatus)
	assert.Equal(t, 3, ack.StopID)
	assert.Equal(t, domain.Confirmed, ack.Attendance)
	assert.Equal(t, "성공", ack.Response)
	assert.False(t, ack.At.IsZero())
}

func TestClient_SetAttendance_PreservesEndpointQuery(t *testing.T) {
	var gotDeployment string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDeployment = r.URL.Query().Get("deployment")
		_, _ = w.Write([]byte("ok 성공"))
	}))
	defer srv.Close()

	c := gateway.New(srv.URL + "/exec?deployment=abc")
	_, err := c.SetAttendance(context.Background(), 0, domain.Pending)

	require.NoError(t, err)
	assert.Equal(t, "abc", gotDeployment)
}

func TestClient_SetAttendance_StatusLabels(t *testing.T) {
	tests := []struct {
		status domain.Attendance
		label  string
	}{
		{domain.Pending, "미체크"},
		{domain.Confirmed, "참석"},
		{domain.Declined, "불참"},
	}
	for _, tc := range tests {
		t.Run(tc.status.String(), func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Query().Get("status")
				_, _ = w.Write([]byte("성공"))
			}))
			defer srv.Close()

			_, err := gateway.New(srv.URL).SetAttendance(context.Background(), 1, tc.status)

			require.NoError(t, err)
			assert.Equal(t, tc.label, got)
		})
	}
}

func TestClient_SetAttendance_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    gateway.Kind
	}{
		{
			name: "script error text",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("에러: row 값이 없습니다."))
			},
			kind: gateway.KindRejected,
		},
		{
			name: "http 500",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("성공"))
			},
			kind: gateway.KindHTTPStatus,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := gateway.New(srv.URL).SetAttendance(context.Background(), 2, domain.Declined)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrGateway)
			var gErr *gateway.Error
			require.True(t, errors.As(err, &gErr))
			assert.Equal(t, tc.kind, gErr.Kind)
			assert.Equal(t, 2, gErr.StopID)
		})
	}
}

func TestClient_SetAttendance_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte("성공"))
	}))
	defer srv.Close()

	c := gateway.New(srv.URL, gateway.WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := c.SetAttendance(context.Background(), 1, domain.Confirmed)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGateway)
	var gErr *gateway.Error
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, gateway.KindTimeout, gErr.Kind)
}

func TestClient_SetAttendance_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := gateway.New(url).SetAttendance(context.Background(), 1, domain.Confirmed)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGateway)
}

func TestClient_SetAttendance_CustomMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	_, err := gateway.New(srv.URL, gateway.WithSuccessMarker("OK")).SetAttendance(context.Background(), 1, domain.Confirmed)

	require.NoError(t, err)
}

func TestClient_SetAttendance_NegativeID(t *testing.T) {
	_, err := gateway.New("http://unused").SetAttendance(context.Background(), -1, domain.Confirmed)

	assert.ErrorIs(t, err, domain.ErrValidation)
}
