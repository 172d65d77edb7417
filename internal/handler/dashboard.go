package handler

import (
	"bytes"
	"net/http"

	"github.com/pkordes/campaign-itinerary/internal/render"
)

// failedNotice is shown after a dashboard button whose write failed.
const failedNotice = "상태를 저장하지 못했습니다. 다시 시도해 주세요."

// GetDashboard handles GET /?date=. Read failures render as plain text with
// the same status codes as the JSON API.
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		http.Error(w, unwrapMessage(err), http.StatusUnprocessableEntity)
		return
	}
	it, err := s.itineraries.Day(r.Context(), date)
	if err != nil {
		status, _ := classify(err)
		if status == http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), "dashboard failed", "error", err)
			http.Error(w, http.StatusText(status), status)
			return
		}
		http.Error(w, unwrapMessage(err), status)
		return
	}
	if r.URL.Query().Get("failed") != "" {
		if it.Notice != "" {
			it.Notice = failedNotice + " " + it.Notice
		} else {
			it.Notice = failedNotice
		}
	}

	var buf bytes.Buffer
	if err := render.Dashboard(&buf, it, s.nav); err != nil {
		s.logger.ErrorContext(r.Context(), "rendering dashboard", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Refresh-Id", it.RefreshID.String())
	//nolint:errcheck // the client is gone if this fails.
	w.Write(buf.Bytes())
}
