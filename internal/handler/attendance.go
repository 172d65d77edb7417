package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// attendanceRequest is the body of POST /api/stops/{stopId}/attendance.
type attendanceRequest struct {
	Status string `json:"status"`
}

// attendanceResponse acknowledges the write and carries the re-read itinerary.
type attendanceResponse struct {
	Ack       domain.Ack        `json:"ack"`
	Itinerary itineraryResponse `json:"itinerary"`
}

// stopIDParam binds the {stopId} path parameter.
func stopIDParam(r *http.Request) (int, error) {
	var id int
	err := runtime.BindStyledParameterWithOptions("simple", "stopId", chi.URLParam(r, "stopId"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid stop id %q: %w", chi.URLParam(r, "stopId"), domain.ErrValidation)
	}
	return id, nil
}

// PostAttendance handles POST /api/stops/{stopId}/attendance?date=.
// The new status is written through the gateway, then the itinerary is
// re-read; the response never reflects an unacknowledged write.
func (s *Server) PostAttendance(w http.ResponseWriter, r *http.Request) {
	stopID, err := stopIDParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	date, err := dateParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var body attendanceRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "validation_error", "request body too large")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "request body must be {\"status\": \"...\"}")
		return
	}
	status, err := domain.ParseAttendance(body.Status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	it, ack, err := s.itineraries.SetAttendance(r.Context(), date, stopID, status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("X-Refresh-Id", it.RefreshID.String())
	writeJSON(w, http.StatusOK, attendanceResponse{Ack: ack, Itinerary: s.toResponse(it)})
}

// PostAttendanceForm handles the dashboard buttons: POST /stops/{stopId}/attendance
// with form fields date and status. It redirects back to the dashboard; a
// failed write adds failed={stopId} so the dashboard can say so.
func (s *Server) PostAttendanceForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusUnprocessableEntity)
		return
	}
	date := r.PostForm.Get("date")

	stopID, err := stopIDParam(r)
	if err != nil {
		http.Error(w, unwrapMessage(err), http.StatusUnprocessableEntity)
		return
	}
	status, err := domain.ParseAttendance(r.PostForm.Get("status"))
	if err != nil {
		http.Error(w, unwrapMessage(err), http.StatusUnprocessableEntity)
		return
	}

	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	if _, _, err := s.itineraries.SetAttendance(r.Context(), date, stopID, status); err != nil {
		code, _ := classify(err)
		if code == http.StatusUnprocessableEntity {
			http.Error(w, unwrapMessage(err), code)
			return
		}
		s.logger.WarnContext(r.Context(), "dashboard status update failed", "stop_id", stopID, "error", err)
		q.Set("failed", fmt.Sprint(stopID))
	}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}
