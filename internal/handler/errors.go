package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the client is gone if this fails.
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// classify maps a service error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrGateway):
		return http.StatusBadGateway, "gateway_error"
	case errors.Is(err, domain.ErrScheduleSource):
		return http.StatusBadGateway, "schedule_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeServiceError writes the JSON error for err. Unclassified errors are
// logged and reported without detail.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		writeError(w, status, code, "internal server error")
		return
	}
	writeError(w, status, code, unwrapMessage(err))
}

// unwrapMessage extracts the human-readable part of a wrapped error by
// dropping the "pkg.Type.Method" call-site prefixes and the sentinel text.
// e.g. `service.ItineraryService.Day: date "x": want YYYY-MM-DD: validation error`
// → `date "x": want YYYY-MM-DD`
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	sentinels := map[string]bool{
		domain.ErrValidation.Error():     true,
		domain.ErrNotFound.Error():       true,
		domain.ErrGateway.Error():        true,
		domain.ErrScheduleSource.Error(): true,
	}
	var kept []string
	for _, part := range strings.Split(err.Error(), ": ") {
		if sentinels[part] || isCallSite(part) {
			continue
		}
		kept = append(kept, part)
	}
	if len(kept) == 0 {
		return err.Error()
	}
	return strings.Join(kept, ": ")
}

// isCallSite reports whether s looks like "pkg.Type.Method".
func isCallSite(s string) bool {
	if strings.Count(s, ".") < 2 || strings.ContainsAny(s, " \"") {
		return false
	}
	for _, r := range s {
		if r != '.' && r != '_' && !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9') {
			return false
		}
	}
	return true
}
