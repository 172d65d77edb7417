package domain

import "errors"

// ErrNotFound is returned when the requested resource does not exist,
// e.g. a stop ID that is not on the schedule or a geocode cache miss.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. unknown attendance status, malformed date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrScheduleSource is returned when the schedule could not be read or parsed:
// network failure, a missing required column, or a malformed date/time cell.
// Handlers should map this to HTTP 502 when no earlier view can be shown.
var ErrScheduleSource = errors.New("schedule source error")

// ErrGateway is returned when a status write was not acknowledged by the
// remote endpoint. The write must be assumed not to have happened.
// Handlers should map this to HTTP 502.
var ErrGateway = errors.New("status gateway error")
