package geocode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies geocoding failures.
type ErrorKind int

const (
	// KindUnknown is anything not classified below.
	KindUnknown ErrorKind = iota
	// KindNotFound: the service answered but had no match for the address.
	KindNotFound
	// KindInvalidRequest: the service rejected the query itself.
	KindInvalidRequest
	// KindRateLimit: too many requests.
	KindRateLimit
	// KindQuotaExceeded: quota used up or key denied.
	KindQuotaExceeded
	// KindTimeout: no answer in time.
	KindTimeout
	// KindNetwork: transport failure or 5xx.
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidRequest:
		return "invalid_request"
	case KindRateLimit:
		return "rate_limit"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is a classified geocoding failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocode %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("geocode %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Definitive reports whether the answer would be the same on retry.
// Only definitive failures are memoized.
func (e *Error) Definitive() bool {
	return e.Kind == KindNotFound || e.Kind == KindInvalidRequest
}

// IsDefinitive reports whether err is a definitive *Error.
func IsDefinitive(err error) bool {
	var gErr *Error
	if errors.As(err, &gErr) {
		return gErr.Definitive()
	}
	return false
}

// KindOf returns the kind of err, KindUnknown when it is not an *Error.
func KindOf(err error) ErrorKind {
	var gErr *Error
	if errors.As(err, &gErr) {
		return gErr.Kind
	}
	return KindUnknown
}

// classifyHTTPStatus maps a non-200 response status to an *Error.
func classifyHTTPStatus(status int) *Error {
	switch status {
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimit, Message: "rate limit reached"}
	case http.StatusForbidden:
		return &Error{Kind: KindQuotaExceeded, Message: "quota exceeded or access denied"}
	case http.StatusBadRequest:
		return &Error{Kind: KindInvalidRequest, Message: "invalid request"}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: "location not found"}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout, http.StatusInternalServerError:
		return &Error{Kind: KindNetwork, Message: fmt.Sprintf("service unavailable (status %d)", status)}
	default:
		return &Error{Kind: KindUnknown, Message: fmt.Sprintf("HTTP status %d", status)}
	}
}

// classifyTransport wraps an error from http.Client.Do.
func classifyTransport(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindNetwork, Message: "request failed", Err: err}
}

// classifyStatus maps a Google Geocoding API "status" field to an *Error.
func classifyStatus(status, message string) *Error {
	switch status {
	case "ZERO_RESULTS":
		return &Error{Kind: KindNotFound, Message: "no results"}
	case "OVER_QUERY_LIMIT":
		return &Error{Kind: KindRateLimit, Message: message}
	case "REQUEST_DENIED", "OVER_DAILY_LIMIT":
		return &Error{Kind: KindQuotaExceeded, Message: message}
	case "INVALID_REQUEST":
		return &Error{Kind: KindInvalidRequest, Message: message}
	default:
		return &Error{Kind: KindUnknown, Message: fmt.Sprintf("status %s: %s", status, message)}
	}
}
