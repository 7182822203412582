package goatflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a failure. Every error returned by this package carries
// exactly one Kind, so callers can match on outcomes instead of inspecting
// HTTP status codes or error strings.
type Kind int

const (
	// KindAPI is the generic failure for any non-2xx status not covered
	// by a more specific kind.
	KindAPI Kind = iota
	// KindValidation indicates a malformed request record, an undecodable
	// response body, or a client-side required-field violation.
	KindValidation
	// KindNetwork indicates the connection could not be established or
	// failed below the HTTP layer.
	KindNetwork
	// KindTimeout indicates no response arrived within the configured deadline.
	KindTimeout
	// KindUnauthorized indicates HTTP 401, a rejected refresh token, or a
	// call that stayed unauthorized after a forced refresh.
	KindUnauthorized
	// KindForbidden indicates HTTP 403.
	KindForbidden
	// KindNotFound indicates HTTP 404.
	KindNotFound
	// KindRateLimit indicates HTTP 429.
	KindRateLimit
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "api"
	}
}

// Error is the single error type raised by the GoatFlow client.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int      // HTTP status, 0 when the failure never reached the HTTP layer
	RetryAfter int      // seconds the server asked us to wait, 429 only
	Fields     []string // offending fields for validation failures
	cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("goatflow: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("goatflow: %s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf returns the Kind of err, or KindAPI when err is not a goatflow error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindAPI
}

func isKind(err error, k Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == k
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool { return isKind(err, KindNetwork) }

// IsTimeout reports whether err is a deadline failure.
func IsTimeout(err error) bool { return isKind(err, KindTimeout) }

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool { return isKind(err, KindUnauthorized) }

// IsForbidden reports whether err is a permission failure.
func IsForbidden(err error) bool { return isKind(err, KindForbidden) }

// IsNotFound reports whether err indicates a missing resource.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsRateLimit reports whether err is a rate-limit rejection.
func IsRateLimit(err error) bool { return isKind(err, KindRateLimit) }

// errorEnvelope mirrors the server's standard error body.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// errorFromResponse maps a non-2xx response to an *Error. The body is parsed
// leniently: a server that fails to emit its own error envelope must not turn
// an HTTP failure into a decode failure.
func errorFromResponse(status int, header http.Header, body []byte) *Error {
	e := &Error{
		StatusCode: status,
		Message:    serverMessage(status, body),
	}

	switch status {
	case http.StatusUnauthorized:
		e.Kind = KindUnauthorized
	case http.StatusForbidden:
		e.Kind = KindForbidden
	case http.StatusNotFound:
		e.Kind = KindNotFound
	case http.StatusTooManyRequests:
		e.Kind = KindRateLimit
		e.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
	default:
		e.Kind = KindAPI
	}

	return e
}

func serverMessage(status int, body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return http.StatusText(status)
}

// parseRetryAfter understands both forms RFC 9110 allows: a delay in whole
// seconds and an HTTP date. Anything else yields 0 (no hint).
func parseRetryAfter(value string) int {
	if value == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(value, "%d", &seconds); err == nil && seconds >= 0 {
		return seconds
	}

	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return int(d.Seconds())
		}
	}

	return 0
}
