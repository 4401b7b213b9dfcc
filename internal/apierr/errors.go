// Package apierr provides the failure kinds produced by the Jenkins transport,
// the shared error sentinels and retry infrastructure for HTTP calls.
//
// A failed call is reported as one of:
//   - *StatusError: the server answered with a non-2xx status.
//   - *TransportError: the request never produced a response.
//   - any other error (e.g. an undecodable body).
//
// StatusError unwraps to the sentinel matching its code, so callers can check
// with errors.Is(err, apierr.ErrAuthFailed) etc. Callers that need the code use
// errors.As.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates the server rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrTimeout indicates a request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates authentication or authorization failed.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")

	// ErrServer indicates a server-side failure (5xx).
	ErrServer = errors.New("server error")
)

// StatusError is a response with a non-success HTTP status.
// RetryAfter holds the server's Retry-After hint, zero if none was sent.
type StatusError struct {
	Code       int
	Body       []byte
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, http.StatusText(e.Code))
}

// Unwrap returns the sentinel for the status code, or nil if none applies.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusUnauthorized, e.Code == http.StatusForbidden:
		return ErrAuthFailed
	case e.Code == http.StatusTooManyRequests:
		return ErrRateLimit
	case e.Code == http.StatusRequestTimeout, e.Code == http.StatusGatewayTimeout:
		return ErrTimeout
	case e.Code >= 400 && e.Code < 500:
		return ErrBadRequest
	case e.Code >= 500 && e.Code < 600:
		return ErrServer
	}
	return nil
}

// TransportError is a failure below HTTP: DNS, connection refused, TLS, timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a failed call is transient and may be retried.
// Transport failures, 408, 429 and 5xx are retryable. Other statuses and
// unknown errors are not.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case errors.Is(statusErr, ErrRateLimit), errors.Is(statusErr, ErrTimeout):
			return true
		case statusErr.Code == http.StatusNotImplemented:
			return false
		case errors.Is(statusErr, ErrServer):
			return true
		}
		return false
	}

	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
