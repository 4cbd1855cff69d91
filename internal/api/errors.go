package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// MalformedResponseError means the server answered but the payload did not
// have the expected shape.
type MalformedResponseError struct {
	Endpoint string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Endpoint, e.Reason)
}

// StatusError is a non-2xx answer.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Code, e.Body)
}

// NotFound reports whether the server does not know the requested game.
func (e *StatusError) NotFound() bool { return e.Code == 404 }

// NetworkError wraps a transport failure: the request never got an answer
// (connection refused, timeout, cancellation).
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Endpoint, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the request was cut short by a deadline.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// IsNetworkFailure reports whether err carries a *NetworkError.
func IsNetworkFailure(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
