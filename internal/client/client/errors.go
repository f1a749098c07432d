package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found on server")
	ErrRejected     = errors.New("request rejected")
	ErrBadResponse  = errors.New("malformed server response")

	// ErrNoCredential is a configuration error: an authenticated call was
	// attempted before a session token was set. No request is sent.
	ErrNoCredential = errors.New("no session token")
)

// TransportError describes a failed call to the server. It unwraps to one
// of the sentinel errors above.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// statusError maps a non-2xx status to a sentinel, keeping the server's
// message for display.
func statusError(code int, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = http.StatusText(code)
	}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, message)
	}
	return fmt.Errorf("%w: %s", ErrRejected, message)
}
