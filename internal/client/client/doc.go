// Package client talks to the wordmaster sync server over HTTP/JSON.
//
// HTTPClient implements Client. Database calls carry the session token in
// an "Authorization: Token <value>" header; without a token they fail with
// ErrNoCredential before any request is made. Every call is bounded by the
// configured timeout.
//
// Failures are returned as *TransportError, which unwraps to one of
// ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrRejected or
// ErrBadResponse, so callers can use errors.Is.
package client
