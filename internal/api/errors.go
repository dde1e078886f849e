package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotAuthenticated blocks a call before any network traffic when no
	// session is held. Surfaced as inline UI state, never a global failure.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired is terminal: the refresh protocol ran and could not
	// produce a usable token. The session has been force-cleared.
	ErrSessionExpired = errors.New("session expired")
)

// TransportError means no response was received at all (connection refused,
// DNS failure, timeout). It is deliberately distinct from any status-carrying
// error so callers can branch on connectivity vs. authorization.
type TransportError struct {
	Op  string // "POST /transaction/transfer"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: no response: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response with the server's business message.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

// IsUnauthorized reports a 401 response.
func IsUnauthorized(err error) bool { return IsStatus(err, http.StatusUnauthorized) }

// IsTransport reports whether err is a no-response transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
