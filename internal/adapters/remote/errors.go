package remote

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote access.
var (
	ErrNotConfigured = errors.New("remote backend not configured")
	ErrNotSignedIn   = errors.New("not signed in")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRemote        = errors.New("remote error")
	ErrTransport     = errors.New("remote unreachable")
)

// Error carries the status and message of a rejected request.
type Error struct {
	Op      string
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %d: %s", e.Op, e.Status, e.Message)
}

// Unwrap maps 401/403 to ErrUnauthorized and everything else to ErrRemote.
func (e *Error) Unwrap() error {
	if e.Status == 401 || e.Status == 403 {
		return ErrUnauthorized
	}
	return ErrRemote
}
