package scorestore

import "errors"

// Sentinel errors for the score store.
var (
	ErrPersist      = errors.New("persist scores")
	ErrEmptyName    = errors.New("name must not be empty")
	ErrInvalidName  = errors.New("invalid name")
	ErrUserNotFound = errors.New("user not found")
)
