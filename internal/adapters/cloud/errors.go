package cloud

import "errors"

// Sentinel errors for cloud operations.
var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrInvalidSubmission = errors.New("invalid submission")
)
