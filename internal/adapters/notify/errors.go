package notify

import "errors"

var (
	ErrMissingFields = errors.New("missing fields")
	ErrNotConfigured = errors.New("mail api key not configured")
	ErrSend          = errors.New("mail api rejected message")
)
