package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/cloud"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/notify"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/remote"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/repository"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/scorestore"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/benchmark"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
	ErrServe       = errors.New("response write failed")
)

// Wrap prefixes err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// WrapKind tags err with a sentinel kind so callers can match both.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind returns a bare sentinel kind prefixed with op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps domain errors to a status and an error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, remote.ErrNotConfigured):
		return http.StatusServiceUnavailable, "cloud_disabled"
	case errors.Is(err, remote.ErrNotSignedIn):
		return http.StatusUnauthorized, "not_signed_in"
	case errors.Is(err, remote.ErrUnauthorized):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, remote.ErrRemote), errors.Is(err, remote.ErrTransport), errors.Is(err, notify.ErrSend):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, notify.ErrNotConfigured):
		return http.StatusServiceUnavailable, "mail_disabled"
	case errors.Is(err, ErrNotFound),
		errors.Is(err, cloud.ErrProfileNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, scorestore.ErrUserNotFound),
		errors.Is(err, benchmark.ErrUnknownBenchmark):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, category.ErrUnknownCategory),
		errors.Is(err, category.ErrOutOfRange),
		errors.Is(err, scorestore.ErrEmptyName),
		errors.Is(err, scorestore.ErrInvalidName),
		errors.Is(err, cloud.ErrInvalidSubmission),
		errors.Is(err, notify.ErrMissingFields),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail writes err with the status its kind maps to.
func fail(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}
