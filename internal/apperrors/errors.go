// Package apperrors holds the failure kinds shared by the store, the services and the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrDuplicateCode is returned by stores when a short code violates the unique constraint.
	ErrDuplicateCode = errors.New("short code already exists")

	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("not found")

	// ErrCodeSpaceExhausted is returned when every generated code collided.
	ErrCodeSpaceExhausted = errors.New("failed to generate a unique short code")
)

// ConflictError reports a uniqueness conflict that the caller must resolve (e.g. a taken slug).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflict builds a ConflictError.
func NewConflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation builds a ValidationError for field.
func NewValidation(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RateLimitError is returned when an anonymous client exceeds its creation quota.
type RateLimitError struct {
	Limit  int64
	Window time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf(
		"You have reached your limit of %d creations per %s. Please log in for unlimited use.",
		e.Limit, windowLabel(e.Window),
	)
}

func windowLabel(d time.Duration) string {
	switch d {
	case time.Hour:
		return "hour"
	case 24 * time.Hour:
		return "day"
	case time.Minute:
		return "minute"
	}
	return d.String()
}

// UnavailableError wraps a failure of a backing dependency (database, redis, encoder).
type UnavailableError struct {
	Dependency string
	Err        error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Dependency, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// UnauthorizedError reports failed authentication.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// HTTPStatus maps err to the status code the transport should answer with.
func HTTPStatus(err error) int {
	var (
		conflict     *ConflictError
		validation   *ValidationError
		rateLimit    *RateLimitError
		unavailable  *UnavailableError
		unauthorized *UnauthorizedError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &conflict), errors.Is(err, ErrDuplicateCode):
		return http.StatusConflict
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
