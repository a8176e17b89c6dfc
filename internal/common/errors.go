// Package common defines shared constants and sentinel errors used across
// the server layers of ProjectKeeper. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Identity errors.
	ErrDuplicateUsername  = errors.New("username is already taken")
	ErrDuplicateEmail     = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")

	// Auth errors (invalid, malformed or expired token). Callers outside the
	// server only ever see ErrUnauthenticated.
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrUnauthenticated = errors.New("unauthorized")

	// Project errors.
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectForbidden = errors.New("access to project denied")

	// Validation errors.
	ErrValidation    = errors.New("validation failed")
	ErrBatchTooLarge = fmt.Errorf("%w: batch exceeds the maximum number of items", ErrValidation)
)

// ValidationError reports a single rejected input field.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
