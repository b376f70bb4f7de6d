package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("invalid session input")
	// ErrNotFound is returned when no record exists for a session id.
	ErrNotFound = errors.New("session not found")
	// ErrTerminated is returned by status checks on logged out or terminated sessions.
	// It matches ErrNotFound with errors.Is.
	ErrTerminated = fmt.Errorf("%w: session has ended", ErrNotFound)
	// ErrExpired is returned when a session crossed the inactivity threshold.
	// The record still exists in the Inactive state.
	ErrExpired = errors.New("session has expired")
	// ErrDuplicate is returned by a Store when an insert or update clashes with
	// an existing session id or an existing Active record for the same identity.
	ErrDuplicate = errors.New("duplicate session")
	// ErrStorageUnavailable is returned when the storage backend cannot be reached in time.
	ErrStorageUnavailable = errors.New("session storage unavailable")
	// ErrLoginConflict is returned when login could not settle on a single active record
	// after the configured number of attempts.
	ErrLoginConflict = errors.New("concurrent login did not settle")
	// ErrUpdateConflict is returned when the identity of a session kept changing
	// under an update for the configured number of attempts.
	ErrUpdateConflict = errors.New("concurrent update did not settle")

	errRetry = errors.New("retry")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field string
	Rule  string
}

// ValidationError lists the fields rejected by input validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" ("+f.Rule+")")
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newFieldError(field, rule string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule}}}
}
