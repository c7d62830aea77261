package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when an operation requiring an
	// identity is called without one.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAlreadyRevoked is returned by a second revocation of the same
	// certificate. Revocation is one-way and not idempotent: the caller is
	// told explicitly instead of silently succeeding.
	ErrAlreadyRevoked = errors.New("certificate already revoked")
)

// ValidationError rejects malformed input before any store call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthorizationError means the caller's identity lacks the role or
// institution standing for the attempted action.
type AuthorizationError struct {
	Action string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not authorized to %s: %s", e.Action, e.Reason)
}

// DependencyError wraps store failures that are neither misses nor
// conflicts. The underlying message is preserved for diagnostics.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency failure during %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func dependencyErr(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}
