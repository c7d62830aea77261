package store

import "errors"

var (
	// ErrNotFound is returned by all lookups that miss.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a uniqueness constraint rejects a write
	// (fingerprint, certificate code, email).
	ErrConflict = errors.New("record conflicts with an existing row")
)
