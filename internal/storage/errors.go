package storage

import "errors"

// Sentinel errors shared by every backend. Stores wrap driver errors
// into these; callers branch with errors.Is.
var (
	// ErrNotFound signals that no record carries the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey signals that the key is already taken. Sales,
	// customers and ranking runs are immutable once written, so an
	// insert never overwrites.
	ErrDuplicateKey = errors.New("duplicate key: records are immutable once written")

	// ErrInvalidInput signals that the record failed validation before
	// reaching the backend.
	ErrInvalidInput = errors.New("invalid input")
)
