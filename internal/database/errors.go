package database

import "errors"

var (
	// ErrStorageUnavailable is returned when a storage call cannot complete:
	// the database is unreachable, the call timed out or the breaker is open.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrIntegrityViolation is returned when a write hits a uniqueness constraint
	ErrIntegrityViolation = errors.New("integrity violation")
)
