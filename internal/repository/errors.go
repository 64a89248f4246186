package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a unique constraint
	ErrDuplicate = errors.New("duplicate: unique constraint violated")

	// ErrStale is returned when a compare-and-set update matched no row
	ErrStale = errors.New("stale: row changed since it was read")

	// ErrInsufficientCredits is returned when a conditional debit finds too few credits
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")
)
