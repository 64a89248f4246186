package fleet

import "errors"

var (
	// ErrFleetNotFound indicates the fleet doesn't exist.
	ErrFleetNotFound = errors.New("fleet not found")
	// ErrNotStationed indicates a dispatch of a fleet already moving.
	ErrNotStationed = errors.New("fleet is not stationed")
	// ErrInvalidInput indicates invalid fleet input.
	ErrInvalidInput = errors.New("invalid fleet input")
)
