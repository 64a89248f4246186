package empire

import "errors"

var (
	// ErrEmpireNotFound indicates the empire doesn't exist.
	ErrEmpireNotFound = errors.New("empire not found")
	// ErrNotOwner indicates the coordinate isn't a colony of the empire.
	ErrNotOwner = errors.New("coordinate not owned by empire")
	// ErrInvalidCoordinate indicates a malformed coordinate.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrColonyExists indicates the coordinate is already colonized.
	ErrColonyExists = errors.New("coordinate already colonized")
	// ErrInvalidInput indicates invalid empire input.
	ErrInvalidInput = errors.New("invalid empire input")
)
