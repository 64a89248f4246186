package research

import "errors"

var (
	// ErrUnknownTech indicates a key that isn't a catalog technology.
	ErrUnknownTech = errors.New("unknown technology")
	// ErrAlreadyResearching indicates an active project for the same technology.
	ErrAlreadyResearching = errors.New("technology already being researched")
)
