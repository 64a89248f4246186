package building

import "errors"

var (
	// ErrUnknownBuilding indicates a key that isn't a catalog building.
	ErrUnknownBuilding = errors.New("unknown building")
	// ErrUnderConstruction indicates the building already has work scheduled.
	ErrUnderConstruction = errors.New("building is already under construction")
	// ErrInvalidInput indicates invalid building input.
	ErrInvalidInput = errors.New("invalid building input")
)
