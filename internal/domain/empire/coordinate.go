package empire

import (
	"fmt"
	"regexp"
	"strings"
)

// Coordinate addresses a body as galaxy, region, system and orbit: A00:00:00:00.
type Coordinate string

var coordinatePattern = regexp.MustCompile(`^[A-Z]\d{2}:\d{2}:\d{2}:\d{2}$`)

// ParseCoordinate validates and normalizes a coordinate string.
func ParseCoordinate(s string) (Coordinate, error) {
	c := strings.ToUpper(strings.TrimSpace(s))
	if !coordinatePattern.MatchString(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	return Coordinate(c), nil
}

func (c Coordinate) String() string { return string(c) }

// Galaxy returns the leading galaxy segment, e.g. "A00".
func (c Coordinate) Galaxy() string {
	if len(c) < 3 {
		return ""
	}
	return string(c[:3])
}
