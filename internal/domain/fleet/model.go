package fleet

import (
	"sort"
	"time"

	"github.com/rpggio/starbase/internal/domain/catalog"
)

// Status is where a fleet is in its movement.
type Status string

const (
	StatusStationed Status = "stationed"
	StatusMoving    Status = "moving"
)

// Fleet is a group of units owned by an empire.
type Fleet struct {
	ID          string           `json:"id"`
	EmpireID    string           `json:"empire_id"`
	Coord       string           `json:"coord"`
	Destination string           `json:"destination,omitempty"`
	ArrivesAt   *time.Time       `json:"arrives_at,omitempty"`
	Status      Status           `json:"status"`
	Units       map[string]int64 `json:"units"`
	SizeCredits int64            `json:"size_credits"`
	UpdatedAt   time.Time        `json:"updated_at"`
	// Version guards read-modify-write updates of the row.
	Version int64 `json:"-"`
}

// UnitCount returns the number of units in the fleet.
func (f *Fleet) UnitCount() int64 {
	var n int64
	for _, c := range f.Units {
		n += c
	}
	return n
}

// Add merges units into the fleet and recomputes its size.
func (f *Fleet) Add(units map[string]int64) {
	if f.Units == nil {
		f.Units = make(map[string]int64, len(units))
	}
	for k, c := range units {
		if c > 0 {
			f.Units[k] += c
		}
	}
	f.SizeCredits = SizeCredits(f.Units)
}

// SizeCredits values a unit composition at catalog cost.
func SizeCredits(units map[string]int64) int64 {
	keys := make([]string, 0, len(units))
	for k := range units {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var total int64
	for _, k := range keys {
		total += units[k] * catalog.UnitCost(k)
	}
	return total
}
