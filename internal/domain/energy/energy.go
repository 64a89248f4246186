// Package energy balances what a base's buildings and defenses produce against what they draw.
package energy

import (
	"sort"

	"github.com/rpggio/starbase/internal/domain/capacity"
	"github.com/rpggio/starbase/internal/domain/catalog"
)

// Input describes a base for balancing. Buildings holds active levels only.
// Defense slices hold one item key per queue row.
type Input struct {
	Buildings         map[string]int
	Environment       capacity.Environment
	CompletedDefenses []string
	PendingDefenses   []string
}

// Result is the energy position of a base. ReservedNegative is never positive.
type Result struct {
	Produced         int64 `json:"produced"`
	Consumed         int64 `json:"consumed"`
	RawBalance       int64 `json:"raw_balance"`
	ReservedNegative int64 `json:"reserved_negative"`
	ProjectedBalance int64 `json:"projected_balance"`
}

// Per-level draw of consuming buildings.
var consumers = map[string]int64{
	catalog.MetalRefineries:  1,
	catalog.RoboticFactories: 1,
	catalog.NaniteFactories:  2,
	catalog.Shipyards:        1,
	catalog.ResearchLabs:     1,
	catalog.Spaceports:       1,
	catalog.EconomicCenters:  2,
}

// BuildingDelta returns the signed energy a building produces (positive) or draws (negative) at a level.
func BuildingDelta(key string, level int, env capacity.Environment) int64 {
	if level <= 0 {
		return 0
	}
	l := int64(level)
	switch key {
	case catalog.SolarPlants:
		return l * positive(env.SolarEnergy)
	case catalog.GasPlants:
		return l * positive(env.GasYield)
	case catalog.FusionPlants:
		return l * 4
	}
	return -l * consumers[key]
}

// DefenseDelta returns the catalog energy delta of a defense, or zero for unknown keys.
func DefenseDelta(key string) int64 {
	it, ok := catalog.Lookup(key)
	if !ok || it.Category != catalog.CategoryDefense {
		return 0
	}
	return it.EnergyDelta
}

// Balance computes the energy position of a base.
func Balance(in Input) Result {
	var r Result

	keys := make([]string, 0, len(in.Buildings))
	for k := range in.Buildings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		add(&r, BuildingDelta(key, in.Buildings[key], in.Environment))
	}

	for _, key := range in.CompletedDefenses {
		add(&r, DefenseDelta(key))
	}

	for _, key := range in.PendingDefenses {
		if d := DefenseDelta(key); d < 0 {
			r.ReservedNegative += d
		}
	}

	r.RawBalance = r.Produced - r.Consumed
	r.ProjectedBalance = r.RawBalance + r.ReservedNegative
	return r
}

// Allows reports whether an item with the given delta may start against a balance.
// Items that produce or are neutral are always allowed.
func Allows(r Result, delta int64) bool {
	if delta >= 0 {
		return true
	}
	return r.ProjectedBalance+delta >= 0
}

func add(r *Result, delta int64) {
	if delta > 0 {
		r.Produced += delta
	} else {
		r.Consumed -= delta
	}
}

func positive(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
