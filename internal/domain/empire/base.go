package empire

import (
	"github.com/rpggio/starbase/internal/domain/capacity"
	"github.com/rpggio/starbase/internal/domain/energy"
)

// Base is a snapshot of one colony with everything the calculators read.
type Base struct {
	Empire            *Empire    `json:"-"`
	Colony            *Colony    `json:"colony"`
	Location          Location   `json:"location"`
	Buildings         []Building `json:"buildings"`
	CompletedDefenses []string   `json:"completed_defenses"`
	PendingDefenses   []string   `json:"pending_defenses"`
}

// ActiveLevels maps building key to level for active buildings.
func (b *Base) ActiveLevels() map[string]int {
	levels := make(map[string]int, len(b.Buildings))
	for _, bld := range b.Buildings {
		if bld.IsActive {
			levels[bld.Key] += bld.Level
		}
	}
	return levels
}

// ActiveLevel returns the active level of one building type.
func (b *Base) ActiveLevel(key string) int {
	return b.ActiveLevels()[key]
}

// Capacity runs the capacity calculator on the snapshot.
func (b *Base) Capacity() capacity.Result {
	in := capacity.Input{
		Buildings:   b.ActiveLevels(),
		Environment: b.Location.Environment(),
	}
	if b.Empire != nil {
		in.TechLevels = b.Empire.TechLevels
	}
	if b.Colony != nil {
		in.Citizens = b.Colony.Citizens
	}
	return capacity.Calculate(in)
}

// Energy runs the energy balance on the snapshot.
func (b *Base) Energy() energy.Result {
	return energy.Balance(energy.Input{
		Buildings:         b.ActiveLevels(),
		Environment:       b.Location.Environment(),
		CompletedDefenses: b.CompletedDefenses,
		PendingDefenses:   b.PendingDefenses,
	})
}
