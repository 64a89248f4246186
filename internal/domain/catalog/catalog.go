// Package catalog holds the static tables of buildings, technologies, units and defenses.
package catalog

import (
	"math"
	"sort"
)

// Building keys referenced by the capacity and energy tables.
const (
	UrbanStructures  = "urban_structures"
	SolarPlants      = "solar_plants"
	GasPlants        = "gas_plants"
	FusionPlants     = "fusion_plants"
	MetalRefineries  = "metal_refineries"
	RoboticFactories = "robotic_factories"
	NaniteFactories  = "nanite_factories"
	Shipyards        = "shipyards"
	ResearchLabs     = "research_labs"
	Spaceports       = "spaceports"
	EconomicCenters  = "economic_centers"
)

// Technology keys with capacity effects.
const (
	TechEnergy      = "energy"
	TechComputer    = "computer"
	TechCybernetics = "cybernetics"
)

// techCostGrowth is the per-level multiplier applied to technology costs.
const techCostGrowth = 1.5

func tech(key string, level int) Requirement { return Requirement{Key: key, Level: level} }

func building(key string, level int) *Requirement { return &Requirement{Key: key, Level: level} }

var items = []Item{
	// Buildings are constructed outside the production queues; listed for lookups.
	{Key: UrbanStructures, Name: "Urban Structures", Category: CategoryBuilding, Cost: 1, Capacity: KindConstruction},
	{Key: SolarPlants, Name: "Solar Plants", Category: CategoryBuilding, Cost: 1, Capacity: KindConstruction},
	{Key: GasPlants, Name: "Gas Plants", Category: CategoryBuilding, Cost: 1, Capacity: KindConstruction},
	{Key: FusionPlants, Name: "Fusion Plants", Category: CategoryBuilding, Cost: 20, Capacity: KindConstruction, Techs: []Requirement{tech(TechEnergy, 6)}},
	{Key: MetalRefineries, Name: "Metal Refineries", Category: CategoryBuilding, Cost: 1, Capacity: KindConstruction},
	{Key: RoboticFactories, Name: "Robotic Factories", Category: CategoryBuilding, Cost: 5, Capacity: KindConstruction, Techs: []Requirement{tech(TechComputer, 2)}},
	{Key: NaniteFactories, Name: "Nanite Factories", Category: CategoryBuilding, Cost: 80, Capacity: KindConstruction, Techs: []Requirement{tech(TechComputer, 10), tech("laser", 8)}},
	{Key: Shipyards, Name: "Shipyards", Category: CategoryBuilding, Cost: 5, Capacity: KindConstruction},
	{Key: ResearchLabs, Name: "Research Labs", Category: CategoryBuilding, Cost: 2, Capacity: KindConstruction},
	{Key: Spaceports, Name: "Spaceports", Category: CategoryBuilding, Cost: 5, Capacity: KindConstruction},
	{Key: EconomicCenters, Name: "Economic Centers", Category: CategoryBuilding, Cost: 80, Capacity: KindConstruction, Techs: []Requirement{tech(TechComputer, 10)}},

	// Technologies.
	{Key: TechEnergy, Name: "Energy", Category: CategoryTechnology, Cost: 20, Capacity: KindResearch},
	{Key: TechComputer, Name: "Computer", Category: CategoryTechnology, Cost: 20, Capacity: KindResearch},
	{Key: "armour", Name: "Armour", Category: CategoryTechnology, Cost: 40, Capacity: KindResearch},
	{Key: "laser", Name: "Laser", Category: CategoryTechnology, Cost: 40, Capacity: KindResearch, Techs: []Requirement{tech(TechEnergy, 2)}},
	{Key: "missiles", Name: "Missiles", Category: CategoryTechnology, Cost: 160, Capacity: KindResearch, Techs: []Requirement{tech(TechComputer, 4)}},
	{Key: "stellar_drive", Name: "Stellar Drive", Category: CategoryTechnology, Cost: 160, Capacity: KindResearch, Techs: []Requirement{tech(TechEnergy, 6)}},
	{Key: "plasma", Name: "Plasma", Category: CategoryTechnology, Cost: 320, Capacity: KindResearch, Techs: []Requirement{tech(TechEnergy, 6), tech("laser", 4)}, Building: building(ResearchLabs, 5)},
	{Key: "warp_drive", Name: "Warp Drive", Category: CategoryTechnology, Cost: 640, Capacity: KindResearch, Techs: []Requirement{tech(TechEnergy, 8), tech("stellar_drive", 12)}, Building: building(ResearchLabs, 6)},
	{Key: "shielding", Name: "Shielding", Category: CategoryTechnology, Cost: 1280, Capacity: KindResearch, Techs: []Requirement{tech(TechEnergy, 10)}, Building: building(ResearchLabs, 10)},
	{Key: "ion", Name: "Ion", Category: CategoryTechnology, Cost: 2560, Capacity: KindResearch, Techs: []Requirement{tech(TechEnergy, 12), tech("laser", 10)}, Building: building(ResearchLabs, 12)},
	{Key: "photon", Name: "Photon", Category: CategoryTechnology, Cost: 10240, Capacity: KindResearch, Techs: []Requirement{tech(TechEnergy, 16), tech("plasma", 8)}, Building: building(ResearchLabs, 16)},
	{Key: TechCybernetics, Name: "Cybernetics", Category: CategoryTechnology, Cost: 2000, Capacity: KindResearch, Techs: []Requirement{tech(TechComputer, 10)}, Building: building(ResearchLabs, 8)},

	// Units.
	{Key: "fighters", Name: "Fighters", Category: CategoryUnit, Cost: 5, Capacity: KindProduction, Techs: []Requirement{tech("laser", 1)}, Building: building(Shipyards, 1)},
	{Key: "bombers", Name: "Bombers", Category: CategoryUnit, Cost: 10, Capacity: KindProduction, Techs: []Requirement{tech("missiles", 1)}, Building: building(Shipyards, 2)},
	{Key: "heavy_bombers", Name: "Heavy Bombers", Category: CategoryUnit, Cost: 30, Capacity: KindProduction, Techs: []Requirement{tech("plasma", 2)}, Building: building(Shipyards, 3)},
	{Key: "ion_bombers", Name: "Ion Bombers", Category: CategoryUnit, Cost: 60, Capacity: KindProduction, Techs: []Requirement{tech("ion", 1)}, Building: building(Shipyards, 3)},
	{Key: "corvette", Name: "Corvette", Category: CategoryUnit, Cost: 20, Capacity: KindProduction, Techs: []Requirement{tech("stellar_drive", 2)}, Building: building(Shipyards, 4)},
	{Key: "recycler", Name: "Recycler", Category: CategoryUnit, Cost: 30, Capacity: KindProduction, Techs: []Requirement{tech("laser", 5)}, Building: building(Shipyards, 5)},
	{Key: "destroyer", Name: "Destroyer", Category: CategoryUnit, Cost: 40, Capacity: KindProduction, Techs: []Requirement{tech("plasma", 1)}, Building: building(Shipyards, 6)},
	{Key: "frigate", Name: "Frigate", Category: CategoryUnit, Cost: 80, Capacity: KindProduction, Techs: []Requirement{tech("missiles", 6)}, Building: building(Shipyards, 8)},
	{Key: "outpost_ship", Name: "Outpost Ship", Category: CategoryUnit, Cost: 100, Capacity: KindProduction, Techs: []Requirement{tech("warp_drive", 1)}, Building: building(Shipyards, 8)},
	{Key: "cruiser", Name: "Cruiser", Category: CategoryUnit, Cost: 200, Capacity: KindProduction, Techs: []Requirement{tech("plasma", 4)}, Building: building(Shipyards, 10)},
	{Key: "carrier", Name: "Carrier", Category: CategoryUnit, Cost: 400, Capacity: KindProduction, Techs: []Requirement{tech("missiles", 6)}, Building: building(Shipyards, 12)},

	// Defenses.
	{Key: "barracks", Name: "Barracks", Category: CategoryDefense, Cost: 10, Capacity: KindProduction},
	{Key: "laser_turrets", Name: "Laser Turrets", Category: CategoryDefense, Cost: 20, Capacity: KindProduction, EnergyDelta: -1, Techs: []Requirement{tech("laser", 1)}},
	{Key: "missile_turrets", Name: "Missile Turrets", Category: CategoryDefense, Cost: 50, Capacity: KindProduction, EnergyDelta: -1, Techs: []Requirement{tech("missiles", 1)}},
	{Key: "plasma_turrets", Name: "Plasma Turrets", Category: CategoryDefense, Cost: 250, Capacity: KindProduction, EnergyDelta: -2, Techs: []Requirement{tech("plasma", 1)}},
	{Key: "ion_turrets", Name: "Ion Turrets", Category: CategoryDefense, Cost: 500, Capacity: KindProduction, EnergyDelta: -3, Techs: []Requirement{tech("ion", 1)}},
	{Key: "photon_turrets", Name: "Photon Turrets", Category: CategoryDefense, Cost: 1000, Capacity: KindProduction, EnergyDelta: -4, Techs: []Requirement{tech("photon", 1)}},
	{Key: "planetary_shield", Name: "Planetary Shield", Category: CategoryDefense, Cost: 2000, Capacity: KindProduction, EnergyDelta: -20, Techs: []Requirement{tech("shielding", 5)}},
	{Key: "orbital_collector", Name: "Orbital Collector", Category: CategoryDefense, Cost: 300, Capacity: KindProduction, EnergyDelta: 6, Techs: []Requirement{tech(TechEnergy, 8)}},
}

var index = func() map[string]Item {
	m := make(map[string]Item, len(items))
	for _, it := range items {
		if _, dup := m[it.Key]; dup {
			panic("catalog: duplicate key " + it.Key)
		}
		m[it.Key] = it
	}
	return m
}()

// Lookup resolves a key across every category.
func Lookup(key string) (Item, bool) {
	it, ok := index[key]
	return it, ok
}

// All returns every entry of the given categories (all of them when none given), sorted by category then key.
func All(categories ...Category) []Item {
	want := make(map[Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if len(want) == 0 || want[it.Category] {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// CostAt returns the credits cost of an item given the empire's current level of it.
// Only technologies scale; other categories cost the same every time.
func CostAt(it Item, currentLevel int) int64 {
	if it.Category != CategoryTechnology || currentLevel <= 0 {
		return it.Cost
	}
	return int64(math.Round(float64(it.Cost) * math.Pow(techCostGrowth, float64(currentLevel))))
}

// UnitCost returns the credits value of one unit, or zero for unknown keys.
func UnitCost(key string) int64 {
	it, ok := index[key]
	if !ok || it.Category != CategoryUnit {
		return 0
	}
	return it.Cost
}
