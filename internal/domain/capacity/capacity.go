// Package capacity derives per-hour rates for a base from its buildings, technologies and environment.
package capacity

import (
	"sort"

	"github.com/rpggio/starbase/internal/domain/catalog"
)

// EntryKind tells how a breakdown entry combines with the others.
type EntryKind string

const (
	EntryFlat    EntryKind = "flat"
	EntryPercent EntryKind = "percent"
)

// Entry is one line of a capacity breakdown. Percent entries carry a fraction (0.05 is +5%).
type Entry struct {
	Source string    `json:"source"`
	Value  float64   `json:"value"`
	Kind   EntryKind `json:"kind"`
}

// CapacityResult is a computed rate and the sources that produced it.
type CapacityResult struct {
	Value     float64 `json:"value"`
	Breakdown []Entry `json:"breakdown"`
}

// Environment holds the location values that feed capacity and energy.
type Environment struct {
	SolarEnergy int64 `json:"solar_energy"`
	Fertility   int64 `json:"fertility"`
	GasYield    int64 `json:"gas_yield"`
	MetalYield  int64 `json:"metal_yield"`
}

// Input is everything the calculator reads. Buildings holds active levels only.
type Input struct {
	Buildings   map[string]int
	TechLevels  map[string]int
	Environment Environment
	Citizens    int64
}

// Result holds one CapacityResult per kind.
type Result struct {
	Construction CapacityResult `json:"construction"`
	Production   CapacityResult `json:"production"`
	Research     CapacityResult `json:"research"`
	Citizen      CapacityResult `json:"citizen"`
	Economy      CapacityResult `json:"economy"`
}

// For returns the result for a capacity kind; unknown kinds yield a zero result.
func (r Result) For(kind catalog.CapacityKind) CapacityResult {
	switch kind {
	case catalog.KindConstruction:
		return r.Construction
	case catalog.KindProduction:
		return r.Production
	case catalog.KindResearch:
		return r.Research
	case catalog.KindCitizen:
		return r.Citizen
	case catalog.KindEconomy:
		return r.Economy
	default:
		return CapacityResult{}
	}
}

// CitizensPerBonusPoint is the population that adds +100% to every capacity.
const CitizensPerBonusPoint = 100000

var baselines = map[catalog.CapacityKind]float64{
	catalog.KindConstruction: 40,
	catalog.KindProduction:   0,
	catalog.KindResearch:     0,
	catalog.KindCitizen:      2,
	catalog.KindEconomy:      10,
}

type contribution struct {
	kind     catalog.CapacityKind
	perLevel func(env Environment) float64
}

func fixed(v float64) func(Environment) float64 { return func(Environment) float64 { return v } }

var buildingContributions = map[string][]contribution{
	catalog.RoboticFactories: {
		{kind: catalog.KindConstruction, perLevel: fixed(2)},
		{kind: catalog.KindProduction, perLevel: fixed(2)},
	},
	catalog.MetalRefineries: {
		{kind: catalog.KindConstruction, perLevel: func(env Environment) float64 { return float64(nonNegative64(env.MetalYield)) }},
		{kind: catalog.KindProduction, perLevel: func(env Environment) float64 { return float64(nonNegative64(env.MetalYield)) }},
	},
	catalog.NaniteFactories: {
		{kind: catalog.KindConstruction, perLevel: fixed(4)},
		{kind: catalog.KindProduction, perLevel: fixed(4)},
	},
	catalog.Shipyards: {
		{kind: catalog.KindProduction, perLevel: fixed(2)},
	},
	catalog.ResearchLabs: {
		{kind: catalog.KindResearch, perLevel: fixed(8)},
	},
	catalog.UrbanStructures: {
		{kind: catalog.KindCitizen, perLevel: func(env Environment) float64 { return float64(nonNegative64(env.Fertility)) }},
	},
	catalog.EconomicCenters: {
		{kind: catalog.KindEconomy, perLevel: fixed(3)},
	},
	catalog.Spaceports: {
		{kind: catalog.KindEconomy, perLevel: fixed(2)},
	},
}

type techBonus struct {
	kind     catalog.CapacityKind
	perLevel float64
}

var techBonuses = map[string][]techBonus{
	catalog.TechCybernetics: {
		{kind: catalog.KindConstruction, perLevel: 0.05},
		{kind: catalog.KindProduction, perLevel: 0.05},
	},
	catalog.TechComputer: {
		{kind: catalog.KindResearch, perLevel: 0.05},
	},
}

// Calculate computes every capacity kind for the input.
func Calculate(in Input) Result {
	return Result{
		Construction: calculate(catalog.KindConstruction, in),
		Production:   calculate(catalog.KindProduction, in),
		Research:     calculate(catalog.KindResearch, in),
		Citizen:      calculate(catalog.KindCitizen, in),
		Economy:      calculate(catalog.KindEconomy, in),
	}
}

func calculate(kind catalog.CapacityKind, in Input) CapacityResult {
	flat := baselines[kind]
	breakdown := []Entry{{Source: "baseline", Value: flat, Kind: EntryFlat}}

	for _, key := range sortedKeys(in.Buildings) {
		level := nonNegative(in.Buildings[key])
		if level == 0 {
			continue
		}
		for _, c := range buildingContributions[key] {
			if c.kind != kind {
				continue
			}
			v := float64(level) * c.perLevel(in.Environment)
			if v == 0 {
				continue
			}
			flat += v
			breakdown = append(breakdown, Entry{Source: key, Value: v, Kind: EntryFlat})
		}
	}

	percent := 0.0
	for _, key := range sortedKeys(in.TechLevels) {
		level := nonNegative(in.TechLevels[key])
		if level == 0 {
			continue
		}
		for _, b := range techBonuses[key] {
			if b.kind != kind {
				continue
			}
			v := float64(level) * b.perLevel
			percent += v
			breakdown = append(breakdown, Entry{Source: "tech:" + key, Value: v, Kind: EntryPercent})
		}
	}

	if citizens := nonNegative64(in.Citizens); citizens > 0 {
		bonus := float64(citizens) / CitizensPerBonusPoint
		percent += bonus
		breakdown = append(breakdown, Entry{Source: "citizens", Value: bonus, Kind: EntryPercent})
	}

	return CapacityResult{
		Value:     flat * (1 + percent),
		Breakdown: breakdown,
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func nonNegative64(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
