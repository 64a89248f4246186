package empire

import (
	"time"

	"github.com/rpggio/starbase/internal/domain/capacity"
)

// Empire is a player's economic root.
type Empire struct {
	ID                    string         `json:"id"`
	OwnerID               string         `json:"owner_id"`
	Name                  string         `json:"name"`
	Credits               int64          `json:"credits"`
	Energy                int64          `json:"energy"`
	CreditsRemainderMilli int64          `json:"credits_remainder_milli"`
	TechLevels            map[string]int `json:"tech_levels"`
	LastResourceUpdate    time.Time      `json:"last_resource_update"`
	LastCreditPayout      time.Time      `json:"last_credit_payout"`
	CreatedAt             time.Time      `json:"created_at"`
}

// TechLevel returns the empire's level in a technology.
func (e *Empire) TechLevel(key string) int {
	if e == nil || e.TechLevels == nil {
		return 0
	}
	return e.TechLevels[key]
}

// Colony is an empire's settlement at a coordinate.
type Colony struct {
	ID                    string     `json:"id"`
	EmpireID              string     `json:"empire_id"`
	Coord                 Coordinate `json:"coord"`
	Citizens              int64      `json:"citizens"`
	CitizenRemainderMilli int64      `json:"citizen_remainder_milli"`
	LastCitizenUpdate     time.Time  `json:"last_citizen_update"`
}

// Location holds the read-only environment at a coordinate.
type Location struct {
	Coord       Coordinate `json:"coord"`
	SolarEnergy int64      `json:"solar_energy"`
	Fertility   int64      `json:"fertility"`
	GasYield    int64      `json:"gas_yield"`
	MetalYield  int64      `json:"metal_yield"`
}

// Environment converts the location into capacity input.
func (l Location) Environment() capacity.Environment {
	return capacity.Environment{
		SolarEnergy: l.SolarEnergy,
		Fertility:   l.Fertility,
		GasYield:    l.GasYield,
		MetalYield:  l.MetalYield,
	}
}

// Building is a constructed building at a base.
type Building struct {
	ID                    string     `json:"id"`
	EmpireID              string     `json:"empire_id"`
	Coord                 Coordinate `json:"coord"`
	Key                   string     `json:"building_key"`
	Level                 int        `json:"level"`
	IsActive              bool       `json:"is_active"`
	PendingUpgrade        bool       `json:"pending_upgrade"`
	ConstructionCompleted *time.Time `json:"construction_completed,omitempty"`
}

// Economy is the empire-wide rate fed to the ledger each tick.
type Economy struct {
	CreditsPerHour float64 `json:"credits_per_hour"`
	Energy         int64   `json:"energy"`
}
