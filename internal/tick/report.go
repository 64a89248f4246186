package tick

import (
	"time"
)

// Step names used in logs and failure reports.
const (
	StepDefense   = "defense"
	StepBuildings = "buildings"
	StepTech      = "tech"
	StepUnits     = "units"
	StepLedger    = "ledger"
	StepFleets    = "fleets"
	StepResearch  = "research"
	StepCitizens  = "citizens"
)

// EmpireReport is what one pass did for one empire.
type EmpireReport struct {
	EmpireID           string   `json:"empire_id"`
	DefensesCompleted  []string `json:"defenses_completed,omitempty"`
	BuildingsActivated int      `json:"buildings_activated"`
	TechsCompleted     []string `json:"techs_completed,omitempty"`
	UnitsCompleted     []string `json:"units_completed,omitempty"`
	CompletionFailures int      `json:"completion_failures"`
	CreditsPaid        int64    `json:"credits_paid"`
	FleetsArrived      int      `json:"fleets_arrived"`
	ResearchCompleted  []string `json:"research_completed,omitempty"`
	CitizensAdded      int64    `json:"citizens_added"`
	FailedStep         string   `json:"failed_step,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// Failed reports whether the empire's pass was aborted.
func (r *EmpireReport) Failed() bool {
	return r.FailedStep != ""
}

// PassReport summarizes one full pass over every empire.
type PassReport struct {
	At         time.Time      `json:"at"`
	Duration   time.Duration  `json:"duration"`
	Reconciled int            `json:"reconciled"`
	Empires    []EmpireReport `json:"empires"`
}

// Failures counts the empires whose pass was aborted.
func (r *PassReport) Failures() int {
	n := 0
	for i := range r.Empires {
		if r.Empires[i].Failed() {
			n++
		}
	}
	return n
}
