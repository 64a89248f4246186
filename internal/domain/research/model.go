package research

import "time"

// Status is the state of a research project.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Project is a legacy research effort that accumulates empire-wide research
// capacity over time instead of running through the technology queue.
type Project struct {
	ID            string    `json:"id"`
	EmpireID      string    `json:"empire_id"`
	TechKey       string    `json:"tech_key"`
	ProgressMilli int64     `json:"progress_milli"`
	RequiredMilli int64     `json:"required_milli"`
	LastProgress  time.Time `json:"last_progress"`
	Status        Status    `json:"status"`
}

// Percent returns completion in [0,100].
func (p *Project) Percent() float64 {
	if p.RequiredMilli <= 0 {
		return 100
	}
	pct := float64(p.ProgressMilli) / float64(p.RequiredMilli) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Report summarizes one Advance call.
type Report struct {
	Advanced  int      `json:"advanced"`
	Completed []string `json:"completed"`
}
