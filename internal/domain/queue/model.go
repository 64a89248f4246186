package queue

import (
	"time"

	"github.com/rpggio/starbase/internal/domain/catalog"
)

// Status is the lifecycle state of a queue item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Categories lists the queues in completion order used by reconciliation.
var Categories = []catalog.Category{
	catalog.CategoryDefense,
	catalog.CategoryTechnology,
	catalog.CategoryUnit,
}

// Item is a row of one of the production queues.
type Item struct {
	ID          string           `json:"id"`
	Category    catalog.Category `json:"category"`
	EmpireID    string           `json:"empire_id"`
	Coord       string           `json:"coord"`
	ItemKey     string           `json:"item_key"`
	IdentityKey string           `json:"identity_key"`
	CreditsCost int64            `json:"credits_cost"`
	StartedAt   time.Time        `json:"started_at"`
	CompletesAt time.Time        `json:"completes_at"`
	Status      Status           `json:"status"`
	Paid        bool             `json:"paid"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CancelledAt *time.Time       `json:"cancelled_at,omitempty"`
}

// RemainingMinutes is the whole minutes left until completion, never negative.
func (i *Item) RemainingMinutes(now time.Time) int64 {
	left := i.CompletesAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int64((left + time.Minute - 1) / time.Minute)
}

// StartResult is returned by a successful Start.
type StartResult struct {
	QueueID      string           `json:"queue_id"`
	Category     catalog.Category `json:"category"`
	ItemKey      string           `json:"item_key"`
	CompletesAt  time.Time        `json:"completes_at"`
	ETAMinutes   int64            `json:"eta_minutes"`
	CapacityRate float64          `json:"capacity_rate"`
	CreditsCost  int64            `json:"credits_cost"`
	BalanceAfter int64            `json:"balance_after"`
}

// CompletionReport summarizes one CompleteDue call.
type CompletionReport struct {
	Category  catalog.Category `json:"category"`
	Completed []string         `json:"completed"`
	Skipped   int              `json:"skipped"`
	Failed    int              `json:"failed"`
}

// CancelRequest asks to cancel a pending item. Refund returns the paid cost.
type CancelRequest struct {
	EmpireID string
	QueueID  string
	Refund   bool
}

// ListOptions filters List.
type ListOptions struct {
	Category catalog.Category
	Status   Status
	Limit    int
}

// Unmet describes one failed prerequisite.
type Unmet struct {
	Key           string `json:"key"`
	RequiredLevel int    `json:"required_level"`
	CurrentLevel  int    `json:"current_level"`
	Building      bool   `json:"building,omitempty"`
}
