package mcp

import (
	"time"

	"github.com/rpggio/starbase/internal/domain/capacity"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/domain/energy"
	"github.com/rpggio/starbase/internal/domain/fleet"
	"github.com/rpggio/starbase/internal/domain/queue"
	"github.com/rpggio/starbase/internal/domain/research"
)

// Response is the envelope every tool returns.
type Response struct {
	Success      bool   `json:"success"`
	Data         any    `json:"data,omitempty"`
	Code         string `json:"code,omitempty"`
	Message      string `json:"message,omitempty"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

// StartProductionParams are the start_production arguments.
type StartProductionParams struct {
	EmpireID string `json:"empire_id" jsonschema:"ID of the empire placing the order"`
	Coord    string `json:"coord" jsonschema:"colony coordinate, e.g. A01:02:03:04"`
	ItemKey  string `json:"item_key" jsonschema:"technology, unit or defense key from starbase://catalog"`
}

// StartProductionResult is returned in data on success.
type StartProductionResult struct {
	QueueID      string    `json:"queue_id"`
	Category     string    `json:"category"`
	ItemKey      string    `json:"item_key"`
	CompletesAt  time.Time `json:"completes_at"`
	ETAMinutes   int64     `json:"eta_minutes"`
	CapacityRate float64   `json:"capacity_rate"`
	CreditsCost  int64     `json:"credits_cost"`
	BalanceAfter int64     `json:"balance_after"`
}

// CancelProductionParams are the cancel_production arguments.
type CancelProductionParams struct {
	EmpireID string `json:"empire_id" jsonschema:"ID of the owning empire"`
	QueueID  string `json:"queue_id" jsonschema:"queue item to cancel"`
	Refund   bool   `json:"refund,omitempty" jsonschema:"return the paid credits"`
}

// ListQueueParams are the list_queue arguments.
type ListQueueParams struct {
	EmpireID string `json:"empire_id" jsonschema:"ID of the empire"`
	Category string `json:"category,omitempty" jsonschema:"technology, unit or defense; all when empty"`
	Status   string `json:"status,omitempty" jsonschema:"pending, completed or cancelled; all when empty"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum items to return"`
}

// QueueEntry is one queue item as reported to clients.
type QueueEntry struct {
	queue.Item
	RemainingMinutes int64 `json:"remaining_minutes"`
}

// BaseParams are the get_base_status arguments.
type BaseParams struct {
	EmpireID string `json:"empire_id" jsonschema:"ID of the empire"`
	Coord    string `json:"coord" jsonschema:"colony coordinate"`
}

// BaseStatus is the capacity and energy view of one base.
type BaseStatus struct {
	Colony            *empire.Colony    `json:"colony"`
	Location          empire.Location   `json:"location"`
	Buildings         []empire.Building `json:"buildings"`
	Capacity          capacity.Result   `json:"capacity"`
	Energy            energy.Result     `json:"energy"`
	CompletedDefenses []string          `json:"completed_defenses"`
	PendingDefenses   []string          `json:"pending_defenses"`
	Pending           []QueueEntry      `json:"pending_queue"`
}

// EmpireParams are the get_empire arguments.
type EmpireParams struct {
	EmpireID string `json:"empire_id" jsonschema:"ID of the empire"`
}

// EmpireStatus is the empire-wide overview.
type EmpireStatus struct {
	Empire   *empire.Empire     `json:"empire"`
	Economy  empire.Economy     `json:"economy"`
	Colonies []empire.Colony    `json:"colonies"`
	Fleets   []fleet.Fleet      `json:"fleets"`
	Research []research.Project `json:"research,omitempty"`
}

// TransactionsParams are the list_transactions arguments.
type TransactionsParams struct {
	EmpireID string `json:"empire_id" jsonschema:"ID of the empire"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum entries, newest first"`
}
