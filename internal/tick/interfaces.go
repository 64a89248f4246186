package tick

import (
	"context"
	"time"

	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/citizen"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/domain/ledger"
	"github.com/rpggio/starbase/internal/domain/queue"
	"github.com/rpggio/starbase/internal/domain/research"
)

// Empires lists empires and sums their economy.
type Empires interface {
	ListIDs(ctx context.Context) ([]string, error)
	Economy(ctx context.Context, empireID string) (empire.Economy, error)
}

// Queues completes due items and cancels orphaned unpaid items.
type Queues interface {
	CompleteDue(ctx context.Context, category catalog.Category, empireID string, now time.Time) (queue.CompletionReport, error)
	ReconcileUnpaid(ctx context.Context, olderThan time.Time) (int, error)
}

// Buildings activates constructions that have finished.
type Buildings interface {
	ActivateDue(ctx context.Context, empireID string, now time.Time) (int, error)
}

// Ledger pays out credits and stores energy.
type Ledger interface {
	Accrue(ctx context.Context, empireID string, creditsPerHour float64, energy int64, now time.Time) (*ledger.AccrualResult, error)
}

// Fleets lands fleets whose travel time has elapsed.
type Fleets interface {
	ResolveArrivals(ctx context.Context, empireID string, now time.Time) (int, error)
}

// Research advances legacy research projects.
type Research interface {
	Advance(ctx context.Context, empireID string, now time.Time) (research.Report, error)
}

// Citizens grows colony populations.
type Citizens interface {
	Accrue(ctx context.Context, empireID string, now time.Time) (citizen.Report, error)
}

// Deps bundles the services a pass drives.
type Deps struct {
	Empires   Empires
	Queues    Queues
	Buildings Buildings
	Ledger    Ledger
	Fleets    Fleets
	Research  Research
	Citizens  Citizens
}
