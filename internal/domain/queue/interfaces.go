package queue

import (
	"context"
	"time"

	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/domain/fleet"
	"github.com/rpggio/starbase/internal/domain/ledger"
)

// Repository provides persistence for the three production queues.
type Repository interface {
	Insert(ctx context.Context, item *Item) error
	Get(ctx context.Context, category catalog.Category, id string) (*Item, error)
	Find(ctx context.Context, id string) (*Item, error)
	FindPending(ctx context.Context, category catalog.Category, identityKey string) (*Item, error)
	ListDue(ctx context.Context, category catalog.Category, empireID string, now time.Time) ([]Item, error)
	ListUnpaid(ctx context.Context, category catalog.Category, olderThan time.Time) ([]Item, error)
	List(ctx context.Context, empireID string, opts ListOptions) ([]Item, error)
	MarkPaid(ctx context.Context, category catalog.Category, id string) error
	Complete(ctx context.Context, category catalog.Category, id string, at time.Time) error
	Cancel(ctx context.Context, category catalog.Category, id string, at time.Time) error
}

// BaseLoader returns empires and the snapshot of a colony owned by an empire.
type BaseLoader interface {
	Get(ctx context.Context, id string) (*empire.Empire, error)
	LoadBase(ctx context.Context, empireID string, coord empire.Coordinate) (*empire.Base, error)
}

// Ledger moves credits for queue costs and refunds.
type Ledger interface {
	Charge(ctx context.Context, e ledger.Entry) (int64, error)
	Credit(ctx context.Context, e ledger.Entry) (int64, error)
	QueueCharged(ctx context.Context, empireID, queueID string) (bool, error)
}

// TechAdvancer raises an empire's technology level.
type TechAdvancer interface {
	IncrementTech(ctx context.Context, empireID, key string) (int, error)
}

// FleetMerger adds finished units to the fleet stationed at a base.
type FleetMerger interface {
	MergeUnits(ctx context.Context, empireID, coord, unitKey string, count int64) (*fleet.Fleet, error)
}
