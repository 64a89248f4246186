package fleet

import (
	"context"
	"time"

	"github.com/rpggio/starbase/internal/events"
)

// Repository provides persistence for fleets.
type Repository interface {
	Create(ctx context.Context, f *Fleet) error
	Get(ctx context.Context, id string) (*Fleet, error)
	FindStationed(ctx context.Context, empireID, coord string) (*Fleet, error)
	ListByEmpire(ctx context.Context, empireID string) ([]Fleet, error)
	ListArrived(ctx context.Context, empireID string, now time.Time) ([]Fleet, error)
	// Update and MergeInto return repository.ErrStale when a row changed since it was read.
	Update(ctx context.Context, f *Fleet) error
	MergeInto(ctx context.Context, target, absorbed *Fleet) error
}

// Publisher receives fleet notifications.
type Publisher interface {
	PublishFleetUpdated(ev events.FleetUpdated) bool
}
