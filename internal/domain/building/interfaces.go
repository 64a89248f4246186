package building

import (
	"context"
	"time"

	"github.com/rpggio/starbase/internal/domain/empire"
)

// Repository provides persistence for building construction state.
type Repository interface {
	Upsert(ctx context.Context, b *empire.Building) error
	Get(ctx context.Context, empireID string, coord empire.Coordinate, key string) (*empire.Building, error)
	ListDue(ctx context.Context, empireID string, now time.Time) ([]empire.Building, error)
	Activate(ctx context.Context, id string, now time.Time) error
}
