package citizen

import (
	"context"
	"time"

	"github.com/rpggio/starbase/internal/domain/empire"
)

// Growth is a compare-and-set update of one colony. It applies only while the stored
// last_citizen_update equals Previous.
type Growth struct {
	ColonyID       string
	Added          int64
	RemainderMilli int64
	Previous       time.Time
	Boundary       time.Time
}

// Repository provides persistence for colony populations.
type Repository interface {
	ListColonies(ctx context.Context, empireID string) ([]empire.Colony, error)
	ApplyGrowth(ctx context.Context, g Growth) error
}

// BaseLoader returns the snapshot of a colony owned by an empire.
type BaseLoader interface {
	LoadBase(ctx context.Context, empireID string, coord empire.Coordinate) (*empire.Base, error)
}
