package research

import (
	"context"
	"time"

	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/empire"
)

// Repository provides persistence for research projects.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	ListActive(ctx context.Context, empireID string) ([]Project, error)
	UpdateProgress(ctx context.Context, id string, progressMilli int64, previous, at time.Time) error
	Complete(ctx context.Context, id string, at time.Time) error
}

// RateSource gives the empire-wide capacity of a kind.
type RateSource interface {
	TotalCapacity(ctx context.Context, empireID string, kind catalog.CapacityKind) (float64, error)
}

// TechAdvancer raises an empire's technology level.
type TechAdvancer interface {
	IncrementTech(ctx context.Context, empireID, key string) (int, error)
}

// EmpireGetter loads an empire.
type EmpireGetter interface {
	Get(ctx context.Context, id string) (*empire.Empire, error)
}
