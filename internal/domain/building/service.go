package building

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/repository"
)

// Service schedules construction and activates buildings once it finishes.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new building service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ScheduleRequest asks for a new building or one more level of an existing one.
// A zero CompletesAt places the building active at once.
type ScheduleRequest struct {
	EmpireID    string
	Coord       empire.Coordinate
	Key         string
	Level       int
	CompletesAt time.Time
}

// Schedule records construction work. New buildings start at Level (default 1) and stay
// inactive until CompletesAt; existing ones get a pending upgrade.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (*empire.Building, error) {
	if it, ok := catalog.Lookup(req.Key); !ok || it.Category != catalog.CategoryBuilding {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuilding, req.Key)
	}
	coord, err := empire.ParseCoordinate(string(req.Coord))
	if err != nil {
		return nil, err
	}
	if req.Level < 0 {
		return nil, ErrInvalidInput
	}

	var completed *time.Time
	if !req.CompletesAt.IsZero() {
		at := req.CompletesAt
		completed = &at
	}

	b, err := s.repo.Get(ctx, req.EmpireID, coord, req.Key)
	switch {
	case err == nil:
		if b.ConstructionCompleted != nil {
			return nil, ErrUnderConstruction
		}
		if completed == nil {
			b.Level++
		} else {
			b.PendingUpgrade = true
			b.ConstructionCompleted = completed
		}
	case errors.Is(err, repository.ErrNotFound):
		level := req.Level
		if level == 0 {
			level = 1
		}
		b = &empire.Building{
			ID:                    uuid.NewString(),
			EmpireID:              req.EmpireID,
			Coord:                 coord,
			Key:                   req.Key,
			Level:                 level,
			IsActive:              completed == nil,
			ConstructionCompleted: completed,
		}
	default:
		return nil, fmt.Errorf("getting building: %w", err)
	}

	if err := s.repo.Upsert(ctx, b); err != nil {
		return nil, fmt.Errorf("saving building: %w", err)
	}
	return b, nil
}

// ActivateDue finishes every construction of the empire that is due. Upgrades raise the
// level by one. The completion timestamp is cleared so running again changes nothing.
func (s *Service) ActivateDue(ctx context.Context, empireID string, now time.Time) (int, error) {
	due, err := s.repo.ListDue(ctx, empireID, now)
	if err != nil {
		return 0, fmt.Errorf("listing due buildings: %w", err)
	}

	activated := 0
	for _, b := range due {
		if err := s.repo.Activate(ctx, b.ID, now); err != nil {
			if errors.Is(err, repository.ErrStale) {
				continue
			}
			s.logger.Error("building activation failed", "empire_id", empireID, "building_id", b.ID, "key", b.Key, "error", err)
			continue
		}
		activated++
		s.logger.Info("building activated", "empire_id", empireID, "coord", b.Coord, "key", b.Key, "upgrade", b.PendingUpgrade)
	}
	return activated, nil
}
