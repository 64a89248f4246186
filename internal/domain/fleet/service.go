package fleet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/events"
	"github.com/rpggio/starbase/internal/repository"
)

// Service merges finished units into fleets and lands fleets that have arrived.
type Service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
}

// NewService creates a new fleet service. publisher may be nil.
func NewService(repo Repository, publisher Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

// updateAttempts bounds the re-read and re-apply loop after a lost version check.
const updateAttempts = 3

// MergeUnits adds count units to the fleet stationed at coord, creating it when absent.
func (s *Service) MergeUnits(ctx context.Context, empireID, coord, unitKey string, count int64) (*Fleet, error) {
	if it, ok := catalog.Lookup(unitKey); !ok || it.Category != catalog.CategoryUnit || count <= 0 {
		return nil, fmt.Errorf("%w: %d x %q", ErrInvalidInput, count, unitKey)
	}

	var merged *Fleet
	now := time.Now()
	err := s.retryStale(func() error {
		f, err := s.repo.FindStationed(ctx, empireID, coord)
		switch {
		case err == nil:
			f.Add(map[string]int64{unitKey: count})
			f.UpdatedAt = now
			if err := s.repo.Update(ctx, f); err != nil {
				return fmt.Errorf("updating fleet: %w", err)
			}
		case errors.Is(err, repository.ErrNotFound):
			f = &Fleet{
				ID:        uuid.NewString(),
				EmpireID:  empireID,
				Coord:     coord,
				Status:    StatusStationed,
				UpdatedAt: now,
			}
			f.Add(map[string]int64{unitKey: count})
			if err := s.repo.Create(ctx, f); err != nil {
				return fmt.Errorf("creating fleet: %w", err)
			}
		default:
			return fmt.Errorf("finding stationed fleet: %w", err)
		}
		merged = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(merged, now)
	return merged, nil
}

// ResolveArrivals lands every moving fleet of the empire whose arrival time has passed.
// A fleet landing where another fleet is stationed is folded into it.
func (s *Service) ResolveArrivals(ctx context.Context, empireID string, now time.Time) (int, error) {
	arrived, err := s.repo.ListArrived(ctx, empireID, now)
	if err != nil {
		return 0, fmt.Errorf("listing arrived fleets: %w", err)
	}

	landed := 0
	for i := range arrived {
		f := &arrived[i]
		ok, err := s.land(ctx, f, now)
		if err != nil {
			s.logger.Error("fleet arrival failed", "empire_id", empireID, "fleet_id", f.ID, "error", err)
			continue
		}
		if ok {
			landed++
		}
	}
	return landed, nil
}

// land reports false when the fleet was already landed or redirected by someone else.
func (s *Service) land(ctx context.Context, f *Fleet, now time.Time) (bool, error) {
	landed := false
	first := true
	err := s.retryStale(func() error {
		if !first {
			current, err := s.repo.Get(ctx, f.ID)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("re-reading fleet: %w", err)
			}
			if current.Status != StatusMoving || current.ArrivesAt == nil || current.ArrivesAt.After(now) {
				return nil
			}
			f = current
		}
		first = false

		target, err := s.repo.FindStationed(ctx, f.EmpireID, f.Destination)
		switch {
		case err == nil:
			target.Add(f.Units)
			target.UpdatedAt = now
			if err := s.repo.MergeInto(ctx, target, f); err != nil {
				return fmt.Errorf("merging into stationed fleet: %w", err)
			}
			s.publish(target, now)
		case errors.Is(err, repository.ErrNotFound):
			f.Coord = f.Destination
			f.Destination = ""
			f.ArrivesAt = nil
			f.Status = StatusStationed
			f.UpdatedAt = now
			if err := s.repo.Update(ctx, f); err != nil {
				return fmt.Errorf("stationing fleet: %w", err)
			}
		default:
			return fmt.Errorf("finding stationed fleet: %w", err)
		}
		landed = true
		return nil
	})
	return landed, err
}

// Dispatch sends a stationed fleet toward destination.
func (s *Service) Dispatch(ctx context.Context, fleetID, destination string, arrivesAt time.Time) (*Fleet, error) {
	dest, err := empire.ParseCoordinate(destination)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if !arrivesAt.After(now) {
		return nil, fmt.Errorf("%w: arrival must be in the future", ErrInvalidInput)
	}

	var moved *Fleet
	err = s.retryStale(func() error {
		f, err := s.Get(ctx, fleetID)
		if err != nil {
			return err
		}
		if f.Status != StatusStationed {
			return ErrNotStationed
		}
		if string(dest) == f.Coord {
			return fmt.Errorf("%w: fleet is already at %s", ErrInvalidInput, dest)
		}

		f.Destination = string(dest)
		f.ArrivesAt = &arrivesAt
		f.Status = StatusMoving
		f.UpdatedAt = now
		if err := s.repo.Update(ctx, f); err != nil {
			return fmt.Errorf("dispatching fleet: %w", err)
		}
		moved = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *Service) retryStale(fn func() error) error {
	var err error
	for attempt := 1; attempt <= updateAttempts; attempt++ {
		if err = fn(); !errors.Is(err, repository.ErrStale) {
			return err
		}
		s.logger.Debug("fleet changed concurrently, retrying", "attempt", attempt)
	}
	return err
}

// Get fetches a fleet by ID.
func (s *Service) Get(ctx context.Context, id string) (*Fleet, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFleetNotFound
		}
		return nil, fmt.Errorf("getting fleet: %w", err)
	}
	return f, nil
}

// List returns the empire's fleets.
func (s *Service) List(ctx context.Context, empireID string) ([]Fleet, error) {
	return s.repo.ListByEmpire(ctx, empireID)
}

func (s *Service) publish(f *Fleet, now time.Time) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishFleetUpdated(events.FleetUpdated{
		FleetID:   f.ID,
		EmpireID:  f.EmpireID,
		UnitCount: f.UnitCount(),
		At:        now,
	})
}
