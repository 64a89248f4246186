// Package citizen grows colony populations from their Citizen capacity.
package citizen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/starbase/internal/domain/accrual"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/repository"
)

// Report summarizes one Accrue call.
type Report struct {
	Colonies int   `json:"colonies"`
	Updated  int   `json:"updated"`
	Citizens int64 `json:"citizens"`
}

// Service applies citizen accrual on aligned period boundaries.
type Service struct {
	repo   Repository
	bases  BaseLoader
	period time.Duration
	logger *slog.Logger
}

// NewService creates a new citizen service. period is raised to accrual.MinPeriod.
func NewService(repo Repository, bases BaseLoader, period time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, bases: bases, period: accrual.ClampPeriod(period), logger: logger}
}

// Accrue grows every colony of the empire. A colony that fails is logged and skipped.
func (s *Service) Accrue(ctx context.Context, empireID string, now time.Time) (Report, error) {
	var report Report

	colonies, err := s.repo.ListColonies(ctx, empireID)
	if err != nil {
		return report, fmt.Errorf("listing colonies: %w", err)
	}
	report.Colonies = len(colonies)

	for i := range colonies {
		col := &colonies[i]
		base, err := s.bases.LoadBase(ctx, empireID, col.Coord)
		if err != nil {
			s.logger.Error("citizen accrual skipped colony", "empire_id", empireID, "coord", col.Coord, "error", err)
			continue
		}

		out, err := s.AccrueColony(ctx, col, base.Capacity().Citizen.Value, now)
		if err != nil {
			s.logger.Error("citizen accrual failed", "empire_id", empireID, "coord", col.Coord, "error", err)
			continue
		}
		if out.Periods > 0 {
			report.Updated++
			report.Citizens += out.Whole
		}
	}
	return report, nil
}

// AccrueColony applies perHour growth to one colony. Zero capacity still advances the
// boundary. A lost compare-and-set is reported as zero periods.
func (s *Service) AccrueColony(ctx context.Context, col *empire.Colony, perHour float64, now time.Time) (accrual.Outcome, error) {
	out := accrual.Advance(col.LastCitizenUpdate, now, s.period, perHour, col.CitizenRemainderMilli)
	if out.Periods <= 0 {
		return out, nil
	}

	err := s.repo.ApplyGrowth(ctx, Growth{
		ColonyID:       col.ID,
		Added:          out.Whole,
		RemainderMilli: out.Remainder,
		Previous:       col.LastCitizenUpdate,
		Boundary:       out.Boundary,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStale) {
			return accrual.Outcome{Remainder: col.CitizenRemainderMilli}, nil
		}
		return out, fmt.Errorf("applying growth: %w", err)
	}

	col.Citizens += out.Whole
	col.CitizenRemainderMilli = out.Remainder
	col.LastCitizenUpdate = out.Boundary
	return out, nil
}
