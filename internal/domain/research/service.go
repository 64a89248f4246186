package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/repository"
)

const hourMs = float64(time.Hour / time.Millisecond)

// Service advances legacy research projects.
type Service struct {
	repo    Repository
	empires EmpireGetter
	rates   RateSource
	techs   TechAdvancer
	logger  *slog.Logger
}

// NewService creates a new research service.
func NewService(repo Repository, empires EmpireGetter, rates RateSource, techs TechAdvancer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, empires: empires, rates: rates, techs: techs, logger: logger}
}

// Start opens a project for the next level of a technology.
func (s *Service) Start(ctx context.Context, empireID, techKey string, now time.Time) (*Project, error) {
	it, ok := catalog.Lookup(techKey)
	if !ok || it.Category != catalog.CategoryTechnology {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTech, techKey)
	}
	e, err := s.empires.Get(ctx, empireID)
	if err != nil {
		return nil, err
	}

	p := &Project{
		ID:            uuid.NewString(),
		EmpireID:      empireID,
		TechKey:       techKey,
		RequiredMilli: catalog.CostAt(it, e.TechLevel(techKey)) * 1000,
		LastProgress:  now,
		Status:        StatusActive,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyResearching
		}
		return nil, fmt.Errorf("creating research project: %w", err)
	}
	return p, nil
}

// Advance adds research progress to every active project of the empire for the time
// since each was last advanced, completing those that reach their requirement.
func (s *Service) Advance(ctx context.Context, empireID string, now time.Time) (Report, error) {
	var report Report

	projects, err := s.repo.ListActive(ctx, empireID)
	if err != nil {
		return report, fmt.Errorf("listing research projects: %w", err)
	}
	if len(projects) == 0 {
		return report, nil
	}

	rate, err := s.rates.TotalCapacity(ctx, empireID, catalog.KindResearch)
	if err != nil {
		return report, fmt.Errorf("reading research capacity: %w", err)
	}

	for i := range projects {
		p := &projects[i]
		elapsed := now.Sub(p.LastProgress).Milliseconds()
		if elapsed <= 0 {
			continue
		}
		gain := int64(math.Round(rate * float64(elapsed) / hourMs * 1000))
		progress := p.ProgressMilli + gain

		if err := s.repo.UpdateProgress(ctx, p.ID, progress, p.LastProgress, now); err != nil {
			if !errors.Is(err, repository.ErrStale) {
				s.logger.Error("research progress failed", "empire_id", empireID, "project_id", p.ID, "error", err)
			}
			continue
		}
		report.Advanced++

		if progress < p.RequiredMilli {
			continue
		}
		if err := s.repo.Complete(ctx, p.ID, now); err != nil {
			if !errors.Is(err, repository.ErrStale) {
				s.logger.Error("research completion failed", "empire_id", empireID, "project_id", p.ID, "error", err)
			}
			continue
		}
		level, err := s.techs.IncrementTech(ctx, empireID, p.TechKey)
		if err != nil {
			s.logger.Error("research tech increment failed", "empire_id", empireID, "project_id", p.ID, "tech", p.TechKey, "error", err)
			continue
		}
		report.Completed = append(report.Completed, p.ID)
		s.logger.Info("research project completed", "empire_id", empireID, "tech", p.TechKey, "level", level)
	}
	return report, nil
}

// List returns the empire's active projects.
func (s *Service) List(ctx context.Context, empireID string) ([]Project, error) {
	return s.repo.ListActive(ctx, empireID)
}
