package empire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/repository"
)

// Defense queue statuses read when building a base snapshot.
const (
	defensePending   = "pending"
	defenseCompleted = "completed"
)

// Service loads empires and base snapshots.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new empire service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines empire creation inputs.
type CreateRequest struct {
	ID      string
	OwnerID string
	Name    string
	Credits int64
	Now     time.Time
}

// Create founds a new empire with empty tech levels.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Empire, error) {
	if strings.TrimSpace(req.OwnerID) == "" || strings.TrimSpace(req.Name) == "" || req.Credits < 0 {
		return nil, ErrInvalidInput
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	e := &Empire{
		ID:                 id,
		OwnerID:            req.OwnerID,
		Name:               req.Name,
		Credits:            req.Credits,
		TechLevels:         map[string]int{},
		LastResourceUpdate: now,
		LastCreditPayout:   now,
		CreatedAt:          now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("creating empire: %w", err)
	}
	return e, nil
}

// Get fetches an empire by ID.
func (s *Service) Get(ctx context.Context, id string) (*Empire, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmpireNotFound
		}
		return nil, fmt.Errorf("getting empire: %w", err)
	}
	return e, nil
}

// List returns every empire.
func (s *Service) List(ctx context.Context) ([]Empire, error) {
	return s.repo.List(ctx)
}

// ListIDs returns every empire ID, for the tick.
func (s *Service) ListIDs(ctx context.Context) ([]string, error) {
	return s.repo.ListIDs(ctx)
}

// IncrementTech raises a technology level by one and returns the new level.
func (s *Service) IncrementTech(ctx context.Context, empireID, key string) (int, error) {
	if it, ok := catalog.Lookup(key); !ok || it.Category != catalog.CategoryTechnology {
		return 0, fmt.Errorf("%w: unknown technology %q", ErrInvalidInput, key)
	}
	level, err := s.repo.IncrementTech(ctx, empireID, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrEmpireNotFound
		}
		return 0, fmt.Errorf("incrementing tech %s: %w", key, err)
	}
	return level, nil
}

// ColonizeRequest defines colony creation inputs. The location is upserted.
type ColonizeRequest struct {
	EmpireID string
	Location Location
	Citizens int64
	Now      time.Time
}

// Colonize settles a coordinate for an empire.
func (s *Service) Colonize(ctx context.Context, req ColonizeRequest) (*Colony, error) {
	coord, err := ParseCoordinate(string(req.Location.Coord))
	if err != nil {
		return nil, err
	}
	if req.Citizens < 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.Get(ctx, req.EmpireID); err != nil {
		return nil, err
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	loc := req.Location
	loc.Coord = coord
	if err := s.repo.UpsertLocation(ctx, &loc); err != nil {
		return nil, fmt.Errorf("saving location: %w", err)
	}

	col := &Colony{
		ID:                uuid.NewString(),
		EmpireID:          req.EmpireID,
		Coord:             coord,
		Citizens:          req.Citizens,
		LastCitizenUpdate: now,
	}
	if err := s.repo.CreateColony(ctx, col); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrColonyExists
		}
		return nil, fmt.Errorf("creating colony: %w", err)
	}
	return col, nil
}

// ListColonies returns the empire's colonies.
func (s *Service) ListColonies(ctx context.Context, empireID string) ([]Colony, error) {
	return s.repo.ListColonies(ctx, empireID)
}

// LoadBase assembles the snapshot of one colony, checking that empireID owns coord.
func (s *Service) LoadBase(ctx context.Context, empireID string, coord Coordinate) (*Base, error) {
	e, err := s.Get(ctx, empireID)
	if err != nil {
		return nil, err
	}

	col, err := s.repo.GetColony(ctx, coord)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotOwner
		}
		return nil, fmt.Errorf("getting colony: %w", err)
	}
	if col.EmpireID != e.ID {
		return nil, ErrNotOwner
	}

	return s.assemble(ctx, e, col)
}

// ListBases loads a snapshot for each of the empire's colonies.
func (s *Service) ListBases(ctx context.Context, empireID string) ([]*Base, error) {
	e, err := s.Get(ctx, empireID)
	if err != nil {
		return nil, err
	}
	colonies, err := s.repo.ListColonies(ctx, empireID)
	if err != nil {
		return nil, fmt.Errorf("listing colonies: %w", err)
	}

	bases := make([]*Base, 0, len(colonies))
	for i := range colonies {
		b, err := s.assemble(ctx, e, &colonies[i])
		if err != nil {
			return nil, err
		}
		bases = append(bases, b)
	}
	return bases, nil
}

// Economy sums credits per hour and energy across every base of the empire.
// Energy never goes below zero.
func (s *Service) Economy(ctx context.Context, empireID string) (Economy, error) {
	bases, err := s.ListBases(ctx, empireID)
	if err != nil {
		return Economy{}, err
	}

	var econ Economy
	for _, b := range bases {
		econ.CreditsPerHour += b.Capacity().Economy.Value
		econ.Energy += b.Energy().RawBalance
	}
	if econ.Energy < 0 {
		econ.Energy = 0
	}
	return econ, nil
}

// TotalCapacity sums one capacity kind across every base of the empire.
func (s *Service) TotalCapacity(ctx context.Context, empireID string, kind catalog.CapacityKind) (float64, error) {
	bases, err := s.ListBases(ctx, empireID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, b := range bases {
		total += b.Capacity().For(kind).Value
	}
	return total, nil
}

func (s *Service) assemble(ctx context.Context, e *Empire, col *Colony) (*Base, error) {
	base := &Base{Empire: e, Colony: col, Location: Location{Coord: col.Coord}}

	loc, err := s.repo.GetLocation(ctx, col.Coord)
	switch {
	case err == nil:
		base.Location = *loc
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Warn("colony without location row, using empty environment", "coord", col.Coord)
	default:
		return nil, fmt.Errorf("getting location: %w", err)
	}

	if base.Buildings, err = s.repo.ListBuildings(ctx, e.ID, col.Coord); err != nil {
		return nil, fmt.Errorf("listing buildings: %w", err)
	}
	if base.CompletedDefenses, err = s.repo.ListDefenseKeys(ctx, e.ID, col.Coord, defenseCompleted); err != nil {
		return nil, fmt.Errorf("listing completed defenses: %w", err)
	}
	if base.PendingDefenses, err = s.repo.ListDefenseKeys(ctx, e.ID, col.Coord, defensePending); err != nil {
		return nil, fmt.Errorf("listing pending defenses: %w", err)
	}
	return base, nil
}
