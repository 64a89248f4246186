package sqlite

import (
	"context"
	"fmt"

	"github.com/rpggio/starbase/internal/domain/citizen"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/repository"
)

// CitizenRepository implements citizen.Repository for SQLite
type CitizenRepository struct {
	db *DB
}

// NewCitizenRepository creates a new CitizenRepository
func NewCitizenRepository(db *DB) *CitizenRepository {
	return &CitizenRepository{db: db}
}

// ListColonies returns an empire's colonies
func (r *CitizenRepository) ListColonies(ctx context.Context, empireID string) ([]empire.Colony, error) {
	return listColonies(ctx, r.db, empireID)
}

// ApplyGrowth adds citizens and advances the boundary if last_citizen_update still
// equals the previous value.
func (r *CitizenRepository) ApplyGrowth(ctx context.Context, g citizen.Growth) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE colonies
		SET citizens = citizens + ?, citizen_remainder_milli = ?, last_citizen_update = ?
		WHERE id = ? AND last_citizen_update = ?
	`, g.Added, g.RemainderMilli, toMillis(g.Boundary), g.ColonyID, toMillis(g.Previous))
	if err != nil {
		return fmt.Errorf("failed to apply citizen growth: %w", err)
	}
	return expectOneRow(result, repository.ErrStale)
}
