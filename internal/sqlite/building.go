package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/repository"
)

// BuildingRepository implements building.Repository for SQLite
type BuildingRepository struct {
	db *DB
}

// NewBuildingRepository creates a new BuildingRepository
func NewBuildingRepository(db *DB) *BuildingRepository {
	return &BuildingRepository{db: db}
}

type buildingRow struct {
	ID                    string        `db:"id"`
	EmpireID              string        `db:"empire_id"`
	Coord                 string        `db:"coord"`
	Key                   string        `db:"building_key"`
	Level                 int           `db:"level"`
	IsActive              bool          `db:"is_active"`
	PendingUpgrade        bool          `db:"pending_upgrade"`
	ConstructionCompleted sql.NullInt64 `db:"construction_completed"`
}

const buildingColumns = `id, empire_id, coord, building_key, level, is_active, pending_upgrade, construction_completed`

func (row buildingRow) toDomain() empire.Building {
	return empire.Building{
		ID:                    row.ID,
		EmpireID:              row.EmpireID,
		Coord:                 empire.Coordinate(row.Coord),
		Key:                   row.Key,
		Level:                 row.Level,
		IsActive:              row.IsActive,
		PendingUpgrade:        row.PendingUpgrade,
		ConstructionCompleted: fromNullMillis(row.ConstructionCompleted),
	}
}

// Upsert inserts a building or overwrites the one with the same (empire, coord, key)
func (r *BuildingRepository) Upsert(ctx context.Context, b *empire.Building) error {
	query := `
		INSERT INTO buildings (` + buildingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(empire_id, coord, building_key) DO UPDATE SET
			level = excluded.level,
			is_active = excluded.is_active,
			pending_upgrade = excluded.pending_upgrade,
			construction_completed = excluded.construction_completed
	`
	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.EmpireID,
		string(b.Coord),
		b.Key,
		b.Level,
		boolInt(b.IsActive),
		boolInt(b.PendingUpgrade),
		toNullMillis(b.ConstructionCompleted),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to upsert building: %w", err)
	}
	return nil
}

// Get retrieves one building of a base
func (r *BuildingRepository) Get(ctx context.Context, empireID string, coord empire.Coordinate, key string) (*empire.Building, error) {
	var row buildingRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+buildingColumns+` FROM buildings WHERE empire_id = ? AND coord = ? AND building_key = ?`,
		empireID, string(coord), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get building: %w", err)
	}
	b := row.toDomain()
	return &b, nil
}

// ListDue returns buildings whose construction has completed by now
func (r *BuildingRepository) ListDue(ctx context.Context, empireID string, now time.Time) ([]empire.Building, error) {
	var rows []buildingRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+buildingColumns+` FROM buildings
		WHERE empire_id = ? AND construction_completed IS NOT NULL AND construction_completed <= ?
		ORDER BY construction_completed, id
	`, empireID, toMillis(now))
	if err != nil {
		return nil, fmt.Errorf("failed to list due buildings: %w", err)
	}
	buildings := make([]empire.Building, 0, len(rows))
	for _, row := range rows {
		buildings = append(buildings, row.toDomain())
	}
	return buildings, nil
}

// Activate finishes a due construction in one statement. It returns ErrStale when the
// building is no longer due, e.g. activated by a concurrent pass.
func (r *BuildingRepository) Activate(ctx context.Context, id string, now time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE buildings
		SET is_active = 1,
			level = level + pending_upgrade,
			pending_upgrade = 0,
			construction_completed = NULL
		WHERE id = ? AND construction_completed IS NOT NULL AND construction_completed <= ?
	`, id, toMillis(now))
	if err != nil {
		return fmt.Errorf("failed to activate building: %w", err)
	}
	return expectOneRow(result, repository.ErrStale)
}

// expectOneRow maps zero affected rows to errNone.
func expectOneRow(result sql.Result, errNone error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errNone
	}
	return nil
}
