package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/starbase/internal/domain/fleet"
	"github.com/rpggio/starbase/internal/repository"
)

// FleetRepository implements fleet.Repository for SQLite
type FleetRepository struct {
	db *DB
}

// NewFleetRepository creates a new FleetRepository
func NewFleetRepository(db *DB) *FleetRepository {
	return &FleetRepository{db: db}
}

type fleetRow struct {
	ID          string         `db:"id"`
	EmpireID    string         `db:"empire_id"`
	Coord       string         `db:"coord"`
	Destination sql.NullString `db:"destination"`
	ArrivesAt   sql.NullInt64  `db:"arrives_at"`
	Status      string         `db:"status"`
	UnitsJSON   string         `db:"units_json"`
	SizeCredits int64          `db:"size_credits"`
	UpdatedAt   int64          `db:"updated_at"`
	Version     int64          `db:"version"`
}

const fleetColumns = `id, empire_id, coord, destination, arrives_at, status, units_json, size_credits, updated_at, version`

func (row fleetRow) toDomain() (*fleet.Fleet, error) {
	units := map[string]int64{}
	if row.UnitsJSON != "" {
		if err := json.Unmarshal([]byte(row.UnitsJSON), &units); err != nil {
			return nil, fmt.Errorf("failed to decode units of fleet %s: %w", row.ID, err)
		}
	}
	return &fleet.Fleet{
		ID:          row.ID,
		EmpireID:    row.EmpireID,
		Coord:       row.Coord,
		Destination: row.Destination.String,
		ArrivesAt:   fromNullMillis(row.ArrivesAt),
		Status:      fleet.Status(row.Status),
		Units:       units,
		SizeCredits: row.SizeCredits,
		UpdatedAt:   fromMillis(row.UpdatedAt),
		Version:     row.Version,
	}, nil
}

func fleetArgs(f *fleet.Fleet) ([]any, error) {
	units := f.Units
	if units == nil {
		units = map[string]int64{}
	}
	unitsJSON, err := marshalJSON(units)
	if err != nil {
		return nil, err
	}
	var destination sql.NullString
	if f.Destination != "" {
		destination = sql.NullString{String: f.Destination, Valid: true}
	}
	return []any{
		f.EmpireID,
		f.Coord,
		destination,
		toNullMillis(f.ArrivesAt),
		string(f.Status),
		unitsJSON,
		f.SizeCredits,
		toMillis(f.UpdatedAt),
	}, nil
}

// Create inserts a fleet
func (r *FleetRepository) Create(ctx context.Context, f *fleet.Fleet) error {
	args, err := fleetArgs(f)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO fleets (`+fleetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append(append([]any{f.ID}, args...), f.Version)...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create fleet: %w", err)
	}
	return nil
}

// Get retrieves a fleet by ID
func (r *FleetRepository) Get(ctx context.Context, id string) (*fleet.Fleet, error) {
	var row fleetRow
	err := r.db.GetContext(ctx, &row, `SELECT `+fleetColumns+` FROM fleets WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fleet: %w", err)
	}
	return row.toDomain()
}

// FindStationed returns the oldest fleet stationed at a coordinate
func (r *FleetRepository) FindStationed(ctx context.Context, empireID, coord string) (*fleet.Fleet, error) {
	var row fleetRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+fleetColumns+` FROM fleets
		WHERE empire_id = ? AND coord = ? AND status = 'stationed'
		ORDER BY rowid
		LIMIT 1
	`, empireID, coord)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stationed fleet: %w", err)
	}
	return row.toDomain()
}

// ListByEmpire returns every fleet of an empire
func (r *FleetRepository) ListByEmpire(ctx context.Context, empireID string) ([]fleet.Fleet, error) {
	return r.list(ctx, `WHERE empire_id = ? ORDER BY coord, rowid`, empireID)
}

// ListArrived returns moving fleets whose arrival time has passed
func (r *FleetRepository) ListArrived(ctx context.Context, empireID string, now time.Time) ([]fleet.Fleet, error) {
	return r.list(ctx, `
		WHERE empire_id = ? AND status = 'moving' AND arrives_at IS NOT NULL AND arrives_at <= ?
		ORDER BY arrives_at, rowid
	`, empireID, toMillis(now))
}

func (r *FleetRepository) list(ctx context.Context, where string, args ...any) ([]fleet.Fleet, error) {
	var rows []fleetRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+fleetColumns+` FROM fleets `+where, args...); err != nil {
		return nil, fmt.Errorf("failed to list fleets: %w", err)
	}
	fleets := make([]fleet.Fleet, 0, len(rows))
	for _, row := range rows {
		f, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		fleets = append(fleets, *f)
	}
	return fleets, nil
}

const updateFleet = `
	UPDATE fleets
	SET empire_id = ?, coord = ?, destination = ?, arrives_at = ?, status = ?,
		units_json = ?, size_credits = ?, updated_at = ?, version = version + 1
	WHERE id = ? AND version = ?
`

// Update overwrites a fleet if its version is unchanged since it was read.
// ErrStale means another writer got there first.
func (r *FleetRepository) Update(ctx context.Context, f *fleet.Fleet) error {
	args, err := fleetArgs(f)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, updateFleet, append(args, f.ID, f.Version)...)
	if err != nil {
		return fmt.Errorf("failed to update fleet: %w", err)
	}
	if err := expectOneRow(result, repository.ErrStale); err != nil {
		return r.staleOrMissing(ctx, f.ID, err)
	}
	f.Version++
	return nil
}

// MergeInto writes target and deletes absorbed in one transaction. Both rows must be
// unchanged since they were read.
func (r *FleetRepository) MergeInto(ctx context.Context, target, absorbed *fleet.Fleet) error {
	args, err := fleetArgs(target)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, updateFleet, append(args, target.ID, target.Version)...)
	if err != nil {
		return fmt.Errorf("failed to update fleet: %w", err)
	}
	if err := expectOneRow(result, repository.ErrStale); err != nil {
		return err
	}

	result, err = tx.ExecContext(ctx, `DELETE FROM fleets WHERE id = ? AND version = ?`, absorbed.ID, absorbed.Version)
	if err != nil {
		return fmt.Errorf("failed to delete fleet: %w", err)
	}
	if err := expectOneRow(result, repository.ErrStale); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	target.Version++
	return nil
}

func (r *FleetRepository) staleOrMissing(ctx context.Context, id string, stale error) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM fleets WHERE id = ?)`, id); err != nil {
		return fmt.Errorf("failed to check fleet: %w", err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return stale
}
