package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/repository"
)

// EmpireRepository implements empire.Repository for SQLite
type EmpireRepository struct {
	db *DB
}

// NewEmpireRepository creates a new EmpireRepository
func NewEmpireRepository(db *DB) *EmpireRepository {
	return &EmpireRepository{db: db}
}

type empireRow struct {
	ID                    string `db:"id"`
	OwnerID               string `db:"owner_id"`
	Name                  string `db:"name"`
	Credits               int64  `db:"credits"`
	Energy                int64  `db:"energy"`
	CreditsRemainderMilli int64  `db:"credits_remainder_milli"`
	TechLevelsJSON        string `db:"tech_levels_json"`
	LastResourceUpdate    int64  `db:"last_resource_update"`
	LastCreditPayout      int64  `db:"last_credit_payout"`
	CreatedAt             int64  `db:"created_at"`
}

const empireColumns = `id, owner_id, name, credits, energy, credits_remainder_milli,
	tech_levels_json, last_resource_update, last_credit_payout, created_at`

func (row empireRow) toDomain() (*empire.Empire, error) {
	levels := map[string]int{}
	if row.TechLevelsJSON != "" {
		if err := json.Unmarshal([]byte(row.TechLevelsJSON), &levels); err != nil {
			return nil, fmt.Errorf("failed to decode tech levels of %s: %w", row.ID, err)
		}
	}
	return &empire.Empire{
		ID:                    row.ID,
		OwnerID:               row.OwnerID,
		Name:                  row.Name,
		Credits:               row.Credits,
		Energy:                row.Energy,
		CreditsRemainderMilli: row.CreditsRemainderMilli,
		TechLevels:            levels,
		LastResourceUpdate:    fromMillis(row.LastResourceUpdate),
		LastCreditPayout:      fromMillis(row.LastCreditPayout),
		CreatedAt:             fromMillis(row.CreatedAt),
	}, nil
}

// Create inserts a new empire
func (r *EmpireRepository) Create(ctx context.Context, e *empire.Empire) error {
	levels := e.TechLevels
	if levels == nil {
		levels = map[string]int{}
	}
	levelsJSON, err := marshalJSON(levels)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO empires (` + empireColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID,
		e.OwnerID,
		e.Name,
		e.Credits,
		e.Energy,
		e.CreditsRemainderMilli,
		levelsJSON,
		toMillis(e.LastResourceUpdate),
		toMillis(e.LastCreditPayout),
		toMillis(e.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create empire: %w", err)
	}
	return nil
}

// Get retrieves an empire by ID
func (r *EmpireRepository) Get(ctx context.Context, id string) (*empire.Empire, error) {
	var row empireRow
	err := r.db.GetContext(ctx, &row, `SELECT `+empireColumns+` FROM empires WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get empire: %w", err)
	}
	return row.toDomain()
}

// List returns every empire ordered by creation
func (r *EmpireRepository) List(ctx context.Context) ([]empire.Empire, error) {
	var rows []empireRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+empireColumns+` FROM empires ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("failed to list empires: %w", err)
	}

	empires := make([]empire.Empire, 0, len(rows))
	for _, row := range rows {
		e, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		empires = append(empires, *e)
	}
	return empires, nil
}

// ListIDs returns every empire ID
func (r *EmpireRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM empires ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("failed to list empire ids: %w", err)
	}
	return ids, nil
}

// IncrementTech raises one tech level in a single statement and returns the new level
func (r *EmpireRepository) IncrementTech(ctx context.Context, empireID, key string) (int, error) {
	path := `$."` + key + `"`
	query := `
		UPDATE empires
		SET tech_levels_json = json_set(tech_levels_json, ?, COALESCE(json_extract(tech_levels_json, ?), 0) + 1)
		WHERE id = ?
		RETURNING json_extract(tech_levels_json, ?)
	`
	var level int
	err := r.db.QueryRowxContext(ctx, query, path, path, empireID, path).Scan(&level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment tech: %w", err)
	}
	return level, nil
}

// UpsertLocation inserts or replaces a location's environment
func (r *EmpireRepository) UpsertLocation(ctx context.Context, loc *empire.Location) error {
	query := `
		INSERT INTO locations (coord, solar_energy, fertility, gas_yield, metal_yield)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(coord) DO UPDATE SET
			solar_energy = excluded.solar_energy,
			fertility = excluded.fertility,
			gas_yield = excluded.gas_yield,
			metal_yield = excluded.metal_yield
	`
	_, err := r.db.ExecContext(ctx, query,
		string(loc.Coord), loc.SolarEnergy, loc.Fertility, loc.GasYield, loc.MetalYield)
	if err != nil {
		return fmt.Errorf("failed to upsert location: %w", err)
	}
	return nil
}

// GetLocation retrieves a location by coordinate
func (r *EmpireRepository) GetLocation(ctx context.Context, coord empire.Coordinate) (*empire.Location, error) {
	var row struct {
		Coord       string `db:"coord"`
		SolarEnergy int64  `db:"solar_energy"`
		Fertility   int64  `db:"fertility"`
		GasYield    int64  `db:"gas_yield"`
		MetalYield  int64  `db:"metal_yield"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT coord, solar_energy, fertility, gas_yield, metal_yield
		FROM locations WHERE coord = ?
	`, string(coord))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &empire.Location{
		Coord:       empire.Coordinate(row.Coord),
		SolarEnergy: row.SolarEnergy,
		Fertility:   row.Fertility,
		GasYield:    row.GasYield,
		MetalYield:  row.MetalYield,
	}, nil
}

type colonyRow struct {
	ID                    string `db:"id"`
	EmpireID              string `db:"empire_id"`
	Coord                 string `db:"coord"`
	Citizens              int64  `db:"citizens"`
	CitizenRemainderMilli int64  `db:"citizen_remainder_milli"`
	LastCitizenUpdate     int64  `db:"last_citizen_update"`
}

const colonyColumns = `id, empire_id, coord, citizens, citizen_remainder_milli, last_citizen_update`

func (row colonyRow) toDomain() empire.Colony {
	return empire.Colony{
		ID:                    row.ID,
		EmpireID:              row.EmpireID,
		Coord:                 empire.Coordinate(row.Coord),
		Citizens:              row.Citizens,
		CitizenRemainderMilli: row.CitizenRemainderMilli,
		LastCitizenUpdate:     fromMillis(row.LastCitizenUpdate),
	}
}

// CreateColony inserts a colony. The coordinate must not be colonized already.
func (r *EmpireRepository) CreateColony(ctx context.Context, c *empire.Colony) error {
	query := `INSERT INTO colonies (` + colonyColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.EmpireID,
		string(c.Coord),
		c.Citizens,
		c.CitizenRemainderMilli,
		toMillis(c.LastCitizenUpdate),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create colony: %w", err)
	}
	return nil
}

// GetColony retrieves the colony at a coordinate
func (r *EmpireRepository) GetColony(ctx context.Context, coord empire.Coordinate) (*empire.Colony, error) {
	var row colonyRow
	err := r.db.GetContext(ctx, &row, `SELECT `+colonyColumns+` FROM colonies WHERE coord = ?`, string(coord))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get colony: %w", err)
	}
	col := row.toDomain()
	return &col, nil
}

// ListColonies returns an empire's colonies ordered by coordinate
func (r *EmpireRepository) ListColonies(ctx context.Context, empireID string) ([]empire.Colony, error) {
	return listColonies(ctx, r.db, empireID)
}

func listColonies(ctx context.Context, db *DB, empireID string) ([]empire.Colony, error) {
	var rows []colonyRow
	err := db.SelectContext(ctx, &rows,
		`SELECT `+colonyColumns+` FROM colonies WHERE empire_id = ? ORDER BY coord`, empireID)
	if err != nil {
		return nil, fmt.Errorf("failed to list colonies: %w", err)
	}
	colonies := make([]empire.Colony, 0, len(rows))
	for _, row := range rows {
		colonies = append(colonies, row.toDomain())
	}
	return colonies, nil
}

// ListBuildings returns the buildings of one base
func (r *EmpireRepository) ListBuildings(ctx context.Context, empireID string, coord empire.Coordinate) ([]empire.Building, error) {
	var rows []buildingRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+buildingColumns+` FROM buildings WHERE empire_id = ? AND coord = ? ORDER BY building_key`,
		empireID, string(coord))
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	buildings := make([]empire.Building, 0, len(rows))
	for _, row := range rows {
		buildings = append(buildings, row.toDomain())
	}
	return buildings, nil
}

// ListDefenseKeys returns the item keys of defense queue rows at a base in one status
func (r *EmpireRepository) ListDefenseKeys(ctx context.Context, empireID string, coord empire.Coordinate, status string) ([]string, error) {
	var keys []string
	err := r.db.SelectContext(ctx, &keys, `
		SELECT item_key FROM defense_queue
		WHERE empire_id = ? AND coord = ? AND status = ?
		ORDER BY started_at, id
	`, empireID, string(coord), status)
	if err != nil {
		return nil, fmt.Errorf("failed to list defenses: %w", err)
	}
	return keys, nil
}
