package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rpggio/starbase/internal/domain/research"
	"github.com/rpggio/starbase/internal/repository"
)

// ResearchRepository implements research.Repository for SQLite
type ResearchRepository struct {
	db *DB
}

// NewResearchRepository creates a new ResearchRepository
func NewResearchRepository(db *DB) *ResearchRepository {
	return &ResearchRepository{db: db}
}

// Create inserts a project. Only one active project per tech is allowed.
func (r *ResearchRepository) Create(ctx context.Context, p *research.Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO research_projects (id, empire_id, tech_key, progress_milli, required_milli, last_progress, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.EmpireID, p.TechKey, p.ProgressMilli, p.RequiredMilli, toMillis(p.LastProgress), string(p.Status))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create research project: %w", err)
	}
	return nil
}

// ListActive returns an empire's active projects
func (r *ResearchRepository) ListActive(ctx context.Context, empireID string) ([]research.Project, error) {
	var rows []struct {
		ID            string `db:"id"`
		EmpireID      string `db:"empire_id"`
		TechKey       string `db:"tech_key"`
		ProgressMilli int64  `db:"progress_milli"`
		RequiredMilli int64  `db:"required_milli"`
		LastProgress  int64  `db:"last_progress"`
		Status        string `db:"status"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, empire_id, tech_key, progress_milli, required_milli, last_progress, status
		FROM research_projects
		WHERE empire_id = ? AND status = 'active'
		ORDER BY tech_key
	`, empireID)
	if err != nil {
		return nil, fmt.Errorf("failed to list research projects: %w", err)
	}

	projects := make([]research.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, research.Project{
			ID:            row.ID,
			EmpireID:      row.EmpireID,
			TechKey:       row.TechKey,
			ProgressMilli: row.ProgressMilli,
			RequiredMilli: row.RequiredMilli,
			LastProgress:  fromMillis(row.LastProgress),
			Status:        research.Status(row.Status),
		})
	}
	return projects, nil
}

// UpdateProgress stores progress if last_progress still equals previous
func (r *ResearchRepository) UpdateProgress(ctx context.Context, id string, progressMilli int64, previous, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE research_projects
		SET progress_milli = ?, last_progress = ?
		WHERE id = ? AND status = 'active' AND last_progress = ?
	`, progressMilli, toMillis(at), id, toMillis(previous))
	if err != nil {
		return fmt.Errorf("failed to update research progress: %w", err)
	}
	return expectOneRow(result, repository.ErrStale)
}

// Complete flips an active project to completed
func (r *ResearchRepository) Complete(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE research_projects
		SET status = 'completed', last_progress = ?
		WHERE id = ? AND status = 'active'
	`, toMillis(at), id)
	if err != nil {
		return fmt.Errorf("failed to complete research project: %w", err)
	}
	return expectOneRow(result, repository.ErrStale)
}
