package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/queue"
	"github.com/rpggio/starbase/internal/repository"
)

// QueueRepository implements queue.Repository for SQLite over the tech, unit and
// defense queue tables, which share one shape.
type QueueRepository struct {
	db *DB
}

// NewQueueRepository creates a new QueueRepository
func NewQueueRepository(db *DB) *QueueRepository {
	return &QueueRepository{db: db}
}

var queueTables = map[catalog.Category]string{
	catalog.CategoryTechnology: "tech_queue",
	catalog.CategoryUnit:       "unit_queue",
	catalog.CategoryDefense:    "defense_queue",
}

func tableFor(category catalog.Category) (string, error) {
	table, ok := queueTables[category]
	if !ok {
		return "", fmt.Errorf("no queue table for category %q", category)
	}
	return table, nil
}

type queueRow struct {
	ID          string        `db:"id"`
	EmpireID    string        `db:"empire_id"`
	Coord       string        `db:"coord"`
	ItemKey     string        `db:"item_key"`
	IdentityKey string        `db:"identity_key"`
	CreditsCost int64         `db:"credits_cost"`
	StartedAt   int64         `db:"started_at"`
	CompletesAt int64         `db:"completes_at"`
	Status      string        `db:"status"`
	Paid        bool          `db:"paid"`
	CompletedAt sql.NullInt64 `db:"completed_at"`
	CancelledAt sql.NullInt64 `db:"cancelled_at"`
}

const queueColumns = `id, empire_id, coord, item_key, identity_key, credits_cost,
	started_at, completes_at, status, paid, completed_at, cancelled_at`

func (row queueRow) toDomain(category catalog.Category) queue.Item {
	return queue.Item{
		ID:          row.ID,
		Category:    category,
		EmpireID:    row.EmpireID,
		Coord:       row.Coord,
		ItemKey:     row.ItemKey,
		IdentityKey: row.IdentityKey,
		CreditsCost: row.CreditsCost,
		StartedAt:   fromMillis(row.StartedAt),
		CompletesAt: fromMillis(row.CompletesAt),
		Status:      queue.Status(row.Status),
		Paid:        row.Paid,
		CompletedAt: fromNullMillis(row.CompletedAt),
		CancelledAt: fromNullMillis(row.CancelledAt),
	}
}

// Insert adds a pending item. A second pending item with the same identity key
// violates the partial unique index and returns ErrDuplicate.
func (r *QueueRepository) Insert(ctx context.Context, item *queue.Item) error {
	table, err := tableFor(item.Category)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (` + queueColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		item.ID,
		item.EmpireID,
		item.Coord,
		item.ItemKey,
		item.IdentityKey,
		item.CreditsCost,
		toMillis(item.StartedAt),
		toMillis(item.CompletesAt),
		string(item.Status),
		boolInt(item.Paid),
		toNullMillis(item.CompletedAt),
		toNullMillis(item.CancelledAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to insert queue item: %w", err)
	}
	return nil
}

// Get retrieves an item from one queue
func (r *QueueRepository) Get(ctx context.Context, category catalog.Category, id string) (*queue.Item, error) {
	return r.getOne(ctx, category, `WHERE id = ?`, id)
}

// Find looks an item up in every queue
func (r *QueueRepository) Find(ctx context.Context, id string) (*queue.Item, error) {
	for _, category := range queue.Categories {
		item, err := r.Get(ctx, category, id)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return nil, repository.ErrNotFound
}

// FindPending returns the pending item holding an identity key
func (r *QueueRepository) FindPending(ctx context.Context, category catalog.Category, identityKey string) (*queue.Item, error) {
	return r.getOne(ctx, category, `WHERE identity_key = ? AND status = 'pending'`, identityKey)
}

func (r *QueueRepository) getOne(ctx context.Context, category catalog.Category, where string, args ...any) (*queue.Item, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	var row queueRow
	err = r.db.GetContext(ctx, &row, `SELECT `+queueColumns+` FROM `+table+` `+where, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue item: %w", err)
	}
	item := row.toDomain(category)
	return &item, nil
}

// ListDue returns paid pending items of an empire whose completion time has passed
func (r *QueueRepository) ListDue(ctx context.Context, category catalog.Category, empireID string, now time.Time) ([]queue.Item, error) {
	return r.selectItems(ctx, category, `
		WHERE empire_id = ? AND status = 'pending' AND paid = 1 AND completes_at <= ?
		ORDER BY completes_at, id
	`, empireID, toMillis(now))
}

// ListUnpaid returns pending items never marked paid that started before olderThan
func (r *QueueRepository) ListUnpaid(ctx context.Context, category catalog.Category, olderThan time.Time) ([]queue.Item, error) {
	return r.selectItems(ctx, category, `
		WHERE status = 'pending' AND paid = 0 AND started_at < ?
		ORDER BY started_at, id
	`, toMillis(olderThan))
}

// List returns an empire's items, newest first. An empty category spans every queue.
func (r *QueueRepository) List(ctx context.Context, empireID string, opts queue.ListOptions) ([]queue.Item, error) {
	categories := queue.Categories
	if opts.Category != "" {
		categories = []catalog.Category{opts.Category}
	}

	where := `WHERE empire_id = ?`
	args := []any{empireID}
	if opts.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(opts.Status))
	}
	where += ` ORDER BY started_at DESC, id`
	if opts.Limit > 0 {
		where += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	var items []queue.Item
	for _, category := range categories {
		batch, err := r.selectItems(ctx, category, where, args...)
		if err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartedAt.After(items[j].StartedAt)
	})
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items, nil
}

func (r *QueueRepository) selectItems(ctx context.Context, category catalog.Category, where string, args ...any) ([]queue.Item, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	var rows []queueRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+queueColumns+` FROM `+table+` `+where, args...); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	items := make([]queue.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain(category))
	}
	return items, nil
}

// MarkPaid records that the item's cost was charged
func (r *QueueRepository) MarkPaid(ctx context.Context, category catalog.Category, id string) error {
	return r.update(ctx, category, `SET paid = 1 WHERE id = ?`, repository.ErrNotFound, id)
}

// Complete flips a pending item to completed. ErrStale means it was not pending.
func (r *QueueRepository) Complete(ctx context.Context, category catalog.Category, id string, at time.Time) error {
	return r.update(ctx, category, `SET status = 'completed', completed_at = ? WHERE id = ? AND status = 'pending'`,
		repository.ErrStale, toMillis(at), id)
}

// Cancel flips a pending item to cancelled. ErrStale means it was not pending.
func (r *QueueRepository) Cancel(ctx context.Context, category catalog.Category, id string, at time.Time) error {
	return r.update(ctx, category, `SET status = 'cancelled', cancelled_at = ? WHERE id = ? AND status = 'pending'`,
		repository.ErrStale, toMillis(at), id)
}

func (r *QueueRepository) update(ctx context.Context, category catalog.Category, set string, errNone error, args ...any) error {
	table, err := tableFor(category)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `UPDATE `+table+` `+set, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return expectOneRow(result, errNone)
}
