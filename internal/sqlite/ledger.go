package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/starbase/internal/domain/ledger"
	"github.com/rpggio/starbase/internal/repository"
)

// LedgerRepository implements ledger.Repository for SQLite. Balance changes are
// single-row conditional updates; the transaction log is appended separately.
type LedgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetAccount reads the resource columns of an empire
func (r *LedgerRepository) GetAccount(ctx context.Context, empireID string) (*ledger.Account, error) {
	var row struct {
		ID                 string `db:"id"`
		Credits            int64  `db:"credits"`
		Energy             int64  `db:"energy"`
		RemainderMilli     int64  `db:"credits_remainder_milli"`
		LastResourceUpdate int64  `db:"last_resource_update"`
		LastCreditPayout   int64  `db:"last_credit_payout"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT id, credits, energy, credits_remainder_milli, last_resource_update, last_credit_payout
		FROM empires WHERE id = ?
	`, empireID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &ledger.Account{
		EmpireID:           row.ID,
		Credits:            row.Credits,
		Energy:             row.Energy,
		RemainderMilli:     row.RemainderMilli,
		LastResourceUpdate: fromMillis(row.LastResourceUpdate),
		LastCreditPayout:   fromMillis(row.LastCreditPayout),
	}, nil
}

// ApplyPayout adds whole credits and advances the payout boundary, guarded by a
// compare-and-set on the previous boundary. It returns the new balance.
func (r *LedgerRepository) ApplyPayout(ctx context.Context, p ledger.Payout) (int64, error) {
	query := `
		UPDATE empires
		SET credits = credits + ?,
			credits_remainder_milli = ?,
			energy = ?,
			last_resource_update = ?,
			last_credit_payout = ?
		WHERE id = ? AND last_credit_payout = ?
		RETURNING credits
	`
	boundary := toMillis(p.Boundary)
	var balance int64
	err := r.db.QueryRowxContext(ctx, query,
		p.Whole,
		p.RemainderMilli,
		p.Energy,
		boundary,
		boundary,
		p.EmpireID,
		toMillis(p.PreviousPayout),
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, r.missOr(ctx, p.EmpireID, repository.ErrStale)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to apply payout: %w", err)
	}
	return balance, nil
}

// SetEnergy stores the empire-wide energy balance
func (r *LedgerRepository) SetEnergy(ctx context.Context, empireID string, energy int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE empires SET energy = ?, last_resource_update = ? WHERE id = ?`,
		energy, toMillis(at), empireID)
	if err != nil {
		return fmt.Errorf("failed to set energy: %w", err)
	}
	return expectOneRow(result, repository.ErrNotFound)
}

// Debit subtracts credits only if the balance covers them
func (r *LedgerRepository) Debit(ctx context.Context, empireID string, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRowxContext(ctx, `
		UPDATE empires SET credits = credits - ?
		WHERE id = ? AND credits >= ?
		RETURNING credits
	`, amount, empireID, amount).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, r.missOr(ctx, empireID, repository.ErrInsufficientCredits)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit credits: %w", err)
	}
	return balance, nil
}

// Credit adds credits
func (r *LedgerRepository) Credit(ctx context.Context, empireID string, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRowxContext(ctx,
		`UPDATE empires SET credits = credits + ? WHERE id = ? RETURNING credits`,
		amount, empireID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit: %w", err)
	}
	return balance, nil
}

// AppendTransaction adds an entry to the audit trail and sets its ID
func (r *LedgerRepository) AppendTransaction(ctx context.Context, tx *ledger.Transaction) error {
	var meta sql.NullString
	if len(tx.Meta) > 0 {
		data, err := marshalJSON(tx.Meta)
		if err != nil {
			return err
		}
		meta = sql.NullString{String: data, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO credit_transactions (empire_id, amount, balance_after, type, note, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, tx.EmpireID, tx.Amount, tx.BalanceAfter, string(tx.Type), tx.Note, meta, toMillis(tx.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction id: %w", err)
	}
	tx.ID = id
	return nil
}

// ListTransactions returns the newest transactions first
func (r *LedgerRepository) ListTransactions(ctx context.Context, empireID string, limit int) ([]ledger.Transaction, error) {
	var rows []struct {
		ID           int64          `db:"id"`
		EmpireID     string         `db:"empire_id"`
		Amount       int64          `db:"amount"`
		BalanceAfter int64          `db:"balance_after"`
		Type         string         `db:"type"`
		Note         string         `db:"note"`
		Meta         sql.NullString `db:"meta"`
		CreatedAt    int64          `db:"created_at"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, empire_id, amount, balance_after, type, note, meta, created_at
		FROM credit_transactions
		WHERE empire_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, empireID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]ledger.Transaction, 0, len(rows))
	for _, row := range rows {
		tx := ledger.Transaction{
			ID:           row.ID,
			EmpireID:     row.EmpireID,
			Amount:       row.Amount,
			BalanceAfter: row.BalanceAfter,
			Type:         ledger.TransactionType(row.Type),
			Note:         row.Note,
			CreatedAt:    fromMillis(row.CreatedAt),
		}
		if row.Meta.Valid && row.Meta.String != "" {
			if err := json.Unmarshal([]byte(row.Meta.String), &tx.Meta); err != nil {
				return nil, fmt.Errorf("failed to decode transaction meta: %w", err)
			}
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// HasQueueCharge reports whether a queue_cost entry references the queue item
func (r *LedgerRepository) HasQueueCharge(ctx context.Context, empireID, queueID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM credit_transactions
			WHERE empire_id = ? AND type = ? AND json_extract(meta, '$.queue_id') = ?
		)
	`, empireID, string(ledger.TypeQueueCost), queueID)
	if err != nil {
		return false, fmt.Errorf("failed to look up queue charge: %w", err)
	}
	return exists, nil
}

// missOr distinguishes a missing empire from a failed condition.
func (r *LedgerRepository) missOr(ctx context.Context, empireID string, condErr error) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM empires WHERE id = ?)`, empireID)
	if err != nil {
		return fmt.Errorf("failed to check empire: %w", err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return condErr
}
