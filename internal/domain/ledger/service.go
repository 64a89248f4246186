package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/starbase/internal/domain/accrual"
	"github.com/rpggio/starbase/internal/repository"
)

const (
	defaultRetryAttempts = 3
	defaultHistoryLimit  = 50
	maxHistoryLimit      = 500
)

// Options tunes the ledger.
type Options struct {
	PayoutPeriod  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Service applies credit mutations and keeps the audit trail.
type Service struct {
	repo   Repository
	opts   Options
	logger *slog.Logger
}

// NewService creates a new ledger service.
func NewService(repo Repository, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	opts.PayoutPeriod = accrual.ClampPeriod(opts.PayoutPeriod)
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = defaultRetryAttempts
	}
	return &Service{repo: repo, opts: opts, logger: logger}
}

// Accrue pays out credits for the aligned periods elapsed since the last payout and
// stores energy. A second call inside the same period changes nothing.
func (s *Service) Accrue(ctx context.Context, empireID string, creditsPerHour float64, energy int64, now time.Time) (*AccrualResult, error) {
	acct, err := s.account(ctx, empireID)
	if err != nil {
		return nil, err
	}
	if energy < 0 {
		energy = 0
	}

	out := accrual.Advance(acct.LastCreditPayout, now, s.opts.PayoutPeriod, creditsPerHour, acct.RemainderMilli)
	if out.Periods <= 0 {
		if acct.Energy != energy {
			if err := s.repo.SetEnergy(ctx, empireID, energy, now); err != nil {
				return nil, fmt.Errorf("setting energy: %w", err)
			}
		}
		return &AccrualResult{BalanceAfter: acct.Credits, Remainder: acct.RemainderMilli, Boundary: out.Boundary}, nil
	}

	balance, err := s.repo.ApplyPayout(ctx, Payout{
		EmpireID:       empireID,
		Whole:          out.Whole,
		RemainderMilli: out.Remainder,
		Energy:         energy,
		PreviousPayout: acct.LastCreditPayout,
		Boundary:       out.Boundary,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStale) {
			s.logger.Debug("payout already applied for period", "empire_id", empireID, "boundary", out.Boundary)
			return &AccrualResult{BalanceAfter: acct.Credits, Boundary: out.Boundary}, nil
		}
		return nil, fmt.Errorf("applying payout: %w", err)
	}

	if out.Whole > 0 {
		s.record(ctx, &Transaction{
			EmpireID:     empireID,
			Amount:       out.Whole,
			BalanceAfter: balance,
			Type:         TypeTickPayout,
			Note:         fmt.Sprintf("payout for %d period(s)", out.Periods),
			Meta: map[string]any{
				"periods":          out.Periods,
				"credits_per_hour": creditsPerHour,
				"boundary":         out.Boundary.UnixMilli(),
			},
			CreatedAt: now,
		})
	}

	return &AccrualResult{
		Applied:      true,
		Periods:      out.Periods,
		Credits:      out.Whole,
		BalanceAfter: balance,
		Remainder:    out.Remainder,
		Boundary:     out.Boundary,
	}, nil
}

// Charge deducts credits if the balance covers them and returns the new balance.
func (s *Service) Charge(ctx context.Context, e Entry) (int64, error) {
	if e.Amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, err := s.repo.Debit(ctx, e.EmpireID, e.Amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientCredits):
			return 0, ErrInsufficientCredits
		case errors.Is(err, repository.ErrNotFound):
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("debiting credits: %w", err)
	}

	if e.Type == "" {
		e.Type = TypeQueueCost
	}
	s.record(ctx, &Transaction{
		EmpireID:     e.EmpireID,
		Amount:       -e.Amount,
		BalanceAfter: balance,
		Type:         e.Type,
		Note:         e.Note,
		Meta:         e.Meta,
		CreatedAt:    time.Now(),
	})
	return balance, nil
}

// Credit adds credits, for refunds and operator adjustments.
func (s *Service) Credit(ctx context.Context, e Entry) (int64, error) {
	if e.Amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, err := s.repo.Credit(ctx, e.EmpireID, e.Amount)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("crediting: %w", err)
	}

	if e.Type == "" {
		e.Type = TypeAdjustment
	}
	s.record(ctx, &Transaction{
		EmpireID:     e.EmpireID,
		Amount:       e.Amount,
		BalanceAfter: balance,
		Type:         e.Type,
		Note:         e.Note,
		Meta:         e.Meta,
		CreatedAt:    time.Now(),
	})
	return balance, nil
}

// History returns the newest transactions first.
func (s *Service) History(ctx context.Context, empireID string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	txs, err := s.repo.ListTransactions(ctx, empireID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}

// QueueCharged reports whether a queue_cost transaction exists for the queue item.
func (s *Service) QueueCharged(ctx context.Context, empireID, queueID string) (bool, error) {
	ok, err := s.repo.HasQueueCharge(ctx, empireID, queueID)
	if err != nil {
		return false, fmt.Errorf("looking up queue charge: %w", err)
	}
	return ok, nil
}

// Account returns the current balances of an empire.
func (s *Service) Account(ctx context.Context, empireID string) (*Account, error) {
	return s.account(ctx, empireID)
}

func (s *Service) account(ctx context.Context, empireID string) (*Account, error) {
	acct, err := s.repo.GetAccount(ctx, empireID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return acct, nil
}

// record appends a transaction, retrying on its own. The balance change it describes
// has already happened, so a final failure is logged and swallowed.
func (s *Service) record(ctx context.Context, tx *Transaction) {
	var err error
	for attempt := 1; attempt <= s.opts.RetryAttempts; attempt++ {
		if err = s.repo.AppendTransaction(ctx, tx); err == nil {
			return
		}
		s.logger.Warn("ledger append failed",
			"empire_id", tx.EmpireID,
			"type", tx.Type,
			"attempt", attempt,
			"error", err,
		)
		if attempt < s.opts.RetryAttempts && !s.wait(ctx) {
			err = ctx.Err()
			break
		}
	}
	s.logger.Error("ledger entry dropped",
		"empire_id", tx.EmpireID,
		"type", tx.Type,
		"amount", tx.Amount,
		"balance_after", tx.BalanceAfter,
		"error", err,
	)
}

func (s *Service) wait(ctx context.Context) bool {
	if s.opts.RetryDelay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(s.opts.RetryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
