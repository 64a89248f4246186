package mocks

import (
	"context"
	"time"

	"github.com/rpggio/starbase/internal/domain/ledger"
	"github.com/stretchr/testify/mock"
)

// LedgerRepository is a mock for ledger.Repository.
type LedgerRepository struct {
	mock.Mock
}

func (m *LedgerRepository) GetAccount(ctx context.Context, empireID string) (*ledger.Account, error) {
	args := m.Called(ctx, empireID)
	if acct, ok := args.Get(0).(*ledger.Account); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerRepository) ApplyPayout(ctx context.Context, p ledger.Payout) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LedgerRepository) SetEnergy(ctx context.Context, empireID string, energy int64, at time.Time) error {
	args := m.Called(ctx, empireID, energy, at)
	return args.Error(0)
}

func (m *LedgerRepository) Debit(ctx context.Context, empireID string, amount int64) (int64, error) {
	args := m.Called(ctx, empireID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LedgerRepository) Credit(ctx context.Context, empireID string, amount int64) (int64, error) {
	args := m.Called(ctx, empireID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LedgerRepository) AppendTransaction(ctx context.Context, tx *ledger.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *LedgerRepository) HasQueueCharge(ctx context.Context, empireID, queueID string) (bool, error) {
	args := m.Called(ctx, empireID, queueID)
	return args.Bool(0), args.Error(1)
}

func (m *LedgerRepository) ListTransactions(ctx context.Context, empireID string, limit int) ([]ledger.Transaction, error) {
	args := m.Called(ctx, empireID, limit)
	if list, ok := args.Get(0).([]ledger.Transaction); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
