package ledger

import (
	"context"
	"time"
)

// Repository provides persistence for empire balances and the transaction log.
type Repository interface {
	GetAccount(ctx context.Context, empireID string) (*Account, error)
	ApplyPayout(ctx context.Context, p Payout) (int64, error)
	SetEnergy(ctx context.Context, empireID string, energy int64, at time.Time) error
	Debit(ctx context.Context, empireID string, amount int64) (int64, error)
	Credit(ctx context.Context, empireID string, amount int64) (int64, error)
	AppendTransaction(ctx context.Context, tx *Transaction) error
	ListTransactions(ctx context.Context, empireID string, limit int) ([]Transaction, error)
	HasQueueCharge(ctx context.Context, empireID, queueID string) (bool, error)
}
