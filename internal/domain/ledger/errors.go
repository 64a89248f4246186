package ledger

import "errors"

var (
	// ErrAccountNotFound indicates the empire has no account row.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientCredits indicates a charge larger than the balance.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrInvalidAmount indicates a non-positive mutation amount.
	ErrInvalidAmount = errors.New("amount must be positive")
)
