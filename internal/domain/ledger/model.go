package ledger

import "time"

// TransactionType tags a credit transaction.
type TransactionType string

const (
	TypeTickPayout TransactionType = "tick_payout"
	TypeQueueCost  TransactionType = "queue_cost"
	TypeRefund     TransactionType = "refund"
	TypeAdjustment TransactionType = "adjustment"
)

// Transaction is one append-only entry of the credit audit trail.
type Transaction struct {
	ID           int64           `json:"id"`
	EmpireID     string          `json:"empire_id"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	Type         TransactionType `json:"type"`
	Note         string          `json:"note,omitempty"`
	Meta         map[string]any  `json:"meta,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Account is the resource state of an empire as the ledger sees it.
type Account struct {
	EmpireID           string
	Credits            int64
	Energy             int64
	RemainderMilli     int64
	LastResourceUpdate time.Time
	LastCreditPayout   time.Time
}

// Payout is a compare-and-set update of an account for elapsed periods.
// It applies only while the stored last_credit_payout equals PreviousPayout.
type Payout struct {
	EmpireID       string
	Whole          int64
	RemainderMilli int64
	Energy         int64
	PreviousPayout time.Time
	Boundary       time.Time
}

// Entry is a single credit mutation request.
type Entry struct {
	EmpireID string
	Amount   int64
	Type     TransactionType
	Note     string
	Meta     map[string]any
}

// AccrualResult reports what Accrue did.
type AccrualResult struct {
	Applied      bool      `json:"applied"`
	Periods      int64     `json:"periods"`
	Credits      int64     `json:"credits"`
	BalanceAfter int64     `json:"balance_after"`
	Remainder    int64     `json:"remainder_milli"`
	Boundary     time.Time `json:"boundary"`
}
