package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType says what kind of money movement a record documents.
type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeTransfer   TransactionType = "TRANSFER"
)

// TransactionStatus is the terminal outcome of an attempted movement.
// There is no PENDING state: a row is written only once the outcome is known.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// Transaction is the audit record of one attempted money movement.
// FromAccountID is nil for deposits, ToAccountID is nil for withdrawals;
// transfers carry both. Amount is strictly positive.
type Transaction struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Type          TransactionType
	Amount        decimal.Decimal
	Description   string
	Status        TransactionStatus
	CreatedAt     time.Time
	ProcessedAt   time.Time
}
