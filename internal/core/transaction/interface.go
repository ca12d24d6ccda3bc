package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ibrahimkeyboad/gobank/internal/core/domain"
)

// AccountsClient is the narrow boundary to the accounts service, which owns
// every balance this core touches. Each call is one synchronous round trip.
// The orchestrator depends on this interface, never on a concrete transport.
//
//go:generate mockgen -destination=mocks/mock_dependencies.go -source=interface.go
type AccountsClient interface {
	// ValidateAccountOwnership reports whether accountID belongs to userID.
	ValidateAccountOwnership(ctx context.Context, accountID, userID uuid.UUID) (bool, error)
	// GetAccountBalance returns the current balance of the account.
	GetAccountBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	// UpdateAccountBalance overwrites the account's balance. A false return
	// means the remote reported failure; an error means the call itself failed.
	UpdateAccountBalance(ctx context.Context, accountID uuid.UUID, newBalance decimal.Decimal) (bool, error)
}

// Store persists transaction audit rows. Rows are append-only: Save assigns
// id and timestamps, and no row is ever updated after its terminal status is
// written.
type Store interface {
	Save(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error)
}

// Notifier announces persisted terminal rows to interested parties. Delivery
// is best-effort and must never fail the money movement itself.
type Notifier interface {
	TransactionRecorded(ctx context.Context, tx *domain.Transaction) error
}
