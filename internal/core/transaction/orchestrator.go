package transaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ibrahimkeyboad/gobank/internal/core/domain"
)

// Orchestrator executes deposits, withdrawals and transfers by coordinating
// balance writes that live in the remote accounts service. There is no shared
// transaction between the balance writes and the local audit row: the outcome
// is recorded after the fact, and a row exists if and only if at least one
// remote mutation was attempted.
type Orchestrator struct {
	accounts AccountsClient
	store    Store
	notifier Notifier
}

func NewOrchestrator(accounts AccountsClient, store Store, notifier Notifier) *Orchestrator {
	return &Orchestrator{accounts: accounts, store: store, notifier: notifier}
}

type DepositRequest struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Description string
}

type WithdrawRequest struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Description string
}

type TransferRequest struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Description   string
}

// Deposit credits amount to the account. Validation failures leave no trace;
// a failed balance write is recorded as a FAILED row before the error is
// returned.
func (o *Orchestrator) Deposit(ctx context.Context, userID uuid.UUID, req DepositRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	owned, err := o.accounts.ValidateAccountOwnership(ctx, req.AccountID, userID)
	if err != nil {
		return nil, fmt.Errorf("check account ownership: %w", err)
	}
	if !owned {
		return nil, domain.ErrAccountNotOwned
	}

	balance, err := o.accounts.GetAccountBalance(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("read account balance: %w", err)
	}

	tx := &domain.Transaction{
		UserID:      userID,
		ToAccountID: &req.AccountID,
		Type:        domain.TypeDeposit,
		Amount:      req.Amount,
		Description: req.Description,
	}

	ok, err := o.accounts.UpdateAccountBalance(ctx, req.AccountID, balance.Add(req.Amount))
	if err != nil || !ok {
		return nil, o.recordFailure(ctx, tx, domain.LegAccount, err)
	}

	return o.recordSuccess(ctx, tx)
}

// Withdraw debits amount from the account. Ownership and sufficiency must
// both hold before any remote mutation is attempted.
func (o *Orchestrator) Withdraw(ctx context.Context, userID uuid.UUID, req WithdrawRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	owned, err := o.accounts.ValidateAccountOwnership(ctx, req.AccountID, userID)
	if err != nil {
		return nil, fmt.Errorf("check account ownership: %w", err)
	}
	if !owned {
		return nil, domain.ErrAccountNotOwned
	}

	balance, err := o.accounts.GetAccountBalance(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("read account balance: %w", err)
	}
	if req.Amount.GreaterThan(balance) {
		return nil, domain.ErrInsufficientBalance
	}

	tx := &domain.Transaction{
		UserID:        userID,
		FromAccountID: &req.AccountID,
		Type:          domain.TypeWithdrawal,
		Amount:        req.Amount,
		Description:   req.Description,
	}

	ok, err := o.accounts.UpdateAccountBalance(ctx, req.AccountID, balance.Sub(req.Amount))
	if err != nil || !ok {
		return nil, o.recordFailure(ctx, tx, domain.LegAccount, err)
	}

	return o.recordSuccess(ctx, tx)
}

// Transfer debits the source account and credits the destination, in that
// order. The credit is never attempted if the debit fails. If the credit
// fails after the debit succeeded, the debit is left in place: the FAILED
// audit row is the input for out-of-band reconciliation, and no compensating
// write is issued.
func (o *Orchestrator) Transfer(ctx context.Context, userID uuid.UUID, req TransferRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	// Both legs on one account would overwrite the debit with a credit of
	// the same stale balance, ending at B+amount out of nowhere.
	if req.FromAccountID == req.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	owned, err := o.accounts.ValidateAccountOwnership(ctx, req.FromAccountID, userID)
	if err != nil {
		return nil, fmt.Errorf("check account ownership: %w", err)
	}
	if !owned {
		return nil, domain.ErrAccountNotOwned
	}

	fromBalance, err := o.accounts.GetAccountBalance(ctx, req.FromAccountID)
	if err != nil {
		return nil, fmt.Errorf("read from account balance: %w", err)
	}
	if req.Amount.GreaterThan(fromBalance) {
		return nil, domain.ErrInsufficientBalance
	}

	toBalance, err := o.accounts.GetAccountBalance(ctx, req.ToAccountID)
	if err != nil {
		return nil, fmt.Errorf("read to account balance: %w", err)
	}

	tx := &domain.Transaction{
		UserID:        userID,
		FromAccountID: &req.FromAccountID,
		ToAccountID:   &req.ToAccountID,
		Type:          domain.TypeTransfer,
		Amount:        req.Amount,
		Description:   req.Description,
	}

	ok, err := o.accounts.UpdateAccountBalance(ctx, req.FromAccountID, fromBalance.Sub(req.Amount))
	if err != nil || !ok {
		return nil, o.recordFailure(ctx, tx, domain.LegFrom, err)
	}

	ok, err = o.accounts.UpdateAccountBalance(ctx, req.ToAccountID, toBalance.Add(req.Amount))
	if err != nil || !ok {
		// The source account has already been debited at this point.
		return nil, o.recordFailure(ctx, tx, domain.LegTo, err)
	}

	return o.recordSuccess(ctx, tx)
}

// History lists the user's transactions, most recent first.
func (o *Orchestrator) History(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	txs, err := o.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (o *Orchestrator) recordSuccess(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	tx.Status = domain.StatusCompleted
	saved, err := o.store.Save(ctx, tx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "save completed transaction", Err: err}
	}
	o.notify(ctx, saved)
	return saved, nil
}

// recordFailure persists the FAILED row first, then returns the balance
// error. A persistence failure takes precedence: without the row there is no
// durable trace of the attempted movement.
func (o *Orchestrator) recordFailure(ctx context.Context, tx *domain.Transaction, leg domain.Leg, cause error) error {
	tx.Status = domain.StatusFailed
	saved, err := o.store.Save(ctx, tx)
	if err != nil {
		return &domain.PersistenceError{Op: "save failed transaction", Err: err}
	}
	o.notify(ctx, saved)

	updateErr := &domain.BalanceUpdateError{Leg: leg, Err: cause}
	slog.Error("balance update failed",
		"transaction_id", saved.ID,
		"user_id", tx.UserID,
		"type", tx.Type,
		"amount", tx.Amount.String(),
		"leg", string(leg),
		"error", updateErr,
	)
	return updateErr
}

func (o *Orchestrator) notify(ctx context.Context, tx *domain.Transaction) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.TransactionRecorded(ctx, tx); err != nil {
		slog.Error("failed to enqueue transaction event", "error", err, "transaction_id", tx.ID)
	}
}
