package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ibrahimkeyboad/gobank/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/gobank/internal/core/domain"
	"github.com/ibrahimkeyboad/gobank/internal/core/transaction"
)

// TransactionService is what the HTTP layer needs from the orchestrator.
type TransactionService interface {
	Deposit(ctx context.Context, userID uuid.UUID, req transaction.DepositRequest) (*domain.Transaction, error)
	Withdraw(ctx context.Context, userID uuid.UUID, req transaction.WithdrawRequest) (*domain.Transaction, error)
	Transfer(ctx context.Context, userID uuid.UUID, req transaction.TransferRequest) (*domain.Transaction, error)
	History(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error)
}

type TransactionHandler struct {
	Service TransactionService
}

// Request models
type DepositRequest struct {
	AccountID   uuid.UUID       `json:"accountId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type WithdrawRequest struct {
	AccountID   uuid.UUID       `json:"accountId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type TransferRequest struct {
	FromAccountID uuid.UUID       `json:"fromAccountId"`
	ToAccountID   uuid.UUID       `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

type transactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	FromAccountID *uuid.UUID      `json:"fromAccountId,omitempty"`
	ToAccountID   *uuid.UUID      `json:"toAccountId,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	ProcessedAt   time.Time       `json:"processedAt"`
}

func toResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		Amount:        tx.Amount,
		Type:          string(tx.Type),
		Status:        string(tx.Status),
		FromAccountID: tx.FromAccountID,
		ToAccountID:   tx.ToAccountID,
		Description:   tx.Description,
		CreatedAt:     tx.CreatedAt,
		ProcessedAt:   tx.ProcessedAt,
	}
}

func (h *TransactionHandler) Deposit(c *fiber.Ctx) error {
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	userID := c.Locals(middleware.UserIDKey).(uuid.UUID)
	tx, err := h.Service.Deposit(c.Context(), userID, transaction.DepositRequest{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return failureResponse(c, err)
	}

	return c.Status(http.StatusCreated).JSON(toResponse(tx))
}

func (h *TransactionHandler) Withdraw(c *fiber.Ctx) error {
	var req WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	userID := c.Locals(middleware.UserIDKey).(uuid.UUID)
	tx, err := h.Service.Withdraw(c.Context(), userID, transaction.WithdrawRequest{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return failureResponse(c, err)
	}

	return c.Status(http.StatusCreated).JSON(toResponse(tx))
}

func (h *TransactionHandler) Transfer(c *fiber.Ctx) error {
	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	userID := c.Locals(middleware.UserIDKey).(uuid.UUID)
	tx, err := h.Service.Transfer(c.Context(), userID, transaction.TransferRequest{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		return failureResponse(c, err)
	}

	return c.Status(http.StatusCreated).JSON(toResponse(tx))
}

func (h *TransactionHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Locals(middleware.UserIDKey).(uuid.UUID)

	history, err := h.Service.History(c.Context(), userID)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch history"})
	}

	out := make([]transactionResponse, 0, len(history))
	for i := range history {
		out = append(out, toResponse(&history[i]))
	}

	return c.JSON(fiber.Map{"transactions": out})
}

// failureResponse maps the orchestrator's error taxonomy onto HTTP statuses.
func failureResponse(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAccountNotOwned):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount):
		status = http.StatusBadRequest
	default:
		var updateErr *domain.BalanceUpdateError
		if errors.As(err, &updateErr) {
			status = http.StatusBadGateway
		}
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
