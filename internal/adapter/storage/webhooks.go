package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ibrahimkeyboad/gobank/internal/core/domain"
)

// WebhookQueue enqueues transaction events for the background worker. The
// queue lives in the same database as the audit rows but the insert is
// best-effort from the orchestrator's point of view.
type WebhookQueue struct {
	db  *pgxpool.Pool
	url string
}

func NewWebhookQueue(db *pgxpool.Pool, url string) *WebhookQueue {
	return &WebhookQueue{db: db, url: url}
}

type transactionEvent struct {
	Event         string  `json:"event"`
	TransactionID string  `json:"transaction_id"`
	UserID        string  `json:"user_id"`
	FromAccountID *string `json:"from_account_id,omitempty"`
	ToAccountID   *string `json:"to_account_id,omitempty"`
	Type          string  `json:"type"`
	Amount        string  `json:"amount"`
	Status        string  `json:"status"`
	ProcessedAt   string  `json:"processed_at"`
}

// TransactionRecorded enqueues a transaction.completed or transaction.failed
// event for the persisted row.
func (q *WebhookQueue) TransactionRecorded(ctx context.Context, tx *domain.Transaction) error {
	if q.url == "" {
		return nil
	}

	event := transactionEvent{
		Event:         "transaction.completed",
		TransactionID: tx.ID.String(),
		UserID:        tx.UserID.String(),
		Type:          string(tx.Type),
		Amount:        tx.Amount.String(),
		Status:        string(tx.Status),
		ProcessedAt:   tx.ProcessedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if tx.Status == domain.StatusFailed {
		event.Event = "transaction.failed"
	}
	if tx.FromAccountID != nil {
		s := tx.FromAccountID.String()
		event.FromAccountID = &s
	}
	if tx.ToAccountID != nil {
		s := tx.ToAccountID.String()
		event.ToAccountID = &s
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = q.db.Exec(ctx,
		`INSERT INTO webhook_jobs (url, payload, status, next_run_at) VALUES ($1, $2, 'PENDING', now())`,
		q.url, payload)
	if err != nil {
		return fmt.Errorf("enqueue webhook job: %w", err)
	}
	return nil
}
