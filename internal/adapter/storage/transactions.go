package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ibrahimkeyboad/gobank/internal/core/domain"
)

// TransactionRepository persists transaction audit rows. The table is
// append-only: rows are inserted with their terminal status and never
// updated afterward.
type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Save inserts the row and returns it with id and timestamps assigned.
// Amounts travel as text so they never pass through float64.
func (r *TransactionRepository) Save(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, from_account_id, to_account_id, type, amount, description, status, processed_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, now())
		RETURNING id, created_at, processed_at
	`

	saved := *tx
	err := r.db.QueryRow(ctx, query,
		tx.UserID,
		tx.FromAccountID,
		tx.ToAccountID,
		string(tx.Type),
		tx.Amount.String(),
		tx.Description,
		string(tx.Status),
	).Scan(&saved.ID, &saved.CreatedAt, &saved.ProcessedAt)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	return &saved, nil
}

// FindByUserID returns the user's transactions, most recent first.
func (r *TransactionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, from_account_id, to_account_id, type, amount::text, description, status, created_at, processed_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var history []domain.Transaction
	for rows.Next() {
		var (
			tx     domain.Transaction
			txType string
			amount string
			status string
		)
		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.FromAccountID,
			&tx.ToAccountID,
			&txType,
			&amount,
			&tx.Description,
			&status,
			&tx.CreatedAt,
			&tx.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		tx.Type = domain.TransactionType(txType)
		tx.Status = domain.TransactionStatus(status)
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}

		history = append(history, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return history, nil
}
