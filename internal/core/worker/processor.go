package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ibrahimkeyboad/gobank/internal/core/notifications"
)

// StartWebhookWorker polls the webhook_jobs table and delivers transaction
// events until ctx is cancelled. A job is claimed by atomically flipping it
// to DELIVERING, so concurrent replicas never pick up the same PENDING row;
// delivery itself is at-least-once (a crash mid-delivery can resend).
func StartWebhookWorker(ctx context.Context, db *pgxpool.Pool, secret string) {
	go func() {
		slog.Info("webhook worker started")
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("webhook worker stopped")
				return
			case <-ticker.C:
				processJobs(ctx, db, secret)
			}
		}
	}()
}

func processJobs(ctx context.Context, db *pgxpool.Pool, secret string) {
	// The claim must survive past this statement: a bare SELECT ... FOR
	// UPDATE on the pool releases its lock as soon as the statement
	// returns, before delivery happens.
	query := `
		UPDATE webhook_jobs
		SET status = 'DELIVERING'
		WHERE id = (
			SELECT id
			FROM webhook_jobs
			WHERE status = 'PENDING' AND next_run_at <= now()
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, url, payload, attempts
	`

	var (
		id       string
		url      string
		payload  []byte
		attempts int
	)
	if err := db.QueryRow(ctx, query).Scan(&id, &url, &payload, &attempts); err != nil {
		return
	}

	slog.Info("worker: delivering transaction event", "url", url, "job_id", id)

	if sendErr := notifications.SendWebhook(url, payload, secret); sendErr != nil {
		slog.Error("worker: webhook delivery failed", "error", sendErr, "attempts", attempts, "job_id", id)
		nextRun := time.Now().Add(time.Duration(attempts*10+10) * time.Second)

		if attempts >= 5 {
			db.Exec(ctx, `UPDATE webhook_jobs SET status = 'FAILED' WHERE id = $1`, id)
			slog.Error("worker: job marked as FAILED, max attempts reached", "job_id", id)
		} else {
			db.Exec(ctx, `UPDATE webhook_jobs SET status = 'PENDING', attempts = attempts + 1, next_run_at = $2 WHERE id = $1`, id, nextRun)
			slog.Info("worker: retry scheduled", "job_id", id, "next_run", nextRun)
		}
		return
	}

	db.Exec(ctx, `UPDATE webhook_jobs SET status = 'COMPLETED' WHERE id = $1`, id)
	slog.Info("worker: transaction event delivered", "job_id", id)
}
