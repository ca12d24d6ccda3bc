package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	gobank "github.com/ibrahimkeyboad/gobank"
	"github.com/ibrahimkeyboad/gobank/internal/adapter/accounts"
	"github.com/ibrahimkeyboad/gobank/internal/adapter/handler"
	"github.com/ibrahimkeyboad/gobank/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/gobank/internal/adapter/storage"
	"github.com/ibrahimkeyboad/gobank/internal/core/config"
	"github.com/ibrahimkeyboad/gobank/internal/core/transaction"
	"github.com/ibrahimkeyboad/gobank/internal/core/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	migrationsFS, err := fs.Sub(gobank.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := storage.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repos, boundary client, orchestrator
	txRepo := storage.NewTransactionRepository(dbPool)
	webhookQueue := storage.NewWebhookQueue(dbPool, cfg.WebhookURL)
	accountsClient := accounts.NewClient(cfg.AccountsServiceURL, 10*time.Second)
	orchestrator := transaction.NewOrchestrator(accountsClient, txRepo, webhookQueue)

	txHandler := &handler.TransactionHandler{Service: orchestrator}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/v1", middleware.Identity())
	api.Get("/transactions", txHandler.GetHistory)
	api.Post("/transactions/deposit", middleware.Idempotency(dbPool), txHandler.Deposit)
	api.Post("/transactions/withdraw", middleware.Idempotency(dbPool), txHandler.Withdraw)
	api.Post("/transactions/transfer", middleware.Idempotency(dbPool), txHandler.Transfer)

	worker.StartWebhookWorker(ctx, dbPool, cfg.WebhookSecret)

	go func() {
		slog.Info("transaction service listening", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	dbPool.Close()
	slog.Info("shutdown complete")
}
