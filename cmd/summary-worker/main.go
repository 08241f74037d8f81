package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"financas/internal/amqp"
	"financas/internal/config"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/services"
	"financas/internal/storage"
	"financas/internal/watch"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     slog.LevelInfo,
		Component: log.ComponentWatcher,
	})
	log.SetDefault(logger)

	logger.Info("Starting summary-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required - the worker consumes ledger change events")
		os.Exit(1)
	}
	loc := cfg.Location()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, loc)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	amqpClient, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	summary := services.NewSummaryService(repo, loc)
	watcher := watch.NewSummaryWatcher(amqpClient, summary, loc,
		func(ownerID string, window core.MonthWindow, sum core.Summary) {
			logger.Info("Summary recomputed",
				log.FieldOwnerID, ownerID,
				log.FieldWindow, window.String(),
				"total_credits_cents", sum.TotalCredits.Cents,
				"total_expenses_cents", sum.TotalExpenses.Cents,
				"balance_cents", sum.Balance.Cents,
				"categories", len(sum.Distribution))
		})

	go func() {
		if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Watch loop failed", log.FieldError, err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()

	// Give the consumer a moment to nack in-flight deliveries.
	time.Sleep(500 * time.Millisecond)
	logger.Info("Summary-worker shutdown complete")
}
