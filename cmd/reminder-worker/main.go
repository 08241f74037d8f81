package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"financas/internal/config"
	"financas/internal/log"
	"financas/internal/mail"
	"financas/internal/services"
	"financas/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     slog.LevelInfo,
		Component: log.ComponentSweep,
	})
	log.SetDefault(logger)

	logger.Info("Starting reminder-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.MailAPIKey == "" {
		logger.Error("MAIL_API_KEY is required - the worker cannot send reminders without it")
		os.Exit(1)
	}
	loc := cfg.Location()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, loc)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	mailer := mail.NewResendMailer(cfg.MailAPIKey)
	sweep := services.NewReminderSweep(repo, repo, mailer, cfg.MailFrom, loc, cfg.SweepMaxParallel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One run per day at the configured local hour. No catch-up run on
	// start; re-sending after a restart would duplicate reminders.
	go func() {
		for {
			now := time.Now()
			next := nextFireTime(now, cfg.SweepHour, loc)
			logger.Info("Next sweep scheduled", "at", next.Format(time.RFC3339))

			timer := time.NewTimer(next.Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case fired := <-timer.C:
				report, err := sweep.Run(ctx, fired)
				if err != nil {
					logger.Error("Sweep failed", log.FieldError, err)
					continue
				}
				logger.Info("Sweep complete",
					"matched", report.Matched,
					"dispatched", report.Dispatched,
					"skipped", report.Skipped,
					"failed", report.Failed)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())
	cancel()
	logger.Info("Reminder-worker shutdown complete")
}

// nextFireTime returns the next occurrence of the given local hour,
// today if it is still ahead, otherwise tomorrow.
func nextFireTime(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
