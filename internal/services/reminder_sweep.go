package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/core"
	"financas/internal/mail"
)

// DueListSource yields the lists a sweep run must consider.
// storage.SQLiteRepository satisfies it.
type DueListSource interface {
	ListsDueBetween(ctx context.Context, start, end time.Time) ([]core.ExpenseList, error)
}

// UserDirectory resolves an owner to their notification address.
// storage.SQLiteRepository satisfies it.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (core.User, error)
}

// SweepReport is the outcome of one sweep run. A run "completes" even when
// individual dispatches failed; only the qualifying-list query itself can
// fail a run.
type SweepReport struct {
	Matched    int
	Dispatched int
	Skipped    int
	Failed     int
}

// ReminderSweep sends one reminder per list due tomorrow. It holds no
// state between runs and performs no writes, so re-running on the same day
// re-sends; the scheduler owns at-most-once-per-day invocation.
type ReminderSweep struct {
	lists       DueListSource
	users       UserDirectory
	mailer      mail.Mailer
	from        string
	loc         *time.Location
	maxParallel int
}

func NewReminderSweep(lists DueListSource, users UserDirectory, mailer mail.Mailer, from string, loc *time.Location, maxParallel int) *ReminderSweep {
	if loc == nil {
		loc = time.UTC
	}
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &ReminderSweep{
		lists:       lists,
		users:       users,
		mailer:      mailer,
		from:        from,
		loc:         loc,
		maxParallel: maxParallel,
	}
}

// Run performs one sweep relative to now. Per-list work is independent:
// an owner without an email is skipped with a warning, a dispatch failure
// is logged and counted, and neither stops the remaining lists.
func (s *ReminderSweep) Run(ctx context.Context, now time.Time) (SweepReport, error) {
	start, end := core.NextDayBounds(now, s.loc)

	due, err := s.lists.ListsDueBetween(ctx, start, end)
	if err != nil {
		return SweepReport{}, fmt.Errorf("query lists due tomorrow: %w", err)
	}

	if len(due) == 0 {
		slog.InfoContext(ctx, "No lists due tomorrow",
			"window_start", start.Format("2006-01-02"),
			"run_date", now.In(s.loc).Format("2006-01-02"))
		return SweepReport{}, nil
	}

	var dispatched, skipped, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)

	for _, list := range due {
		g.Go(func() error {
			// Cancellation stops un-dispatched lists; they still match
			// tomorrow's window until the day advances.
			if gctx.Err() != nil {
				return nil
			}

			user, err := s.users.GetUser(gctx, list.OwnerID)
			if err != nil {
				failed.Add(1)
				slog.ErrorContext(gctx, "Failed to resolve list owner",
					"list_id", list.ID,
					"owner_id", list.OwnerID,
					"error", err)
				return nil
			}

			if user.Email == "" {
				skipped.Add(1)
				slog.WarnContext(gctx, "Owner has no notification address, skipping list",
					"list_id", list.ID,
					"owner_id", list.OwnerID)
				return nil
			}

			subject := mail.ReminderSubject(list.Name)
			body := mail.ReminderBody(list.Name, list.DueDate)
			if err := s.mailer.Send(gctx, s.from, user.Email, subject, body); err != nil {
				failed.Add(1)
				slog.ErrorContext(gctx, "Failed to dispatch reminder",
					"list_id", list.ID,
					"owner_id", list.OwnerID,
					"error", err)
				return nil
			}

			dispatched.Add(1)
			slog.InfoContext(gctx, "Reminder dispatched",
				"list_id", list.ID,
				"owner_id", list.OwnerID,
				"due_date", list.DueDate.Format("2006-01-02"))
			return nil
		})
	}

	// Per-list goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	report := SweepReport{
		Matched:    len(due),
		Dispatched: int(dispatched.Load()),
		Skipped:    int(skipped.Load()),
		Failed:     int(failed.Load()),
	}

	slog.InfoContext(ctx, "Reminder sweep complete",
		"matched", report.Matched,
		"dispatched", report.Dispatched,
		"skipped", report.Skipped,
		"failed", report.Failed)

	return report, nil
}
