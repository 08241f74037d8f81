// Package watch implements the live summary loop: subscribe to ledger
// changes, recompute the owner's summary from scratch, hand it to a
// callback. Recomputing fully on every event avoids drift that
// incremental patching would accumulate; the data volumes involved are a
// single user's personal records.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
)

// SummaryReader recomputes a month summary on demand.
// services.SummaryService satisfies it.
type SummaryReader interface {
	MonthSummary(ctx context.Context, ownerID string, w core.MonthWindow) (core.Summary, error)
}

// ChangeSource delivers ledger change events. amqp.Client satisfies it.
type ChangeSource interface {
	ConsumeLedgerChanges(ctx context.Context, handler func(*amqp.LedgerChangeMessage) error) error
}

// UpdateFunc receives the freshly recomputed summary for an owner.
type UpdateFunc func(ownerID string, window core.MonthWindow, summary core.Summary)

// SummaryWatcher drives the recompute loop.
type SummaryWatcher struct {
	source   ChangeSource
	reader   SummaryReader
	loc      *time.Location
	onUpdate UpdateFunc
	now      func() time.Time
}

func NewSummaryWatcher(source ChangeSource, reader SummaryReader, loc *time.Location, onUpdate UpdateFunc) *SummaryWatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &SummaryWatcher{
		source:   source,
		reader:   reader,
		loc:      loc,
		onUpdate: onUpdate,
		now:      time.Now,
	}
}

// Watch consumes change events until ctx is done. A failed recompute is
// returned to the source so the event is redelivered.
func (w *SummaryWatcher) Watch(ctx context.Context) error {
	return w.source.ConsumeLedgerChanges(ctx, func(msg *amqp.LedgerChangeMessage) error {
		return w.handle(ctx, msg)
	})
}

func (w *SummaryWatcher) handle(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	window := core.CurrentMonth(w.now(), w.loc)

	summary, err := w.reader.MonthSummary(ctx, msg.OwnerID, window)
	if err != nil {
		return fmt.Errorf("recompute summary for %s: %w", msg.OwnerID, err)
	}

	slog.DebugContext(ctx, "Summary recomputed",
		"owner_id", msg.OwnerID,
		"change", msg.Kind,
		"window", window.String(),
		"balance_cents", summary.Balance.Cents)

	if w.onUpdate != nil {
		w.onUpdate(msg.OwnerID, window, summary)
	}
	return nil
}
