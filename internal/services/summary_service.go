package services

import (
	"context"
	"fmt"
	"time"

	"financas/internal/core"
)

// SummarySource is the slice of the store the monthly summary reads.
// storage.SQLiteRepository satisfies it.
type SummarySource interface {
	ListsByOwnerDueBetween(ctx context.Context, ownerID string, start, end time.Time) ([]core.ExpenseList, error)
	ItemsByList(ctx context.Context, listID string) ([]core.Item, error)
	CreditsByOwnerBetween(ctx context.Context, ownerID string, start, end time.Time) ([]core.Credit, error)
}

// ListOverview pairs a list with its aggregate item total.
type ListOverview struct {
	List  core.ExpenseList
	Total core.Money
}

// SummaryService assembles the monthly financial summary: it fetches the
// window's records and hands them to the pure aggregation in core. Lists
// are scoped to the window by due date, credits by their own date.
type SummaryService struct {
	source SummarySource
	loc    *time.Location
}

func NewSummaryService(source SummarySource, loc *time.Location) *SummaryService {
	if loc == nil {
		loc = time.UTC
	}
	return &SummaryService{source: source, loc: loc}
}

// MonthSummary computes the summary for one owner and one month window.
func (s *SummaryService) MonthSummary(ctx context.Context, ownerID string, w core.MonthWindow) (core.Summary, error) {
	if err := w.Validate(); err != nil {
		return core.Summary{}, fmt.Errorf("validate window: %w", err)
	}
	start, end := w.Bounds(s.loc)

	credits, err := s.source.CreditsByOwnerBetween(ctx, ownerID, start, end)
	if err != nil {
		return core.Summary{}, fmt.Errorf("query credits: %w", err)
	}

	lists, err := s.source.ListsByOwnerDueBetween(ctx, ownerID, start, end)
	if err != nil {
		return core.Summary{}, fmt.Errorf("query lists: %w", err)
	}

	breakdown := core.NewBreakdown()
	for _, l := range lists {
		items, err := s.source.ItemsByList(ctx, l.ID)
		if err != nil {
			return core.Summary{}, fmt.Errorf("query items of list %s: %w", l.ID, err)
		}
		for _, it := range items {
			breakdown.Add(it.Category, it.Value)
		}
	}

	return core.BuildSummary(core.CreditTotal(credits), breakdown), nil
}

// MonthLists returns the window's lists with their per-list totals, the
// shape the dashboard cards render.
func (s *SummaryService) MonthLists(ctx context.Context, ownerID string, w core.MonthWindow) ([]ListOverview, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("validate window: %w", err)
	}
	start, end := w.Bounds(s.loc)

	lists, err := s.source.ListsByOwnerDueBetween(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}

	itemsByList := make(map[string][]core.Item, len(lists))
	for _, l := range lists {
		items, err := s.source.ItemsByList(ctx, l.ID)
		if err != nil {
			return nil, fmt.Errorf("query items of list %s: %w", l.ID, err)
		}
		itemsByList[l.ID] = items
	}

	totals := core.ListTotals(lists, itemsByList)
	overviews := make([]ListOverview, 0, len(lists))
	for _, l := range lists {
		overviews = append(overviews, ListOverview{List: l, Total: totals[l.ID]})
	}
	return overviews, nil
}
