package core

import (
	"testing"
	"time"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(ReferenceZone)
	if err != nil {
		t.Fatalf("load %s: %v", ReferenceZone, err)
	}
	return loc
}

func TestMonthWindowBounds(t *testing.T) {
	loc := saoPaulo(t)

	cases := []struct {
		window    MonthWindow
		wantStart string
		wantEnd   string
	}{
		{MonthWindow{2026, 8}, "2026-08-01 00:00:00", "2026-08-31 23:59:59"},
		{MonthWindow{2026, 2}, "2026-02-01 00:00:00", "2026-02-28 23:59:59"},
		{MonthWindow{2024, 2}, "2024-02-01 00:00:00", "2024-02-29 23:59:59"}, // leap year
		{MonthWindow{2026, 12}, "2026-12-01 00:00:00", "2026-12-31 23:59:59"},
	}
	for _, tc := range cases {
		start, end := tc.window.Bounds(loc)
		const layout = "2006-01-02 15:04:05"
		if got := start.Format(layout); got != tc.wantStart {
			t.Errorf("%s start = %s, want %s", tc.window, got, tc.wantStart)
		}
		if got := end.Format(layout); got != tc.wantEnd {
			t.Errorf("%s end = %s, want %s", tc.window, got, tc.wantEnd)
		}
	}
}

func TestMonthWindowContains(t *testing.T) {
	loc := saoPaulo(t)
	w := MonthWindow{2026, 8}

	inside := time.Date(2026, 8, 15, 12, 0, 0, 0, loc)
	if !w.Contains(inside, loc) {
		t.Error("mid-month instant should be inside the window")
	}
	before := time.Date(2026, 7, 31, 23, 59, 59, 0, loc)
	if w.Contains(before, loc) {
		t.Error("instant from previous month should be outside")
	}
	lastSecond := time.Date(2026, 8, 31, 23, 59, 59, 0, loc)
	if !w.Contains(lastSecond, loc) {
		t.Error("last second of the month should be inside")
	}
}

func TestMonthWindowValidate(t *testing.T) {
	if err := (MonthWindow{2026, 8}).Validate(); err != nil {
		t.Fatalf("valid window rejected: %v", err)
	}
	if err := (MonthWindow{2026, 0}).Validate(); err == nil {
		t.Error("month 0 should be rejected")
	}
	if err := (MonthWindow{2026, 13}).Validate(); err == nil {
		t.Error("month 13 should be rejected")
	}
}

func TestNextDayBounds(t *testing.T) {
	loc := saoPaulo(t)

	// Run instant late in the evening: tomorrow must still be the next
	// calendar day in São Paulo, not in UTC.
	now := time.Date(2026, 8, 28, 23, 30, 0, 0, loc)
	start, end := NextDayBounds(now, loc)

	if got := start.Format("2006-01-02 15:04:05"); got != "2026-08-29 00:00:00" {
		t.Errorf("start = %s, want 2026-08-29 00:00:00", got)
	}
	if got := end.Format("2006-01-02 15:04:05"); got != "2026-08-30 00:00:00" {
		t.Errorf("end = %s, want 2026-08-30 00:00:00", got)
	}

	// Month boundary rolls over.
	now = time.Date(2026, 8, 31, 10, 0, 0, 0, loc)
	start, _ = NextDayBounds(now, loc)
	if got := start.Format("2006-01-02"); got != "2026-09-01" {
		t.Errorf("start = %s, want 2026-09-01", got)
	}
}

func TestParseCalendarDay(t *testing.T) {
	loc := saoPaulo(t)

	d, err := ParseCalendarDay("2026-08-29", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2026 || d.Month() != time.August || d.Day() != 29 {
		t.Errorf("parsed wrong day: %v", d)
	}
	if d.Location() != loc {
		t.Errorf("parsed in wrong location: %v", d.Location())
	}

	if _, err := ParseCalendarDay("29/08/2026", loc); err == nil {
		t.Error("non-ISO input should be rejected")
	}
}

func TestFormatCalendarDay(t *testing.T) {
	d := NewDate(2026, 8, 29, time.UTC)
	if got := FormatCalendarDay(d); got != "29/08/2026" {
		t.Errorf("FormatCalendarDay = %q, want 29/08/2026", got)
	}
}

func TestCurrentMonth(t *testing.T) {
	loc := saoPaulo(t)

	// 2026-09-01 01:00 UTC is still 2026-08-31 22:00 in São Paulo.
	now := time.Date(2026, 9, 1, 1, 0, 0, 0, time.UTC)
	if got := CurrentMonth(now, loc); got != (MonthWindow{2026, 8}) {
		t.Errorf("CurrentMonth = %v, want 2026-08", got)
	}
}
