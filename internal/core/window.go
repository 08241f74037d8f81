package core

import (
	"fmt"
	"time"
)

// ReferenceZone is the application's reference time zone. Every calendar
// window (summary months, sweep lookahead) is resolved in this zone unless
// configuration overrides it.
const ReferenceZone = "America/Sao_Paulo"

// MonthWindow selects one calendar month for summary aggregation.
type MonthWindow struct {
	Year  int
	Month int // 1-12
}

// CurrentMonth returns the window containing now in the given location.
func CurrentMonth(now time.Time, loc *time.Location) MonthWindow {
	local := now.In(loc)
	return MonthWindow{Year: local.Year(), Month: int(local.Month())}
}

func (w MonthWindow) Validate() error {
	if w.Month < 1 || w.Month > 12 {
		return fmt.Errorf("invalid month %d: must be between 1 and 12", w.Month)
	}
	if w.Year < 1970 || w.Year > 9999 {
		return fmt.Errorf("invalid year %d", w.Year)
	}
	return nil
}

// Bounds returns the inclusive range [first-day 00:00:00, last-day 23:59:59]
// of the window in the given location.
func (w MonthWindow) Bounds(loc *time.Location) (start, end time.Time) {
	start = time.Date(w.Year, time.Month(w.Month), 1, 0, 0, 0, 0, loc)
	end = start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// Contains reports whether t falls inside the window.
func (w MonthWindow) Contains(t time.Time, loc *time.Location) bool {
	start, end := w.Bounds(loc)
	return !t.Before(start) && !t.After(end)
}

func (w MonthWindow) String() string {
	return fmt.Sprintf("%04d-%02d", w.Year, w.Month)
}

// NextDayBounds returns the half-open range [start, end) covering the
// calendar day after now in the given location. The sweep uses it to find
// lists due tomorrow.
func NextDayBounds(now time.Time, loc *time.Location) (start, end time.Time) {
	y, m, d := now.In(loc).Date()
	start = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	end = start.AddDate(0, 0, 1)
	return start, end
}

// ParseCalendarDay parses a "YYYY-MM-DD" string into a Date anchored at
// midnight in the given location.
func ParseCalendarDay(s string, loc *time.Location) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// FormatCalendarDay renders a date the way the reminder emails show it
// (dd/mm/yyyy, pt-BR convention).
func FormatCalendarDay(d Date) string {
	return d.Format("02/01/2006")
}
