package domain

import (
	"fmt"
	"time"
)

// Period identifies a reporting window kind.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodAllTime Period = "alltime"
)

// Window is a half-open date-time interval [Start, End). The zero value with
// Unbounded set covers the all-time period.
type Window struct {
	Start     time.Time
	End       time.Time
	Unbounded bool
}

// DateBounds truncates the window to calendar dates, returning ISO [start, end)
// day strings for date-field queries.
func (w Window) DateBounds() (string, string) {
	return w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly)
}

// Label renders the human-facing name of the period ("today", "this week", ...).
func (p Period) Label() string {
	switch p {
	case PeriodWeekly:
		return "this week"
	case PeriodMonthly:
		return "this month"
	case PeriodYearly:
		return "this year"
	case PeriodAllTime:
		return "overall"
	default:
		return "today"
	}
}

// ResolvePeriod maps a period kind and an ISO reference date to its window.
// Week windows start on the most recent Monday and span seven days. An unknown
// period kind resolves like daily; a malformed reference date is an error.
func ResolvePeriod(period Period, referenceDate string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	ref, err := time.ParseInLocation(time.DateOnly, referenceDate, loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidDate, referenceDate)
	}

	switch period {
	case PeriodWeekly:
		// Weekday is Sunday-based; shift so Monday is 0 and Sunday closes the week.
		back := (int(ref.Weekday()) + 6) % 7
		start := ref.AddDate(0, 0, -back)
		return Window{Start: start, End: start.AddDate(0, 0, 7)}, nil
	case PeriodMonthly:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
	case PeriodYearly:
		start := time.Date(ref.Year(), 1, 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(1, 0, 0)}, nil
	case PeriodAllTime:
		return Window{Unbounded: true}, nil
	default:
		return Window{Start: ref, End: ref.AddDate(0, 0, 1)}, nil
	}
}
