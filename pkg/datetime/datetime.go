// Package datetime provides standardized date handling across the
// application. All dates are normalized to UTC and months are keyed as
// "YYYY-MM" strings for grouping.
package datetime

import (
	"fmt"
	"strings"
	"time"
)

// Standard formats used throughout the application.
const (
	// DateFormat is the standard date-only format (YYYY-MM-DD).
	DateFormat = "2006-01-02"

	// MonthKeyFormat is the grouping key format (YYYY-MM).
	MonthKeyFormat = "2006-01"

	// DisplayDateFormat is for human-readable dates.
	DisplayDateFormat = "Jan 2, 2006"
)

// statementLayouts are the date layouts accepted from bank exports, tried
// in order. ISO first, then the day-first forms common in Brazilian
// statements.
var statementLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02/01/2006 15:04",
	"02-01-2006",
	"2006/01/02",
}

// ParseStatementDate parses a date string from a bank export, accepting
// the layouts above. The result is truncated to midnight UTC.
func ParseStatementDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range statementLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// MonthKey returns the YYYY-MM grouping key for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyFormat)
}

// ParseMonthKey parses a YYYY-MM key back into the first day of that month.
func ParseMonthKey(key string) (time.Time, error) {
	return time.Parse(MonthKeyFormat, key)
}

// StartOfMonth returns the first day of the month at 00:00:00 UTC.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last instant of the month in UTC.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// DaysBetween returns the number of whole days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}
