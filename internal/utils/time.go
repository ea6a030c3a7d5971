package utils

import (
	"fmt"
	"time"
)

// DayLayout is the calendar-day format used for meal and weight dates
const DayLayout = "2006-01-02"

// FormatDay renders t as YYYY-MM-DD in its own location
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses YYYY-MM-DD as midnight in loc
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// WindowDays returns the n calendar days ending at anchor (inclusive),
// oldest first, formatted as YYYY-MM-DD.
func WindowDays(anchor time.Time, n int, loc *time.Location) []string {
	end := StartOfDay(anchor, loc)
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, FormatDay(end.AddDate(0, 0, -i)))
	}
	return days
}
