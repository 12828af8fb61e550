package commands

import (
	"fmt"
	"strings"
	"time"
)

// EndOfDay returns 23:59 wall-clock time on day's calendar date in loc. Due
// dates entered without a time land there.
func EndOfDay(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 23, 59, 0, 0, loc)
}

var dueLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ParseDue resolves a due expression in now's location. Date-only forms land
// at EndOfDay so a task due "today" is not already overdue.
func ParseDue(raw string, now time.Time) (time.Time, error) {
	value := strings.TrimSpace(raw)
	loc := now.Location()

	switch strings.ToLower(value) {
	case "":
		return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "due date is empty"}
	case "today":
		return EndOfDay(now, loc), nil
	case "tomorrow":
		return EndOfDay(now.AddDate(0, 0, 1), loc), nil
	case "yesterday":
		return EndOfDay(now.AddDate(0, 0, -1), loc), nil
	}

	if t, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return EndOfDay(t, loc), nil
	}
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unrecognized due date %q", raw)}
}
