package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/mindtrack/internal/constants"
)

// ParseDate parses a calendar date in the standard format (YYYY-MM-DD).
// The returned time is midnight UTC of that date.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q (expected YYYY-MM-DD): %w", dateStr, err)
	}
	return t, nil
}

// FormatDate formats t as a calendar date string in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(constants.DateFormat)
}

// TodayUTC returns the UTC calendar date of now as a date-only value.
func TodayUTC(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// IsAfterToday reports whether date falls on a calendar day after now (UTC).
func IsAfterToday(date time.Time, now time.Time) bool {
	return date.After(TodayUTC(now))
}

// FormatTimestamp formats t in UTC using the fixed-width storage layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

// ParseTimestamp parses a stored timestamp. RFC 3339 values written by
// other tools are accepted as well.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(constants.TimestampFormat, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
