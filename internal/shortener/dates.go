package shortener

import (
	"fmt"
	"strings"
	"time"
)

// Wire formats for human supplied dates.
const (
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"
)

// ParseDateTime parses a "yyyy-MM-dd HH:mm:ss" value in loc.
func ParseDateTime(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, use %s", ErrInvalidDateFormat, raw, "yyyy-MM-dd HH:mm:ss")
	}

	return t, nil
}

// ParseDate parses a "yyyy-MM-dd" value as midnight in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, use %s", ErrInvalidDateFormat, raw, "yyyy-MM-dd")
	}

	return t, nil
}

// EndOfDay returns the last representable instant of the calendar day of t.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
}

// FormatDateTime renders t in loc using DateTimeLayout.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}

	return t.In(loc).Format(DateTimeLayout)
}
