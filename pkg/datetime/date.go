// Package datetime provides calendar date utility functions.
package datetime

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/waribei/unit-economics/pkg/constants"
)

// DateLayout is the format expected in config files and is also the output
// date format.
const DateLayout = constants.DateLayout

// ErrEmptyDate is returned when a date string is blank.
var ErrEmptyDate = errors.New("empty date")

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD) into a UTC midnight
// time.Time.
func ParseDate(date string) (time.Time, error) {
	trimmed := strings.TrimSpace(date)
	if trimmed == "" {
		return time.Time{}, ErrEmptyDate
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// MustParseDate parses a date string and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDate(date string) time.Time {
	t, err := ParseDate(date)
	if err != nil {
		panic(err)
	}
	return t
}

// Truncate drops the time-of-day component, keeping the calendar date as seen
// in t's location, and returns it as UTC midnight.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders the calendar date of t.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return Truncate(a).Equal(Truncate(b))
}
