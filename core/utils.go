package core

import (
	"strings"
	"time"
)

// ClockLayout is the wire format for time-of-day values ("hora_inicio" etc.).
const ClockLayout = "15:04"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ParseClock parses a time-of-day value in ClockLayout.
func ParseClock(s string) (time.Time, error) {
	return time.Parse(ClockLayout, s)
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
