// Package utils provides utility functions for the daylight application.
package utils //nolint:revive // utils is a common and acceptable package name

import (
	"fmt"
	"strings"
	"time"
)

// FormDateLayout is the layout the date picker writes (day/month/year).
// Single digit days and months are accepted when parsing.
const FormDateLayout = "2/1/2006"

// ClockLayout is the 24h clock format used for sunrise and sunset.
const ClockLayout = "15:04"

// ParseFormDate parses a dd/mm/yyyy date into midnight of that day in loc.
func ParseFormDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(FormDateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected dd/mm/yyyy: %w", s, err)
	}
	return t, nil
}

// FormatFormDate formats t the way the date picker does, e.g. 5/3/2024.
func FormatFormDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// FormatClock formats t as HH:MM in its own location.
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// FormatDuration formats the span between start and end as "{h}h {mm}m".
// The span is measured in whole milliseconds; seconds are truncated and
// minutes are always two digits. A span where end precedes start is
// rendered with a leading minus, e.g. "-1h 30m".
func FormatDuration(start, end time.Time) string {
	ms := end.Sub(start).Milliseconds()
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	hours := ms / (1000 * 60 * 60)
	minutes := (ms / (1000 * 60)) % 60
	return fmt.Sprintf("%s%dh %02dm", sign, hours, minutes)
}
