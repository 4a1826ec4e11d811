package domain

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts covers the shapes the transit provider has been observed
// to emit: full RFC 3339, bare local wall time, and minute precision.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses an upstream timestamp string, trying each known
// layout. Returns ok=false for empty or unparseable input.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ClockTime formats an upstream timestamp as HH:MM.
func ClockTime(s string) (string, bool) {
	t, ok := ParseTimestamp(s)
	if !ok {
		return "", false
	}
	return t.Format("15:04"), true
}

// TripDuration computes the whole-minute duration between a departure and an
// arrival timestamp and renders it as "M min", or "H h M min" from one hour
// up. Any missing or unparseable timestamp, and any arrival before the
// departure, yields ("unknown", nil) — never a negative or garbage value.
func TripDuration(departure, arrival string) (string, *int) {
	dep, okDep := ParseTimestamp(departure)
	arr, okArr := ParseTimestamp(arrival)
	if !okDep || !okArr {
		return Unknown, nil
	}

	d := arr.Sub(dep)
	if d < 0 {
		return Unknown, nil
	}

	minutes := int(d.Minutes())
	if minutes >= 60 {
		return fmt.Sprintf("%d h %d min", minutes/60, minutes%60), &minutes
	}
	return fmt.Sprintf("%d min", minutes), &minutes
}
