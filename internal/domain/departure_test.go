package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"rfc3339 with offset", "2026-04-26T15:10:00+02:00", true},
		{"rfc3339 utc", "2026-04-26T13:10:00Z", true},
		{"bare wall time", "2026-04-26T15:10:00", true},
		{"minute precision", "2026-04-26T15:10", true},
		{"empty", "", false},
		{"whitespace", "  ", false},
		{"date only", "2026-04-26", false},
		{"garbage", "soon", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseTimestamp(tt.raw)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestClockTime(t *testing.T) {
	got, ok := ClockTime("2026-04-26T15:10:00")
	require.True(t, ok)
	assert.Equal(t, "15:10", got)

	got, ok = ClockTime("2026-04-26T09:05:00+02:00")
	require.True(t, ok)
	assert.Equal(t, "09:05", got)

	_, ok = ClockTime("not a time")
	assert.False(t, ok)
}

func TestTripDuration(t *testing.T) {
	tests := []struct {
		name      string
		departure string
		arrival   string
		want      string
		minutes   int // -1 means nil
	}{
		{"under an hour", "2026-04-26T15:10:00", "2026-04-26T15:52:00", "42 min", 42},
		{"exactly one hour", "2026-04-26T15:00:00", "2026-04-26T16:00:00", "1 h 0 min", 60},
		{"over an hour", "2026-04-26T15:10:00", "2026-04-26T17:25:00", "2 h 15 min", 135},
		{"zero minutes", "2026-04-26T15:10:00", "2026-04-26T15:10:30", "0 min", 0},
		{"missing arrival", "2026-04-26T15:10:00", "", Unknown, -1},
		{"missing departure", "", "2026-04-26T15:52:00", Unknown, -1},
		{"malformed arrival", "2026-04-26T15:10:00", "tomorrow", Unknown, -1},
		{"arrival before departure", "2026-04-26T15:10:00", "2026-04-26T14:00:00", Unknown, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, minutes := TripDuration(tt.departure, tt.arrival)
			assert.Equal(t, tt.want, got)
			if tt.minutes < 0 {
				assert.Nil(t, minutes)
			} else {
				require.NotNil(t, minutes)
				assert.Equal(t, tt.minutes, *minutes)
			}
		})
	}
}
