package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCompactDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
	}{
		{"hours and minutes", "1h30m", 90 * time.Minute},
		{"minutes only", "45m", 45 * time.Minute},
		{"days", "2d", 48 * time.Hour},
		{"all units", "1d2h3m4s", 24*time.Hour + 2*time.Hour + 3*time.Minute + 4*time.Second},
		{"spaces between tokens", "1h 30m", 90 * time.Minute},
		{"uppercase units", "2H", 2 * time.Hour},
		{"repeated units sum", "10m10m", 20 * time.Minute},
		{"trailing garbage ignored", "5mxyz", 5 * time.Minute},
		{"no tokens", "soon", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCompactDuration(tt.input))
		})
	}
}

func TestParseCompactDuration_FloorRejectsTypos(t *testing.T) {
	assert.Less(t, ParseCompactDuration("3s"), MinDuration)
	assert.Less(t, ParseCompactDuration("0m"), MinDuration)
	assert.GreaterOrEqual(t, ParseCompactDuration("5s"), MinDuration)
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Duration
		expected string
	}{
		{"full breakdown", 26*time.Hour + 3*time.Minute + 4*time.Second, "1d 2h 3m 4s"},
		{"minutes and seconds", 5*time.Minute + 9*time.Second, "5m 9s"},
		{"seconds always shown", 2 * time.Hour, "2h 0s"},
		{"zero", 0, "0s"},
		{"negative clamps to zero", -time.Minute, "0s"},
		{"sub-second truncates", 900 * time.Millisecond, "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDelta(tt.input))
		})
	}
}
