package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-01-15")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 15, d.Day())
	assert.Equal(t, time.UTC, d.Location())
}

func TestParseDay_Invalid(t *testing.T) {
	_, err := ParseDay("15/01/2026")
	assert.Error(t, err)

	_, err = ParseDay("")
	assert.Error(t, err)
}

func TestFormatDay_RoundTrips(t *testing.T) {
	d, err := ParseDay("2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", FormatDay(d))
}

func TestDayIndex(t *testing.T) {
	start, _ := ParseDay("2026-01-01")

	tests := []struct {
		name     string
		date     string
		expected int
	}{
		{"same day", "2026-01-01", 0},
		{"next day", "2026-01-02", 1},
		{"ten days later", "2026-01-11", 10},
		{"across month boundary", "2026-02-01", 31},
		{"before start clamps to zero", "2025-12-25", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, err := ParseDay(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, DayIndex(date, start))
		})
	}
}

func TestAddDays(t *testing.T) {
	start, _ := ParseDay("2026-01-30")
	assert.Equal(t, "2026-02-01", FormatDay(AddDays(start, 2)))
	assert.Equal(t, "2026-01-30", FormatDay(AddDays(start, 0)))
}
