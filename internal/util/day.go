package util

import (
	"math"
	"time"
)

// DayLayout is the calendar-day format used throughout dataset files.
const DayLayout = "2006-01-02"

// DayMillis is the length of one calendar day in milliseconds.
const DayMillis = 24 * 60 * 60 * 1000

// ParseDay parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}

// FormatDay renders a time as its YYYY-MM-DD calendar day.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// DayIndex returns the whole-day offset of date from start, rounded to the
// nearest day and clamped to zero. Rounding absorbs DST-shifted inputs.
func DayIndex(date, start time.Time) int {
	idx := int(math.Round(date.Sub(start).Hours() / 24))
	if idx < 0 {
		return 0
	}
	return idx
}

// AddDays returns the calendar day that lies wholeDays after start.
func AddDays(start time.Time, wholeDays int) time.Time {
	return start.AddDate(0, 0, wholeDays)
}
