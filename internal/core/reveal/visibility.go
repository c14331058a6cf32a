// Package reveal decides which activity records are visible at a point on
// the playback timeline, and which of the visible ones count as recently
// revealed.
package reveal

import (
	"math"
	"time"

	"github.com/mboven/canvass-replay/internal/core/model"
)

// IsVisible reports whether a record has been revealed at the given
// continuous day offset. A record on the current day appears once the
// fractional part of the offset passes its reveal fraction, so records
// trickle in over the course of the day instead of appearing at once on the
// day boundary.
func IsVisible(p model.ProcessedActivity, dayOffset float64) bool {
	whole := math.Floor(dayOffset)
	frac := dayOffset - whole
	w := int(whole)

	if p.DayIndex < w {
		return true
	}
	return p.DayIndex == w && frac >= p.RevealFraction
}

// SelectVisible returns the subset of records visible at the given timeline
// position under the given category filter. The date comparison guards
// against drift between dayOffset and the derived current date. Recomputed
// on every tick; O(n) over the full record list.
func SelectVisible(records []model.ProcessedActivity, currentDate time.Time, dayOffset float64, filter model.CategoryFilter) []model.ProcessedActivity {
	visible := make([]model.ProcessedActivity, 0, len(records))
	for _, p := range records {
		if !filter.Matches(p.Category) {
			continue
		}
		if p.Date.After(currentDate) {
			continue
		}
		if IsVisible(p, dayOffset) {
			visible = append(visible, p)
		}
	}
	return visible
}
