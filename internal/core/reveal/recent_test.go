package reveal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mboven/canvass-replay/internal/core/activity"
	"github.com/mboven/canvass-replay/internal/core/model"
	"github.com/mboven/canvass-replay/internal/util"
)

// distinctActivities builds n records with distinct locations and ascending
// reveal timestamps.
func distinctActivities(t *testing.T, n int) []model.ProcessedActivity {
	t.Helper()
	records := make([]model.ProcessedActivity, 0, n)
	for i := 0; i < n; i++ {
		date := fmt.Sprintf("2026-01-%02d", i%9+1)
		p := makeActivity(t, date, model.CategoryHouse, i, float64(i%10)/10)
		p.Lat += float64(i) * 0.001
		records = append(records, p)
	}
	return records
}

func TestClassify_SizeBound(t *testing.T) {
	for _, n := range []int{0, 1, 3, 10, 100} {
		for _, visibleCount := range []int{0, 1, 5, 50} {
			c := NewClassifier(n)
			visible := distinctActivities(t, visibleCount)

			recent := c.Classify(visible)

			expected := n
			if visibleCount < n {
				expected = visibleCount
			}
			assert.Len(t, recent, expected, "window=%d visible=%d", n, visibleCount)
		}
	}
}

func TestClassify_PicksLatestRevealed(t *testing.T) {
	a := makeActivity(t, "2026-01-01", model.CategoryHouse, 0, 0.2)
	b := makeActivity(t, "2026-01-01", model.CategoryHouse, 0, 0.8)
	b.Lat += 0.01
	c := makeActivity(t, "2026-01-02", model.CategoryPoster, 1, 0.1)

	classifier := NewClassifier(1)
	recent := classifier.Classify([]model.ProcessedActivity{a, b, c})

	require.Len(t, recent, 1)
	_, ok := recent[activity.IdentityKey(c)]
	assert.True(t, ok, "C has the latest reveal timestamp")
}

func TestClassify_WholeSetRecentWhenWindowCovers(t *testing.T) {
	visible := distinctActivities(t, 4)
	c := NewClassifier(10)

	recent := c.Classify(visible)
	assert.Len(t, recent, 4)
	for _, p := range visible {
		_, ok := recent[activity.IdentityKey(p)]
		assert.True(t, ok)
	}
}

func TestClassify_TieBreakIsInputOrderStable(t *testing.T) {
	// Identical reveal timestamps; the window should take the later input
	// positions.
	a := makeActivity(t, "2026-01-01", model.CategoryHouse, 0, 0.5)
	b := makeActivity(t, "2026-01-01", model.CategoryHouse, 0, 0.5)
	b.Lat += 0.01
	c := makeActivity(t, "2026-01-01", model.CategoryHouse, 0, 0.5)
	c.Lat += 0.02

	classifier := NewClassifier(2)
	recent := classifier.Classify([]model.ProcessedActivity{a, b, c})

	require.Len(t, recent, 2)
	_, hasB := recent[activity.IdentityKey(b)]
	_, hasC := recent[activity.IdentityKey(c)]
	assert.True(t, hasB)
	assert.True(t, hasC)
}

func TestClassify_CacheReusedOnSameCount(t *testing.T) {
	visible := distinctActivities(t, 6)
	c := NewClassifier(3)

	first := c.Classify(visible)
	second := c.Classify(visible)

	// Same backing map, not just equal contents.
	assert.Equal(t, fmt.Sprintf("%p", first), fmt.Sprintf("%p", second))
}

func TestClassify_RecomputesWhenCountChanges(t *testing.T) {
	visible := distinctActivities(t, 6)
	c := NewClassifier(3)

	c.Classify(visible)
	shrunk := c.Classify(visible[:2])

	assert.Len(t, shrunk, 2)
}

func TestClassify_InvalidateForcesRecompute(t *testing.T) {
	// Backward-scrub scenario from the design: the visible set is replaced
	// by a same-size but different set. Without invalidation the stale
	// result would be served.
	all := distinctActivities(t, 8)
	c := NewClassifier(2)

	before := c.Classify(all[:4])
	_ = before

	c.Invalidate()
	after := c.Classify(all[4:])

	require.Len(t, after, 2)
	for key := range after {
		found := false
		for _, p := range all[4:] {
			if activity.IdentityKey(p) == key {
				found = true
			}
		}
		assert.True(t, found, "stale key %s survived invalidation", key)
	}
}

func TestClassify_BackwardScrubToZero(t *testing.T) {
	start, _ := util.ParseDay("2026-01-01")
	records := distinctActivities(t, 10)
	c := NewClassifier(3)

	// Forward: everything visible.
	visible := SelectVisible(records, util.AddDays(start, 30), 30, model.FilterAll)
	require.NotEmpty(t, c.Classify(visible))

	// Scrub back to the very beginning.
	c.Invalidate()
	visible = SelectVisible(records, start, 0, model.FilterAll)
	recent := c.Classify(visible)

	assert.LessOrEqual(t, len(recent), len(visible))
	if len(visible) == 0 {
		assert.Empty(t, recent)
	}
}

func TestClassify_ZeroWindow(t *testing.T) {
	c := NewClassifier(0)
	assert.Empty(t, c.Classify(distinctActivities(t, 5)))
}

func TestNewClassifier_NegativeWindowClamped(t *testing.T) {
	c := NewClassifier(-3)
	assert.Equal(t, 0, c.WindowSize())
	assert.Empty(t, c.Classify(distinctActivities(t, 2)))
}
