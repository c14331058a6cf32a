package reveal

import (
	"sort"

	"github.com/mboven/canvass-replay/internal/core/activity"
	"github.com/mboven/canvass-replay/internal/core/model"
)

// Classifier partitions the visible set into recent and cumulative records
// by reveal order. It memoizes its last result: during uninterrupted forward
// playback the visible set only grows, so an unchanged visible count means
// an unchanged classification. Any event that can shrink or reorder the
// visible set (backward scrub, filter change, dataset reload) must call
// Invalidate before the next Classify.
type Classifier struct {
	windowSize int

	version       uint64
	cachedVersion uint64
	cachedCount   int
	cached        map[string]struct{}
}

// NewClassifier creates a classifier for the given recent-window size.
func NewClassifier(windowSize int) *Classifier {
	if windowSize < 0 {
		windowSize = 0
	}
	return &Classifier{windowSize: windowSize}
}

// Invalidate forces the next Classify call to recompute.
func (c *Classifier) Invalidate() {
	c.version++
}

// Classify returns the identity keys of the windowSize most recently
// revealed records among those visible. If the window covers the whole
// visible set, every visible record is recent.
func (c *Classifier) Classify(visible []model.ProcessedActivity) map[string]struct{} {
	if c.cached != nil && c.cachedVersion == c.version && c.cachedCount == len(visible) {
		return c.cached
	}

	recent := make(map[string]struct{}, c.windowSize)

	if len(visible) > 0 && c.windowSize > 0 {
		order := make([]int, len(visible))
		for i := range order {
			order[i] = i
		}
		// Stable sort keeps input order on exact reveal-timestamp ties.
		sort.SliceStable(order, func(a, b int) bool {
			return visible[order[a]].RevealTimestamp() < visible[order[b]].RevealTimestamp()
		})

		from := len(order) - c.windowSize
		if from < 0 {
			from = 0
		}
		for _, idx := range order[from:] {
			recent[activity.IdentityKey(visible[idx])] = struct{}{}
		}
	}

	c.cached = recent
	c.cachedCount = len(visible)
	c.cachedVersion = c.version
	return recent
}

// WindowSize returns the configured recent-window size.
func (c *Classifier) WindowSize() int {
	return c.windowSize
}
