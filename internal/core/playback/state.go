// Package playback owns the timeline state and the clock that drives it.
// All state mutation funnels through the Controller so every change point is
// auditable; nothing else writes playback state.
package playback

import (
	"time"

	"github.com/mboven/canvass-replay/internal/core/model"
	"github.com/mboven/canvass-replay/internal/util"
)

// State is a snapshot of the timeline. Controllers hand out copies; callers
// never hold a reference to the live state.
type State struct {
	StartDate time.Time
	EndDate   time.Time

	// TotalDays is the playable range in days. DayOffset runs over
	// [0, TotalDays].
	TotalDays int

	// CurrentDate is StartDate advanced by the whole part of DayOffset.
	CurrentDate time.Time

	// DayOffset is the continuous elapsed-days position.
	DayOffset float64

	Playing bool
	Speed   float64
	Filter  model.CategoryFilter
}

// Controller funnels every timeline mutation through one update path.
type Controller struct {
	state State
}

// NewController initializes timeline state for a dataset spanning start to
// end (inclusive calendar days).
func NewController(start, end time.Time) *Controller {
	totalDays := util.DayIndex(end, start) + 1
	return &Controller{
		state: State{
			StartDate:   start,
			EndDate:     end,
			TotalDays:   totalDays,
			CurrentDate: start,
			Speed:       1,
			Filter:      model.FilterAll,
		},
	}
}

// State returns a copy of the current timeline state.
func (c *Controller) State() State {
	return c.state
}

// update is the single mutation point. It re-derives CurrentDate from
// DayOffset after every change.
func (c *Controller) update(mutate func(*State)) {
	mutate(&c.state)

	if c.state.DayOffset < 0 {
		c.state.DayOffset = 0
	}
	max := float64(c.state.TotalDays)
	if c.state.DayOffset > max {
		c.state.DayOffset = max
	}

	wholeDays := int(c.state.DayOffset)
	if wholeDays >= c.state.TotalDays {
		wholeDays = c.state.TotalDays - 1
	}
	c.state.CurrentDate = util.AddDays(c.state.StartDate, wholeDays)
}

// SetOffset moves the timeline to an arbitrary day offset (scrubbing).
// Play state is untouched; the caller is responsible for invalidating the
// recent-window cache, since scrubs can move backward.
func (c *Controller) SetOffset(offset float64) {
	c.update(func(s *State) { s.DayOffset = offset })
}

// SetPlaying flips the play state.
func (c *Controller) SetPlaying(playing bool) {
	c.update(func(s *State) { s.Playing = playing })
}

// SetSpeed sets the playback speed multiplier. Non-positive values are
// ignored.
func (c *Controller) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	c.update(func(s *State) { s.Speed = speed })
}

// SetFilter changes the category filter. The caller must invalidate the
// recent-window cache: filtering can shrink the visible set.
func (c *Controller) SetFilter(filter model.CategoryFilter) {
	c.update(func(s *State) { s.Filter = filter })
}

// AtEnd reports whether the timeline sits at the end of its range.
func (c *Controller) AtEnd() bool {
	return c.state.DayOffset >= float64(c.state.TotalDays)
}
