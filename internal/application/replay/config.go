package replay

import (
	"time"

	"github.com/mboven/canvass-replay/internal/core/model"
)

// Config contains configuration for the replay command.
type Config struct {
	// DataDir holds the sanitized dataset batch files.
	DataDir string

	// InitialSpeed is the playback speed at startup. Zero means 1x.
	InitialSpeed float64

	// InitialFilter restricts the visible categories at startup.
	InitialFilter model.CategoryFilter

	// RecentWindowSize is the number of most-recently-revealed markers
	// rendered with recent emphasis.
	RecentWindowSize int

	// UpdateIntervalDays quantizes the continuous clock into redraw steps.
	UpdateIntervalDays float64

	// BaseDaysPerMillisecond sets the playback rate at speed 1.
	BaseDaysPerMillisecond float64

	// PlaybackSpeeds are the selectable speed multipliers, mapped to the
	// number keys in order.
	PlaybackSpeeds []float64

	// AutoLoopPause is the rest at the range end before auto-restart.
	AutoLoopPause time.Duration

	// UIRefreshRate is the display refresh rate in Hz.
	UIRefreshRate float64

	// TickInterval is the clock tick spacing.
	TickInterval time.Duration
}

// Validate checks the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.RecentWindowSize == 0 {
		c.RecentWindowSize = 25
	}
	if c.InitialSpeed == 0 {
		c.InitialSpeed = 1
	}
	if c.InitialFilter == "" {
		c.InitialFilter = model.FilterAll
	}
	if c.UpdateIntervalDays == 0 {
		c.UpdateIntervalDays = 0.125
	}
	if c.BaseDaysPerMillisecond == 0 {
		c.BaseDaysPerMillisecond = 0.004
	}
	if len(c.PlaybackSpeeds) == 0 {
		c.PlaybackSpeeds = []float64{0.5, 1, 2, 4}
	}
	if c.AutoLoopPause == 0 {
		c.AutoLoopPause = 1200 * time.Millisecond
	}
	if c.UIRefreshRate == 0 {
		c.UIRefreshRate = 4
	}
	if c.TickInterval == 0 {
		c.TickInterval = 16 * time.Millisecond
	}
	return nil
}
