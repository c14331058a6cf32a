package replay

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mboven/canvass-replay/internal/core/marker"
	"github.com/mboven/canvass-replay/internal/core/model"
	"github.com/mboven/canvass-replay/internal/core/playback"
	"github.com/mboven/canvass-replay/internal/presentation/display"
	"github.com/mboven/canvass-replay/internal/presentation/interaction"
	"github.com/mboven/canvass-replay/internal/util"
)

// Orchestrator coordinates all components for the replay command.
type Orchestrator struct {
	config *Config
	loader *DatasetLoader

	engine *Engine
	ctrl   *playback.Controller
	clock  *playback.Clock

	display  *display.TerminalDisplay
	keyboard *interaction.KeyboardReader
	watcher  *DatasetWatcher

	lastResult CycleResult
}

// NewOrchestrator creates a new Orchestrator instance.
func NewOrchestrator(config *Config) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Orchestrator{
		config: config,
		loader: NewDatasetLoader(config.DataDir),
	}, nil
}

// clockConfig maps the replay config onto the playback clock.
func (o *Orchestrator) clockConfig() playback.ClockConfig {
	return playback.ClockConfig{
		BaseDaysPerMillisecond: o.config.BaseDaysPerMillisecond,
		UpdateIntervalDays:     o.config.UpdateIntervalDays,
		AutoLoopPause:          o.config.AutoLoopPause,
	}
}

// installDataset wires a loaded dataset into the engine and resets the
// timeline, carrying playback settings across reloads.
func (o *Orchestrator) installDataset(ds *Dataset, prev *playback.State) {
	o.ctrl = playback.NewController(ds.StartDate, ds.EndDate)
	if prev != nil {
		o.ctrl.SetSpeed(prev.Speed)
		o.ctrl.SetFilter(prev.Filter)
		o.ctrl.SetOffset(prev.DayOffset)
	} else {
		o.ctrl.SetSpeed(o.config.InitialSpeed)
		o.ctrl.SetFilter(o.config.InitialFilter)
	}
	o.clock = playback.NewClock(o.clockConfig(), o.ctrl)
	o.engine.SetRecords(ds.Records)
}

// Run starts the interactive replay loop.
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting canvass replay...")

	o.display = display.NewTerminalDisplay()
	o.engine = NewEngine(o.display, o.config.RecentWindowSize)

	ds, err := o.loader.Load()
	if err != nil {
		return fmt.Errorf("dataset load failed: %w", err)
	}
	o.installDataset(ds, nil)

	keyboard, err := interaction.NewKeyboardReader()
	if err != nil {
		return fmt.Errorf("failed to initialize keyboard: %w", err)
	}
	o.keyboard = keyboard
	defer o.keyboard.Close()

	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()

	watcher, err := NewDatasetWatcher(o.config.DataDir)
	if err != nil {
		return fmt.Errorf("failed to start dataset watcher: %w", err)
	}
	o.watcher = watcher
	defer o.watcher.Close()

	// Initial frame at dayOffset 0, then start playing.
	o.recompute()
	o.render()
	o.clock.Play(time.Now())

	clockTicker := time.NewTicker(o.config.TickInterval)
	defer clockTicker.Stop()

	uiTicker := time.NewTicker(time.Duration(float64(time.Second) / o.config.UIRefreshRate))
	defer uiTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down canvass replay...")
			return nil

		case now := <-clockTicker.C:
			outcome := o.clock.Tick(now)
			if outcome.Recompute {
				o.recompute()
				o.render()
			}
			if outcome.Ended {
				util.LogInfo(fmt.Sprintf("Reached end of range: %d houses, %d posters",
					o.lastResult.HouseTotal, o.lastResult.PosterTotal))
			}

		case now := <-o.clock.LoopC():
			o.clock.Restart(now)
			o.engine.Invalidate()
			o.recompute()
			o.render()

		case <-uiTicker.C:
			o.render()

		case <-o.watcher.Events():
			o.reloadDataset()

		case keyEvent := <-o.keyboard.Events():
			if o.handleKeyboard(keyEvent) {
				return nil
			}
			o.recompute()
			o.render()
		}
	}
}

// recompute runs one pipeline cycle against the current timeline state.
func (o *Orchestrator) recompute() {
	result, err := o.engine.Recompute(o.ctrl.State())
	if err != nil {
		util.LogError(fmt.Sprintf("Recompute failed: %v", err))
		return
	}
	o.lastResult = result
}

// render pushes the current state to the terminal.
func (o *Orchestrator) render() {
	st := o.ctrl.State()
	o.display.Render(display.Frame{
		StartDate:    util.FormatDay(st.StartDate),
		EndDate:      util.FormatDay(st.EndDate),
		CurrentDate:  util.FormatDay(st.CurrentDate),
		DayOffset:    st.DayOffset,
		TotalDays:    st.TotalDays,
		Playing:      st.Playing,
		Speed:        st.Speed,
		Filter:       string(st.Filter),
		VisibleCount: o.lastResult.VisibleCount,
		RecentCount:  o.lastResult.RecentCount,
		HouseTotal:   o.lastResult.HouseTotal,
		PosterTotal:  o.lastResult.PosterTotal,
	})
}

// reloadDataset picks up a changed dataset directory in place.
func (o *Orchestrator) reloadDataset() {
	ds, err := o.loader.Load()
	if err != nil {
		util.LogWarn(fmt.Sprintf("Dataset reload failed, keeping current data: %v", err))
		return
	}

	// Snapshot before pausing so the play state survives the reload.
	prev := o.ctrl.State()
	o.clock.Pause()
	o.installDataset(ds, &prev)
	util.LogInfo("Dataset reloaded")

	o.recompute()
	if prev.Playing {
		o.clock.Play(time.Now())
	}
	o.render()
}

// handleKeyboard applies a key event. Returns true when the user quits.
func (o *Orchestrator) handleKeyboard(event interaction.KeyEvent) bool {
	now := time.Now()
	st := o.ctrl.State()

	switch event.Type {
	case interaction.KeyLeft:
		o.scrub(st.DayOffset - 1)
	case interaction.KeyRight:
		o.scrub(st.DayOffset + 1)
	case interaction.KeyEscape:
		return true
	case interaction.KeyChar:
		switch event.Key {
		case 'q', 'Q', 3: // 'q', 'Q', or Ctrl+C
			return true
		case ' ':
			o.clock.Toggle(now)
		case '0':
			o.scrub(0)
		case 'f', 'F':
			o.ctrl.SetFilter(o.ctrl.State().Filter.Next())
			// Filtering can shrink the visible set.
			o.engine.Invalidate()
		case 'e', 'E':
			style := o.engine.Style()
			style.Emphasis = !style.Emphasis
			o.engine.SetStyle(style)
		default:
			if idx := int(event.Key - '1'); idx >= 0 && idx < len(o.config.PlaybackSpeeds) {
				o.ctrl.SetSpeed(o.config.PlaybackSpeeds[idx])
			}
		}
	}
	return false
}

// scrub moves the timeline and invalidates the recent-window cache; scrubs
// can move backward.
func (o *Orchestrator) scrub(offset float64) {
	o.clock.Scrub(offset)
	o.engine.Invalidate()
}

// RunHeadless drives the pipeline without a terminal for untilDays of
// timeline, then writes a run summary. Used for unattended checks and in
// CI-like environments without a TTY.
func (o *Orchestrator) RunHeadless(untilDays float64, out io.Writer) error {
	o.engine = NewEngine(nullRenderer{}, o.config.RecentWindowSize)

	ds, err := o.loader.Load()
	if err != nil {
		return fmt.Errorf("dataset load failed: %w", err)
	}
	o.installDataset(ds, nil)

	if untilDays <= 0 || untilDays > float64(o.ctrl.State().TotalDays) {
		untilDays = float64(o.ctrl.State().TotalDays)
	}

	// Synthetic wall clock: each iteration advances one tick interval.
	now := time.Unix(0, 0)
	o.clock.Play(now)

	for {
		now = now.Add(o.config.TickInterval)
		outcome := o.clock.Tick(now)
		if outcome.Recompute {
			o.recompute()
		}
		st := o.ctrl.State()
		if outcome.Ended || st.DayOffset >= untilDays {
			break
		}
	}
	o.clock.Pause()
	// Final recompute so the summary reflects the exact stop position.
	o.recompute()

	st := o.ctrl.State()
	fmt.Fprintf(out, "Replayed %s to %s (%.2f days)\n",
		util.FormatDay(st.StartDate), util.FormatDay(st.CurrentDate), st.DayOffset)
	fmt.Fprintf(out, "Visible: %d markers (%d recent)\n",
		o.lastResult.VisibleCount, o.lastResult.RecentCount)
	fmt.Fprintf(out, "Houses visited: %d, posters placed: %d\n",
		o.lastResult.HouseTotal, o.lastResult.PosterTotal)
	return nil
}

// nullRenderer discards all drawing operations; headless runs only need the
// registry bookkeeping.
type nullRenderer struct{}

func (nullRenderer) CreateVisual(model.ProcessedActivity, marker.Variant, marker.Style) marker.Handle {
	return new(struct{})
}
func (nullRenderer) UpdateVisual(marker.Handle, marker.Variant, marker.Style) {}
func (nullRenderer) RemoveVisual(marker.Handle)                               {}
func (nullRenderer) SetZOrder(marker.Handle, marker.Variant)                  {}
