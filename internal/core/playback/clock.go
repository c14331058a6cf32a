package playback

import (
	"math"
	"time"
)

// ClockConfig holds the playback rate parameters.
type ClockConfig struct {
	// BaseDaysPerMillisecond converts wall-clock time to timeline days at
	// speed 1.
	BaseDaysPerMillisecond float64

	// UpdateIntervalDays quantizes continuous time into discrete redraw
	// steps: the pipeline recomputes only when the offset crosses into a
	// new interval.
	UpdateIntervalDays float64

	// AutoLoopPause is how long the clock rests at the range end before
	// restarting from zero.
	AutoLoopPause time.Duration
}

// TickOutcome tells the caller what a tick changed.
type TickOutcome struct {
	// Recompute is set when the quantized redraw step advanced and the
	// select/classify/reconcile pipeline should run.
	Recompute bool

	// Ended is set on the tick that clamps the offset to the range end.
	Ended bool
}

// Clock advances the timeline in real time while playing. It owns no
// goroutine: the caller drives it with Tick from its own scheduler loop and
// watches LoopC for the auto-restart signal. Stopping always cancels the
// pending restart before any state changes, so a stale restart can never
// fire into reset state.
type Clock struct {
	cfg  ClockConfig
	ctrl *Controller

	lastWall time.Time
	lastStep int64

	loopTimer *time.Timer
}

// NewClock creates a clock driving the given controller.
func NewClock(cfg ClockConfig, ctrl *Controller) *Clock {
	return &Clock{
		cfg:      cfg,
		ctrl:     ctrl,
		lastStep: -1,
	}
}

// Play starts playback from the current offset. If the timeline already sits
// at the end, play restarts from zero.
func (ck *Clock) Play(now time.Time) {
	ck.cancelLoop()
	if ck.ctrl.AtEnd() {
		ck.ctrl.SetOffset(0)
		ck.lastStep = -1
	}
	ck.lastWall = now
	ck.ctrl.SetPlaying(true)
}

// Pause stops playback. The pending auto-loop restart, if armed, is
// canceled first.
func (ck *Clock) Pause() {
	ck.cancelLoop()
	ck.ctrl.SetPlaying(false)
}

// Toggle flips between playing and stopped.
func (ck *Clock) Toggle(now time.Time) {
	if ck.ctrl.State().Playing {
		ck.Pause()
	} else {
		ck.Play(now)
	}
}

// Scrub moves the timeline to an arbitrary offset without changing the play
// state. The caller must invalidate the recent-window cache afterwards;
// scrubs can move backward.
func (ck *Clock) Scrub(offset float64) {
	ck.cancelLoop()
	ck.ctrl.SetOffset(offset)
	// Force a recompute on the next tick regardless of quantization.
	ck.lastStep = -1
}

// Tick advances the timeline by the wall-clock time elapsed since the last
// tick. Reaching the range end clamps the offset, stops playback, and arms
// the auto-loop timer; the caller restarts via Restart when LoopC fires.
func (ck *Clock) Tick(now time.Time) TickOutcome {
	st := ck.ctrl.State()
	if !st.Playing {
		return TickOutcome{}
	}

	elapsed := now.Sub(ck.lastWall)
	ck.lastWall = now

	delta := st.Speed * ck.cfg.BaseDaysPerMillisecond * float64(elapsed) / float64(time.Millisecond)
	offset := st.DayOffset + delta
	total := float64(st.TotalDays)

	if offset >= total {
		ck.ctrl.SetOffset(total)
		ck.ctrl.SetPlaying(false)
		ck.loopTimer = time.NewTimer(ck.cfg.AutoLoopPause)
		ck.lastStep = -1
		return TickOutcome{Recompute: true, Ended: true}
	}

	ck.ctrl.SetOffset(offset)
	step := int64(math.Floor(offset / ck.cfg.UpdateIntervalDays))
	if step != ck.lastStep {
		ck.lastStep = step
		return TickOutcome{Recompute: true}
	}
	return TickOutcome{}
}

// LoopC returns the auto-loop timer channel, or nil when no restart is
// pending. A nil channel never fires, so it is safe to select on directly.
func (ck *Clock) LoopC() <-chan time.Time {
	if ck.loopTimer == nil {
		return nil
	}
	return ck.loopTimer.C
}

// Restart rewinds to zero and resumes playing. Called when LoopC fires.
func (ck *Clock) Restart(now time.Time) {
	ck.loopTimer = nil
	ck.ctrl.SetOffset(0)
	ck.lastStep = -1
	ck.lastWall = now
	ck.ctrl.SetPlaying(true)
}

// cancelLoop stops a pending auto-restart. Always called before any state
// reset, never after.
func (ck *Clock) cancelLoop() {
	if ck.loopTimer != nil {
		ck.loopTimer.Stop()
		ck.loopTimer = nil
	}
}
