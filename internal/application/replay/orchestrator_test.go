package replay

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mboven/canvass-replay/internal/core/model"
	"github.com/mboven/canvass-replay/internal/presentation/display"
	"github.com/mboven/canvass-replay/internal/testing/fixtures"
)

// runningOrchestrator wires an orchestrator up to a fixed-size display the
// way Run does, without a TTY or tickers.
func runningOrchestrator(t *testing.T, days int) *Orchestrator {
	t.Helper()

	o := headlessOrchestrator(t, days)
	var buf bytes.Buffer
	o.display = display.NewTerminalDisplayWithSize(&buf, 80, 24)
	o.engine = NewEngine(o.display, o.config.RecentWindowSize)

	ds, err := o.loader.Load()
	require.NoError(t, err)
	o.installDataset(ds, nil)
	return o
}

func TestReloadDataset_KeepsPlaying(t *testing.T) {
	o := runningOrchestrator(t, 5)

	o.ctrl.SetSpeed(2)
	o.ctrl.SetOffset(2)
	o.clock.Play(time.Now())

	o.reloadDataset()

	st := o.ctrl.State()
	assert.True(t, st.Playing, "a live dataset reload must not stop unattended playback")
	assert.Equal(t, 2.0, st.Speed)
	assert.Equal(t, 2.0, st.DayOffset)
}

func TestReloadDataset_KeepsPaused(t *testing.T) {
	o := runningOrchestrator(t, 5)

	o.ctrl.SetOffset(1)
	require.False(t, o.ctrl.State().Playing)

	o.reloadDataset()

	assert.False(t, o.ctrl.State().Playing, "reload does not start a paused replay")
	assert.Equal(t, 1.0, o.ctrl.State().DayOffset)
}

func headlessOrchestrator(t *testing.T, days int) *Orchestrator {
	t.Helper()

	dir := t.TempDir()
	gen := fixtures.NewDatasetGenerator(dir)
	_, err := gen.WriteBatch("batch-001.json", fixtures.DailySpread(day("2024-03-01"), days))
	require.NoError(t, err)

	o, err := NewOrchestrator(&Config{DataDir: dir})
	require.NoError(t, err)
	return o
}

func TestRunHeadless_FullRange(t *testing.T) {
	o := headlessOrchestrator(t, 5)

	var out bytes.Buffer
	require.NoError(t, o.RunHeadless(0, &out))

	summary := out.String()
	assert.Contains(t, summary, "Replayed 2024-03-01")
	assert.Contains(t, summary, "Houses visited:")
	assert.Contains(t, summary, "posters placed:")

	// The full range reveals every record.
	assert.Equal(t, 10, o.lastResult.VisibleCount)
	assert.Equal(t, 10, o.engine.MarkerCount())
}

func TestRunHeadless_PartialRange(t *testing.T) {
	o := headlessOrchestrator(t, 10)

	var out bytes.Buffer
	require.NoError(t, o.RunHeadless(3, &out))

	st := o.ctrl.State()
	assert.GreaterOrEqual(t, st.DayOffset, 3.0)
	assert.Less(t, st.DayOffset, 4.0, "run stops shortly after the requested offset")
	assert.Less(t, o.lastResult.VisibleCount, 20)
}

func TestRunHeadless_MissingDataset(t *testing.T) {
	o, err := NewOrchestrator(&Config{DataDir: t.TempDir()})
	require.NoError(t, err)

	var out bytes.Buffer
	err = o.RunHeadless(0, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset load failed")
	assert.Empty(t, out.String())
}

func TestRunHeadless_AppliesInitialSettings(t *testing.T) {
	dir := t.TempDir()
	gen := fixtures.NewDatasetGenerator(dir)
	_, err := gen.WriteBatch("batch-001.json", fixtures.DailySpread(day("2024-03-01"), 5))
	require.NoError(t, err)

	o, err := NewOrchestrator(&Config{
		DataDir:       dir,
		InitialSpeed:  4,
		InitialFilter: model.FilterPoster,
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, o.RunHeadless(0, &out))

	st := o.ctrl.State()
	assert.Equal(t, 4.0, st.Speed)
	assert.Equal(t, model.FilterPoster, st.Filter)
	assert.Equal(t, 5, o.lastResult.VisibleCount, "only poster records pass the filter")
	assert.Zero(t, o.lastResult.HouseTotal)
}

func TestClockConfigMapping(t *testing.T) {
	o, err := NewOrchestrator(&Config{
		DataDir:                "unused",
		BaseDaysPerMillisecond: 0.01,
		UpdateIntervalDays:     0.5,
		AutoLoopPause:          2 * time.Second,
	})
	require.NoError(t, err)

	cc := o.clockConfig()
	assert.Equal(t, 0.01, cc.BaseDaysPerMillisecond)
	assert.Equal(t, 0.5, cc.UpdateIntervalDays)
	assert.Equal(t, 2*time.Second, cc.AutoLoopPause)
}
