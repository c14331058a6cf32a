package replay

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mboven/canvass-replay/internal/core/activity"
	"github.com/mboven/canvass-replay/internal/core/marker"
	"github.com/mboven/canvass-replay/internal/core/model"
	"github.com/mboven/canvass-replay/internal/core/playback"
	"github.com/mboven/canvass-replay/internal/core/reveal"
	"github.com/mboven/canvass-replay/internal/testing/fixtures"
)

// countingRenderer tracks visuals without drawing anything.
type countingRenderer struct {
	created int
	removed int
}

func (r *countingRenderer) CreateVisual(model.ProcessedActivity, marker.Variant, marker.Style) marker.Handle {
	r.created++
	return new(struct{})
}
func (r *countingRenderer) UpdateVisual(marker.Handle, marker.Variant, marker.Style) {}
func (r *countingRenderer) RemoveVisual(marker.Handle)                               { r.removed++ }
func (r *countingRenderer) SetZOrder(marker.Handle, marker.Variant)                  {}

func loadedEngine(t *testing.T, days int) (*Engine, *playback.Controller, *countingRenderer) {
	t.Helper()

	raw := fixtures.DailySpread(day("2024-03-01"), days)
	start, end, ok := activity.Bounds(raw)
	require.True(t, ok)
	records := activity.Normalize(raw, start)
	require.Len(t, records, days*2)

	renderer := &countingRenderer{}
	engine := NewEngine(renderer, 5)
	engine.SetRecords(records)

	ctrl := playback.NewController(start, end)
	return engine, ctrl, renderer
}

func TestRecompute_BeforeLoadIsAnError(t *testing.T) {
	engine := NewEngine(&countingRenderer{}, 5)
	_, err := engine.Recompute(playback.State{})
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestRecompute_GrowsWithOffset(t *testing.T) {
	engine, ctrl, _ := loadedEngine(t, 10)

	var prev int
	for offset := 0.0; offset <= 10; offset += 0.5 {
		ctrl.SetOffset(offset)
		result, err := engine.Recompute(ctrl.State())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.VisibleCount, prev,
			"visible set must not shrink during forward playback")
		prev = result.VisibleCount
	}
	assert.Equal(t, 20, prev, "full range reveals every record")
}

func TestRecompute_RegistryMatchesVisibleSet(t *testing.T) {
	engine, ctrl, _ := loadedEngine(t, 10)

	for _, offset := range []float64{0, 2.5, 7, 10, 3, 0.5} {
		ctrl.SetOffset(offset)
		engine.Invalidate()
		result, err := engine.Recompute(ctrl.State())
		require.NoError(t, err)

		st := ctrl.State()
		visible := reveal.SelectVisible(engineRecords(engine), st.CurrentDate, st.DayOffset, st.Filter)
		wantKeys := make([]string, 0, len(visible))
		for _, p := range visible {
			wantKeys = append(wantKeys, activity.IdentityKey(p))
		}
		sort.Strings(wantKeys)

		assert.Equal(t, wantKeys, engine.MarkerKeys(),
			"registry keys must equal visible-set keys at offset %v", offset)
		assert.Equal(t, len(visible), result.VisibleCount)
	}
}

// engineRecords recomputes expectations from the engine's own dataset.
func engineRecords(e *Engine) []model.ProcessedActivity {
	return e.records
}

func TestRecompute_RecentWindowBound(t *testing.T) {
	engine, ctrl, _ := loadedEngine(t, 10)

	ctrl.SetOffset(1)
	result, err := engine.Recompute(ctrl.State())
	require.NoError(t, err)
	assert.Equal(t, result.VisibleCount, result.RecentCount,
		"a visible set smaller than the window is entirely recent")

	ctrl.SetOffset(10)
	result, err = engine.Recompute(ctrl.State())
	require.NoError(t, err)
	assert.Equal(t, 5, result.RecentCount, "recent count is capped at the window size")
	assert.Equal(t, 20, result.VisibleCount)
}

func TestRecompute_CategoryFilter(t *testing.T) {
	engine, ctrl, _ := loadedEngine(t, 10)
	ctrl.SetOffset(10)

	result, err := engine.Recompute(ctrl.State())
	require.NoError(t, err)
	assert.NotZero(t, result.HouseTotal)
	assert.NotZero(t, result.PosterTotal)

	ctrl.SetFilter(model.FilterHouse)
	engine.Invalidate()
	result, err = engine.Recompute(ctrl.State())
	require.NoError(t, err)
	assert.Equal(t, 10, result.VisibleCount)
	assert.NotZero(t, result.HouseTotal)
	assert.Zero(t, result.PosterTotal, "filtered category contributes nothing")
	assert.Equal(t, 10, engine.MarkerCount(), "filtered-out markers are removed")
}

func TestSetRecords_ResetsMarkersAndCache(t *testing.T) {
	engine, ctrl, renderer := loadedEngine(t, 10)
	ctrl.SetOffset(10)
	_, err := engine.Recompute(ctrl.State())
	require.NoError(t, err)
	require.Equal(t, 20, engine.MarkerCount())

	raw := fixtures.DailySpread(day("2024-05-01"), 3)
	start, _, ok := activity.Bounds(raw)
	require.True(t, ok)
	engine.SetRecords(activity.Normalize(raw, start))

	assert.Zero(t, engine.MarkerCount(), "reload tears down all markers")
	assert.Equal(t, 20, renderer.removed)
}

func TestRecompute_CountTallies(t *testing.T) {
	engine, ctrl, _ := loadedEngine(t, 3)
	ctrl.SetOffset(3)

	result, err := engine.Recompute(ctrl.State())
	require.NoError(t, err)

	// DailySpread emits house counts 1,2,3 and poster counts 1,1,1.
	assert.Equal(t, 6, result.HouseTotal)
	assert.Equal(t, 3, result.PosterTotal)
}
