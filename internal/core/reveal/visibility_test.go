package reveal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mboven/canvass-replay/internal/core/model"
	"github.com/mboven/canvass-replay/internal/util"
)

func makeActivity(t *testing.T, date string, category model.Category, dayIndex int, revealFraction float64) model.ProcessedActivity {
	t.Helper()
	d, err := util.ParseDay(date)
	require.NoError(t, err)
	return model.ProcessedActivity{
		ActivityRecord: model.ActivityRecord{
			Date:     d,
			Category: category,
			Lat:      52.37,
			Lng:      4.89,
			Count:    1,
		},
		DayIndex:       dayIndex,
		RevealFraction: revealFraction,
	}
}

func TestIsVisible(t *testing.T) {
	p := makeActivity(t, "2026-01-02", model.CategoryHouse, 1, 0.4)

	tests := []struct {
		name      string
		dayOffset float64
		visible   bool
	}{
		{"before its day", 0.9, false},
		{"day started, before reveal point", 1.1, false},
		{"exactly at reveal point", 1.4, true},
		{"after reveal point", 1.7, true},
		{"next day", 2.0, true},
		{"far future", 30.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, IsVisible(p, tt.dayOffset))
		})
	}
}

func TestIsVisible_ZeroFractionAppearsAtDayStart(t *testing.T) {
	p := makeActivity(t, "2026-01-01", model.CategoryHouse, 0, 0.0)
	assert.True(t, IsVisible(p, 0.0))
}

func TestIsVisible_Monotonic(t *testing.T) {
	records := []model.ProcessedActivity{
		makeActivity(t, "2026-01-01", model.CategoryHouse, 0, 0.13),
		makeActivity(t, "2026-01-02", model.CategoryPoster, 1, 0.77),
		makeActivity(t, "2026-01-05", model.CategoryHouse, 4, 0.5),
	}

	// Once visible at some offset, a record must stay visible at every
	// larger offset.
	for _, p := range records {
		wasVisible := false
		for offset := 0.0; offset <= 6.0; offset += 0.01 {
			v := IsVisible(p, offset)
			if wasVisible {
				assert.True(t, v, "record flickered off at offset %v", offset)
			}
			wasVisible = wasVisible || v
		}
		assert.True(t, wasVisible)
	}
}

func TestSelectVisible_SpecScenario(t *testing.T) {
	start, _ := util.ParseDay("2026-01-01")

	a := makeActivity(t, "2026-01-01", model.CategoryHouse, 0, 0.2)
	b := makeActivity(t, "2026-01-01", model.CategoryHouse, 0, 0.8)
	c := makeActivity(t, "2026-01-02", model.CategoryPoster, 1, 0.1)
	records := []model.ProcessedActivity{a, b, c}

	cases := []struct {
		dayOffset float64
		expected  int
	}{
		{0.5, 1},  // only A (B needs >= 0.8, C is tomorrow)
		{0.9, 2},  // A and B
		{1.05, 3}, // all three
	}

	for _, tt := range cases {
		currentDate := util.AddDays(start, int(tt.dayOffset))
		visible := SelectVisible(records, currentDate, tt.dayOffset, model.FilterAll)
		assert.Len(t, visible, tt.expected, "dayOffset=%v", tt.dayOffset)
	}
}

func TestSelectVisible_CategoryFilter(t *testing.T) {
	start, _ := util.ParseDay("2026-01-01")
	records := []model.ProcessedActivity{
		makeActivity(t, "2026-01-01", model.CategoryHouse, 0, 0.1),
		makeActivity(t, "2026-01-01", model.CategoryPoster, 0, 0.2),
	}
	currentDate := start

	all := SelectVisible(records, currentDate, 0.5, model.FilterAll)
	houses := SelectVisible(records, currentDate, 0.5, model.FilterHouse)
	posters := SelectVisible(records, currentDate, 0.5, model.FilterPoster)

	assert.Len(t, all, 2)
	require.Len(t, houses, 1)
	assert.Equal(t, model.CategoryHouse, houses[0].Category)
	require.Len(t, posters, 1)
	assert.Equal(t, model.CategoryPoster, posters[0].Category)
}

func TestSelectVisible_CurrentDateGuard(t *testing.T) {
	start, _ := util.ParseDay("2026-01-01")
	// Record whose dayIndex drifted behind its calendar date.
	p := makeActivity(t, "2026-01-05", model.CategoryHouse, 0, 0.0)

	// dayOffset alone would reveal it, but the date check holds it back
	// until currentDate catches up.
	visible := SelectVisible([]model.ProcessedActivity{p}, start, 0.5, model.FilterAll)
	assert.Empty(t, visible)

	visible = SelectVisible([]model.ProcessedActivity{p}, util.AddDays(start, 4), 0.5, model.FilterAll)
	assert.Len(t, visible, 1)
}

func TestSelectVisible_EmptyInput(t *testing.T) {
	start, _ := util.ParseDay("2026-01-01")
	assert.Empty(t, SelectVisible(nil, start, 10, model.FilterAll))
}
