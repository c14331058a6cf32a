package transform

import (
	"math"
	"sort"

	"github.com/mboven/canvass-replay/internal/core/model"
)

// gridDecimals rounds coordinates to 3 decimal places, roughly a 111 m grid
// in latitude. Matches the marker clustering granularity downstream.
const gridDecimals = 3

// SnapToGrid rounds a coordinate onto the aggregation grid.
func SnapToGrid(lat, lng float64) (float64, float64) {
	factor := math.Pow(10, gridDecimals)
	return math.Round(lat*factor) / factor, math.Round(lng*factor) / factor
}

// cellKey identifies an aggregation bucket.
type cellKey struct {
	date     string
	category model.Category
	lat      float64
	lng      float64
}

// Aggregate merges records sharing a day, category, and grid cell by summing
// their counts. Output is sorted by date, category, then coordinates so the
// sanitized file is stable across runs.
func Aggregate(records []model.ActivityRecord) []model.ActivityRecord {
	cells := make(map[cellKey]*model.ActivityRecord)

	for _, r := range records {
		lat, lng := SnapToGrid(r.Lat, r.Lng)
		key := cellKey{
			date:     r.Date.Format("2006-01-02"),
			category: r.Category,
			lat:      lat,
			lng:      lng,
		}

		if cell, ok := cells[key]; ok {
			cell.Count += r.Count
			continue
		}
		merged := r
		merged.Lat = lat
		merged.Lng = lng
		cells[key] = &merged
	}

	result := make([]model.ActivityRecord, 0, len(cells))
	for _, cell := range cells {
		result = append(result, *cell)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Lat != b.Lat {
			return a.Lat < b.Lat
		}
		return a.Lng < b.Lng
	})

	return result
}
