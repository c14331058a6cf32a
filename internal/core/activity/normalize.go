// Package activity turns raw dataset records into the processed form the
// reveal pipeline works with, and derives the identity keys that tie records
// to persistent markers.
package activity

import (
	"fmt"
	"time"

	"github.com/mboven/canvass-replay/internal/core/model"
	"github.com/mboven/canvass-replay/internal/core/random"
	"github.com/mboven/canvass-replay/internal/util"
)

// Normalize converts raw records into processed activities, attaching the
// day index and reveal fraction defined by the dataset start date. Records
// with missing coordinates, an unparseable date, or an unrecognized category
// are dropped with a warning; the load itself never fails here. Output order
// matches input order.
func Normalize(raw []model.RawActivity, datasetStart time.Time) []model.ProcessedActivity {
	processed := make([]model.ProcessedActivity, 0, len(raw))

	for i, r := range raw {
		if r.Lat == nil || r.Lng == nil {
			util.LogWarn(fmt.Sprintf("Dropping record %d (%s): missing coordinates", i, r.Date))
			continue
		}

		category, ok := model.ParseCategory(r.Type)
		if !ok {
			util.LogWarn(fmt.Sprintf("Dropping record %d (%s): unrecognized category %q", i, r.Date, r.Type))
			continue
		}

		date, err := util.ParseDay(r.Date)
		if err != nil {
			util.LogWarn(fmt.Sprintf("Dropping record %d: bad date %q: %v", i, r.Date, err))
			continue
		}

		count := r.Count
		if count < 1 {
			count = 1
		}

		processed = append(processed, model.ProcessedActivity{
			ActivityRecord: model.ActivityRecord{
				Date:     date,
				Category: category,
				Lat:      *r.Lat,
				Lng:      *r.Lng,
				Count:    count,
			},
			DayIndex:       util.DayIndex(date, datasetStart),
			RevealFraction: revealFraction(i, *r.Lat, *r.Lng),
		})
	}

	return processed
}

// revealFraction derives the stable in-day reveal point for a record from
// its position in the input list and its coordinates. The seed must depend
// only on those inputs so that reloading the same dataset reproduces the
// same reveal ordering.
func revealFraction(index int, lat, lng float64) float64 {
	return random.Value(float64(index) + lat*10 + lng*10)
}

// IdentityKey derives the registry key for a processed activity. Records
// sharing a day, category, coordinate bucket, and count intentionally
// collapse to one key: they are visually indistinguishable and merge into a
// single marker.
func IdentityKey(p model.ProcessedActivity) string {
	return fmt.Sprintf("%s|%s|%.5f|%.5f|%d",
		util.FormatDay(p.Date), p.Category, p.Lat, p.Lng, p.Count)
}

// Bounds scans raw records for the earliest and latest dates among those
// that would survive normalization. Records Normalize drops must not define
// the dataset start: a malformed record with an early date would otherwise
// shift every day index. ok is false when no usable record remains.
func Bounds(raw []model.RawActivity) (start, end time.Time, ok bool) {
	for _, r := range raw {
		if r.Lat == nil || r.Lng == nil {
			continue
		}
		if _, valid := model.ParseCategory(r.Type); !valid {
			continue
		}
		date, err := util.ParseDay(r.Date)
		if err != nil {
			continue
		}
		if !ok || date.Before(start) {
			start = date
		}
		if !ok || date.After(end) {
			end = date
		}
		ok = true
	}
	return start, end, ok
}
