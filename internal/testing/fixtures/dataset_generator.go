// Package fixtures generates deterministic activity datasets for tests.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/mboven/canvass-replay/internal/core/model"
	"github.com/mboven/canvass-replay/internal/util"
)

// DatasetGenerator writes sanitized dataset batch files for tests.
type DatasetGenerator struct {
	baseDir string
}

// NewDatasetGenerator creates a generator writing under baseDir.
func NewDatasetGenerator(baseDir string) *DatasetGenerator {
	return &DatasetGenerator{baseDir: baseDir}
}

// Raw builds one raw record with both coordinates present.
func Raw(date string, typ string, lat, lng float64, count int) model.RawActivity {
	return model.RawActivity{
		Date:  date,
		Type:  typ,
		Lat:   &lat,
		Lng:   &lng,
		Count: count,
	}
}

// DailySpread generates one house and one poster record per day over days
// consecutive days starting at start. Coordinates fan out deterministically
// from a fixed origin so every record lands on a distinct location.
func DailySpread(start time.Time, days int) []model.RawActivity {
	var records []model.RawActivity
	for d := 0; d < days; d++ {
		date := util.FormatDay(util.AddDays(start, d))
		records = append(records,
			Raw(date, string(model.CategoryHouse), 52.20+float64(d)*0.01, 21.00+float64(d)*0.01, 1+d%3),
			Raw(date, string(model.CategoryPoster), 52.30+float64(d)*0.01, 21.10+float64(d)*0.01, 1),
		)
	}
	return records
}

// WriteBatch writes one dataset batch file named name under the base
// directory and returns its path.
func (g *DatasetGenerator) WriteBatch(name string, records []model.RawActivity) (string, error) {
	if err := os.MkdirAll(g.baseDir, 0755); err != nil {
		return "", err
	}

	data, err := sonic.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode batch %s: %w", name, err)
	}

	path := filepath.Join(g.baseDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
