package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/mboven/canvass-replay/internal/core/activity"
	"github.com/mboven/canvass-replay/internal/core/model"
	"github.com/mboven/canvass-replay/internal/util"
)

// Dataset is a fully loaded and normalized activity dataset.
type Dataset struct {
	Records   []model.ProcessedActivity
	StartDate time.Time
	EndDate   time.Time
}

// DatasetLoader reads sanitized dataset batches from a directory.
type DatasetLoader struct {
	dataDir string
}

// NewDatasetLoader creates a loader for the given directory.
func NewDatasetLoader(dataDir string) *DatasetLoader {
	return &DatasetLoader{dataDir: dataDir}
}

// Load scans the data directory for batch files, concatenates them in file
// name order, and normalizes the result. A dataset with no usable records
// is an error: the replay has nothing to show.
func (l *DatasetLoader) Load() (*Dataset, error) {
	files, err := l.scan()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no dataset files found in %s", l.dataDir)
	}

	var raw []model.RawActivity
	for _, file := range files {
		batch, err := l.readBatch(file)
		if err != nil {
			return nil, err
		}
		raw = append(raw, batch...)
	}

	// Bounds only counts records that survive normalization, so a usable
	// range guarantees a non-empty normalized dataset.
	start, end, ok := activity.Bounds(raw)
	if !ok {
		return nil, fmt.Errorf("no usable records in %d dataset files", len(files))
	}

	records := activity.Normalize(raw, start)

	util.LogInfo(fmt.Sprintf("Loaded %d records from %d files (%s to %s)",
		len(records), len(files), util.FormatDay(start), util.FormatDay(end)))

	return &Dataset{
		Records:   records,
		StartDate: start,
		EndDate:   end,
	}, nil
}

// scan collects the batch files under the data directory.
func (l *DatasetLoader) scan() ([]string, error) {
	start := time.Now()
	if _, err := os.Stat(l.dataDir); err != nil {
		return nil, fmt.Errorf("data directory %s: %w", l.dataDir, err)
	}

	var files []string
	err := filepath.Walk(l.dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip path (error): %s - %v", path, err))
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	util.LogDebug(fmt.Sprintf("Dataset scan completed: duration %v, found %d files",
		time.Since(start), len(files)))
	return files, nil
}

// readBatch parses one dataset batch file.
func (l *DatasetLoader) readBatch(path string) ([]model.RawActivity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	var batch []model.RawActivity
	if err := sonic.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return batch, nil
}
