package transform

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/mboven/canvass-replay/internal/core/model"
	"github.com/mboven/canvass-replay/internal/util"
)

// OutputRecord is the sanitized dataset record shape.
type OutputRecord struct {
	Date  string  `json:"date"`
	Type  string  `json:"type"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Count int     `json:"count"`
}

// Transformer runs the export sanitization pipeline.
type Transformer struct {
	inputDir   string
	outputPath string
}

// New creates a transformer reading raw exports from inputDir and writing
// the sanitized dataset to outputPath.
func New(inputDir, outputPath string) *Transformer {
	return &Transformer{
		inputDir:   inputDir,
		outputPath: outputPath,
	}
}

// Run executes scan, validate, blur, aggregate, and write. A missing input
// directory or unparseable export file fails the run; individual bad records
// only log warnings.
func (t *Transformer) Run() error {
	files, err := t.scanExports()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no export files found in %s", t.inputDir)
	}

	var raw []model.RawActivity
	for _, file := range files {
		records, err := t.readExport(file)
		if err != nil {
			return err
		}
		raw = append(raw, records...)
	}

	validated := t.validate(raw)
	if len(validated) == 0 {
		return fmt.Errorf("no valid records in %d export files", len(files))
	}

	blurred := make([]model.ActivityRecord, len(validated))
	for i, r := range validated {
		blurred[i] = r
		blurred[i].Lat, blurred[i].Lng = Blur(r.Lat, r.Lng)
	}

	aggregated := Aggregate(blurred)

	if err := t.write(aggregated); err != nil {
		return err
	}

	util.LogInfo(fmt.Sprintf("Sanitized %d raw records into %d grid cells (%s)",
		len(validated), len(aggregated), t.outputPath))
	return nil
}

// scanExports walks the input directory collecting .json export files in
// stable name order.
func (t *Transformer) scanExports() ([]string, error) {
	start := time.Now()
	if _, err := os.Stat(t.inputDir); err != nil {
		return nil, fmt.Errorf("input directory %s: %w", t.inputDir, err)
	}

	var files []string
	err := filepath.Walk(t.inputDir, func(path string, info os.FileInfo, err error) error {
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
	util.LogDebug(fmt.Sprintf("Export scan completed: duration %v, found %d files",
		time.Since(start), len(files)))
	return files, nil
}

// readExport parses one raw export file.
func (t *Transformer) readExport(path string) ([]model.RawActivity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export %s: %w", path, err)
	}

	var records []model.RawActivity
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse export %s: %w", path, err)
	}
	return records, nil
}

// validate filters raw export records, warning on each drop.
func (t *Transformer) validate(raw []model.RawActivity) []model.ActivityRecord {
	records := make([]model.ActivityRecord, 0, len(raw))

	for i, r := range raw {
		if r.Lat == nil || r.Lng == nil {
			util.LogWarn(fmt.Sprintf("Skipping export record %d (%s): missing coordinates", i, r.Date))
			continue
		}
		category, ok := model.ParseCategory(r.Type)
		if !ok {
			util.LogWarn(fmt.Sprintf("Skipping export record %d (%s): unsupported category %q", i, r.Date, r.Type))
			continue
		}
		date, err := util.ParseDay(r.Date)
		if err != nil {
			util.LogWarn(fmt.Sprintf("Skipping export record %d: bad date %q: %v", i, r.Date, err))
			continue
		}

		count := r.Count
		if count < 1 {
			count = 1
		}

		records = append(records, model.ActivityRecord{
			Date:     date,
			Category: category,
			Lat:      *r.Lat,
			Lng:      *r.Lng,
			Count:    count,
		})
	}

	return records
}

// Encode marshals sanitized records into the dataset file layout.
func Encode(records []model.ActivityRecord) ([]byte, error) {
	out := make([]OutputRecord, len(records))
	for i, r := range records {
		out[i] = OutputRecord{
			Date:  util.FormatDay(r.Date),
			Type:  string(r.Category),
			Lat:   r.Lat,
			Lng:   r.Lng,
			Count: r.Count,
		}
	}
	return sonic.MarshalIndent(out, "", "  ")
}

// write marshals the sanitized records to the output path.
func (t *Transformer) write(records []model.ActivityRecord) error {
	data, err := Encode(records)
	if err != nil {
		return fmt.Errorf("failed to marshal sanitized dataset: %w", err)
	}

	if dir := filepath.Dir(t.outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(t.outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write sanitized dataset: %w", err)
	}
	return nil
}
