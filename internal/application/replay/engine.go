package replay

import (
	"errors"

	"github.com/mboven/canvass-replay/internal/core/marker"
	"github.com/mboven/canvass-replay/internal/core/model"
	"github.com/mboven/canvass-replay/internal/core/playback"
	"github.com/mboven/canvass-replay/internal/core/reveal"
)

// ErrNoDataset is returned when a recompute is requested before a dataset
// has been loaded. That is a programming error, not a runtime condition.
var ErrNoDataset = errors.New("recompute before dataset load")

// CycleResult summarizes one recompute cycle for the display layer.
type CycleResult struct {
	VisibleCount int
	RecentCount  int

	// HouseTotal and PosterTotal sum the counts of visible records per
	// category, for the stats readout.
	HouseTotal  int
	PosterTotal int
}

// Engine runs the select, classify, reconcile pipeline over the loaded
// dataset. The classifier cache and the marker registry are owned here;
// nothing outside the engine touches either.
type Engine struct {
	records    []model.ProcessedActivity
	classifier *reveal.Classifier
	reconciler *marker.Reconciler
	style      marker.Style
}

// NewEngine creates an engine drawing through the given renderer.
func NewEngine(renderer marker.Renderer, recentWindowSize int) *Engine {
	return &Engine{
		classifier: reveal.NewClassifier(recentWindowSize),
		reconciler: marker.NewReconciler(renderer),
		style:      marker.Style{Scale: 1},
	}
}

// SetRecords installs a freshly loaded dataset. Existing markers are torn
// down and the recent-window cache is invalidated: the visible set may have
// changed arbitrarily.
func (e *Engine) SetRecords(records []model.ProcessedActivity) {
	e.records = records
	e.reconciler.Reset()
	e.classifier.Invalidate()
}

// Invalidate forces the next classification to recompute. Called at every
// site where the visible set can shrink: backward scrub, filter change,
// dataset reload.
func (e *Engine) Invalidate() {
	e.classifier.Invalidate()
}

// SetStyle updates the presentation style applied on subsequent cycles.
func (e *Engine) SetStyle(style marker.Style) {
	e.style = style
}

// Style returns the current presentation style.
func (e *Engine) Style() marker.Style {
	return e.style
}

// Recompute runs one full cycle against the given timeline state: selection,
// classification, and reconciliation, in that order.
func (e *Engine) Recompute(st playback.State) (CycleResult, error) {
	if e.records == nil {
		return CycleResult{}, ErrNoDataset
	}

	visible := reveal.SelectVisible(e.records, st.CurrentDate, st.DayOffset, st.Filter)
	recent := e.classifier.Classify(visible)
	e.reconciler.Reconcile(visible, recent, e.style)

	result := CycleResult{
		VisibleCount: len(visible),
		RecentCount:  len(recent),
	}
	for _, p := range visible {
		switch p.Category {
		case model.CategoryHouse:
			result.HouseTotal += p.Count
		case model.CategoryPoster:
			result.PosterTotal += p.Count
		}
	}
	return result, nil
}

// MarkerCount reports the current registry size.
func (e *Engine) MarkerCount() int {
	return e.reconciler.Len()
}

// MarkerKeys returns the sorted identity keys currently tracked.
func (e *Engine) MarkerKeys() []string {
	return e.reconciler.Keys()
}
