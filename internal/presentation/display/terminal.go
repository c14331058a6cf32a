// Package display renders the replay state to a terminal. It doubles as the
// marker renderer: markers are projected onto a character grid scaled to the
// terminal size.
package display

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/mboven/canvass-replay/internal/core/marker"
	"github.com/mboven/canvass-replay/internal/core/model"
)

// Frame carries everything the display needs for one render. It mirrors the
// playback state and cycle result without importing the application layer,
// which would cycle.
type Frame struct {
	StartDate   string
	EndDate     string
	CurrentDate string
	DayOffset   float64
	TotalDays   int
	Playing     bool
	Speed       float64
	Filter      string

	VisibleCount int
	RecentCount  int
	HouseTotal   int
	PosterTotal  int
}

// cellMarker is the visual handle the display hands to the reconciler.
type cellMarker struct {
	lat, lng float64
	category model.Category
	variant  marker.Variant
	style    marker.Style
}

// TerminalDisplay draws the replay into an ANSI terminal.
type TerminalDisplay struct {
	mu sync.Mutex

	out               io.Writer
	width             int
	height            int
	fixedSize         bool
	inAlternateScreen bool

	markers map[*cellMarker]struct{}
}

// NewTerminalDisplay creates a display writing to stdout, sized from the
// terminal.
func NewTerminalDisplay() *TerminalDisplay {
	return &TerminalDisplay{
		out:     os.Stdout,
		markers: make(map[*cellMarker]struct{}),
	}
}

// NewTerminalDisplayWithSize creates a display with a fixed size writing to
// out. Used by tests and non-TTY environments.
func NewTerminalDisplayWithSize(out io.Writer, width, height int) *TerminalDisplay {
	return &TerminalDisplay{
		out:       out,
		width:     width,
		height:    height,
		fixedSize: true,
		markers:   make(map[*cellMarker]struct{}),
	}
}

// CreateVisual registers a marker on the grid.
func (d *TerminalDisplay) CreateVisual(p model.ProcessedActivity, variant marker.Variant, style marker.Style) marker.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := &cellMarker{
		lat:      p.Lat,
		lng:      p.Lng,
		category: p.Category,
		variant:  variant,
		style:    style,
	}
	d.markers[m] = struct{}{}
	return m
}

// UpdateVisual refreshes a marker's variant and style in place.
func (d *TerminalDisplay) UpdateVisual(h marker.Handle, variant marker.Variant, style marker.Style) {
	m, ok := h.(*cellMarker)
	if !ok || m == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	m.variant = variant
	m.style = style
}

// RemoveVisual drops a marker from the grid.
func (d *TerminalDisplay) RemoveVisual(h marker.Handle) {
	m, ok := h.(*cellMarker)
	if !ok || m == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.markers, m)
}

// SetZOrder is satisfied structurally: recent markers are drawn after
// cumulative ones in the paint pass, so they always sit on top.
func (d *TerminalDisplay) SetZOrder(h marker.Handle, variant marker.Variant) {
	m, ok := h.(*cellMarker)
	if !ok || m == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	m.variant = variant
}

// EnterAlternateScreen switches to the alternate screen buffer.
func (d *TerminalDisplay) EnterAlternateScreen() {
	if d.fixedSize {
		return
	}
	fmt.Fprint(d.out, "\033[?1049h\033[2J\033[H\033[?25l")
	d.inAlternateScreen = true
}

// ExitAlternateScreen restores the normal screen buffer.
func (d *TerminalDisplay) ExitAlternateScreen() {
	if !d.inAlternateScreen {
		return
	}
	fmt.Fprint(d.out, "\033[?25h\033[?1049l")
	d.inAlternateScreen = false
}

// Render draws one frame: header, progress bar, marker grid, footer.
func (d *TerminalDisplay) Render(frame Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()

	width, height := d.size()
	var b strings.Builder

	if d.inAlternateScreen {
		b.WriteString("\033[H")
	}

	d.writeHeader(&b, frame, width)
	d.writeProgress(&b, frame, width)
	d.writeGrid(&b, width, height-4)
	d.writeFooter(&b, width)

	fmt.Fprint(d.out, b.String())
}

func (d *TerminalDisplay) size() (int, int) {
	if d.fixedSize {
		return d.width, d.height
	}
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return 80, 24
	}
	return width, height
}

func (d *TerminalDisplay) writeHeader(b *strings.Builder, frame Frame, width int) {
	state := "PAUSED"
	if frame.Playing {
		state = "PLAYING"
	}
	left := fmt.Sprintf(" %s  %s  x%.1f  filter:%s", frame.CurrentDate, state, frame.Speed, frame.Filter)
	right := fmt.Sprintf("visible %d (%d recent)  houses %d  posters %d ",
		frame.VisibleCount, frame.RecentCount, frame.HouseTotal, frame.PosterTotal)
	b.WriteString(padBetween(left, right, width))
	b.WriteString("\r\n")
}

func (d *TerminalDisplay) writeProgress(b *strings.Builder, frame Frame, width int) {
	barWidth := width - len(frame.StartDate) - len(frame.EndDate) - 4
	if barWidth < 10 {
		barWidth = 10
	}
	progress := 0.0
	if frame.TotalDays > 0 {
		progress = frame.DayOffset / float64(frame.TotalDays)
	}
	filled := int(progress * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)
	fmt.Fprintf(b, " %s %s %s \r\n", frame.StartDate, bar, frame.EndDate)
}

// writeGrid paints the markers into a lat/lng-scaled character grid.
// Cumulative markers first, recent markers after so they overdraw.
func (d *TerminalDisplay) writeGrid(b *strings.Builder, width, height int) {
	if height < 1 {
		height = 1
	}
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	minLat, maxLat, minLng, maxLng := d.bounds()

	paint := func(m *cellMarker) {
		row, col := project(m.lat, m.lng, minLat, maxLat, minLng, maxLng, width, height)
		grid[row][col] = markerRune(m)
	}
	for m := range d.markers {
		if m.variant == marker.VariantCumulative {
			paint(m)
		}
	}
	for m := range d.markers {
		if m.variant == marker.VariantRecent {
			paint(m)
		}
	}

	for _, row := range grid {
		b.WriteString(string(row))
		b.WriteString("\r\n")
	}
}

func (d *TerminalDisplay) writeFooter(b *strings.Builder, width int) {
	help := " space play/pause  ←/→ scrub  0 rewind  1-4 speed  f filter  e emphasis  q quit"
	b.WriteString(runewidth.Truncate(help, width, "…"))
	b.WriteString("\r\n")
}

// bounds computes the coordinate envelope of the current markers.
func (d *TerminalDisplay) bounds() (minLat, maxLat, minLng, maxLng float64) {
	minLat, minLng = math.Inf(1), math.Inf(1)
	maxLat, maxLng = math.Inf(-1), math.Inf(-1)
	for m := range d.markers {
		minLat = math.Min(minLat, m.lat)
		maxLat = math.Max(maxLat, m.lat)
		minLng = math.Min(minLng, m.lng)
		maxLng = math.Max(maxLng, m.lng)
	}
	if len(d.markers) == 0 {
		return 0, 1, 0, 1
	}
	return minLat, maxLat, minLng, maxLng
}

// project maps a coordinate into grid cell indices. Latitude grows upward,
// rows grow downward.
func project(lat, lng, minLat, maxLat, minLng, maxLng float64, width, height int) (row, col int) {
	latSpan := maxLat - minLat
	lngSpan := maxLng - minLng
	if latSpan <= 0 {
		latSpan = 1
	}
	if lngSpan <= 0 {
		lngSpan = 1
	}

	row = int((maxLat - lat) / latSpan * float64(height-1))
	col = int((lng - minLng) / lngSpan * float64(width-1))

	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= width {
		col = width - 1
	}
	return row, col
}

// markerRune picks the glyph for a marker. Emphasis swaps the recent glyphs
// for heavier ones.
func markerRune(m *cellMarker) rune {
	recent := m.variant == marker.VariantRecent
	switch m.category {
	case model.CategoryHouse:
		if recent && m.style.Emphasis {
			return '●'
		}
		if recent {
			return '◆'
		}
		return '·'
	case model.CategoryPoster:
		if recent && m.style.Emphasis {
			return '▲'
		}
		if recent {
			return '△'
		}
		return '^'
	}
	return '?'
}

// padBetween left-aligns left and right-aligns right within width,
// truncating left if the two collide.
func padBetween(left, right string, width int) string {
	leftWidth := runewidth.StringWidth(left)
	rightWidth := runewidth.StringWidth(right)
	gap := width - leftWidth - rightWidth
	if gap < 1 {
		left = runewidth.Truncate(left, width-rightWidth-2, "…")
		gap = width - runewidth.StringWidth(left) - rightWidth
		if gap < 1 {
			gap = 1
		}
	}
	return left + strings.Repeat(" ", gap) + right
}
