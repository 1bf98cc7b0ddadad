package textview

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/waypoint/binding"
	graphemeutil "github.com/iw2rmb/waypoint/internal/grapheme"
)

// Config configures the view.
type Config struct {
	// Initial document text.
	Text string

	Style    Style
	ReadOnly bool

	// StyleForClass maps line display classes to styles. The built-in
	// current-line class maps to Style.CurrentLine without an entry.
	StyleForClass func(class string) (lipgloss.Style, bool)
}

type pos struct {
	row int
	col int // grapheme index
}

// Model is a Bubble Tea code view implementing binding.Editor.
//
// Model is used by pointer: the instance is the shared editor handle a
// binding.Handler holds onto.
type Model struct {
	cfg Config

	lines  []string
	cursor pos

	focused  bool
	viewport viewport.Model

	showNums   bool
	showGutter bool

	markers map[int]*binding.Marker
	classes map[int]map[string]struct{}

	clickFns  map[int]func(line int)
	changeFns map[int]func()
	nextHook  int
}

// New returns a view holding cfg.Text.
func New(cfg Config) *Model {
	m := &Model{
		cfg:       cfg,
		lines:     strings.Split(cfg.Text, "\n"),
		focused:   true,
		viewport:  viewport.New(0, 0),
		markers:   make(map[int]*binding.Marker),
		classes:   make(map[int]map[string]struct{}),
		clickFns:  make(map[int]func(int)),
		changeFns: make(map[int]func()),
	}
	m.rebuildContent()
	return m
}

func (m *Model) Init() tea.Cmd { return nil }

// SetSize resizes the view.
func (m *Model) SetSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.viewport.Width = width
	m.viewport.Height = height
	m.rebuildContent()
	m.followCursor()
}

func (m *Model) Focus()        { m.focused = true; m.rebuildContent() }
func (m *Model) Blur()         { m.focused = false; m.rebuildContent() }
func (m *Model) Focused() bool { return m.focused }

func (m *Model) View() string { return m.viewport.View() }

// Text returns the full document text.
func (m *Model) Text() string { return strings.Join(m.lines, "\n") }

// LineCount returns the number of document lines.
func (m *Model) LineCount() int { return len(m.lines) }

// Line returns the text of the 0-indexed line, or "" out of range.
func (m *Model) Line(line int) string {
	if line < 0 || line >= len(m.lines) {
		return ""
	}
	return m.lines[line]
}

// CursorRow returns the 0-indexed cursor row.
func (m *Model) CursorRow() int { return m.cursor.row }

// SetGutterMarker places or, with nil, removes the marker on line.
func (m *Model) SetGutterMarker(line int, marker *binding.Marker) {
	if line < 0 || line >= len(m.lines) {
		return
	}
	if marker == nil {
		delete(m.markers, line)
	} else {
		m.markers[line] = marker
	}
	m.rebuildContent()
}

// Marker returns the marker on line, or nil.
func (m *Model) Marker(line int) *binding.Marker { return m.markers[line] }

// EachLine visits every document line in order.
func (m *Model) EachLine(fn func(line int)) {
	for i := range m.lines {
		fn(i)
	}
}

// AddLineClass applies a display class to line.
func (m *Model) AddLineClass(line int, class string) {
	if line < 0 || line >= len(m.lines) || class == "" {
		return
	}
	if m.classes[line] == nil {
		m.classes[line] = make(map[string]struct{})
	}
	m.classes[line][class] = struct{}{}
	m.rebuildContent()
}

// RemoveLineClass removes a display class from line.
func (m *Model) RemoveLineClass(line int, class string) {
	set := m.classes[line]
	if set == nil {
		return
	}
	if _, ok := set[class]; !ok {
		return
	}
	delete(set, class)
	if len(set) == 0 {
		delete(m.classes, line)
	}
	m.rebuildContent()
}

// SetShowLineNumbers toggles the line-number gutter.
func (m *Model) SetShowLineNumbers(show bool) {
	m.showNums = show
	m.rebuildContent()
}

// SetShowBreakpointGutter toggles the marker gutter.
func (m *Model) SetShowBreakpointGutter(show bool) {
	m.showGutter = show
	m.rebuildContent()
}

// OnGutterClick registers a marker-gutter click listener.
func (m *Model) OnGutterClick(fn func(line int)) (remove func()) {
	id := m.nextHook
	m.nextHook++
	m.clickFns[id] = fn
	return func() { delete(m.clickFns, id) }
}

// OnChange registers a document change listener.
func (m *Model) OnChange(fn func()) (remove func()) {
	id := m.nextHook
	m.nextHook++
	m.changeFns[id] = fn
	return func() { delete(m.changeFns, id) }
}

// SetText replaces the document, dropping markers and classes that fall
// past the new end.
func (m *Model) SetText(text string) {
	m.lines = strings.Split(text, "\n")
	for line := range m.markers {
		if line >= len(m.lines) {
			delete(m.markers, line)
		}
	}
	for line := range m.classes {
		if line >= len(m.lines) {
			delete(m.classes, line)
		}
	}
	m.clampCursor()
	m.rebuildContent()
	m.notifyChange()
}

func (m *Model) notifyChange() {
	for _, fn := range m.changeFns {
		fn()
	}
}

func (m *Model) fireGutterClick(line int) {
	for _, fn := range m.clickFns {
		fn(line)
	}
}

// shiftLineState moves markers and classes on rows >= from by delta,
// keeping gutter state attached to its line across insertions and
// deletions.
func (m *Model) shiftLineState(from, delta int) {
	if delta == 0 {
		return
	}
	markers := make(map[int]*binding.Marker, len(m.markers))
	for line, marker := range m.markers {
		if line >= from {
			line += delta
		}
		if line >= 0 && line < len(m.lines) {
			markers[line] = marker
		}
	}
	m.markers = markers

	classes := make(map[int]map[string]struct{}, len(m.classes))
	for line, set := range m.classes {
		if line >= from {
			line += delta
		}
		if line >= 0 && line < len(m.lines) {
			classes[line] = set
		}
	}
	m.classes = classes
}

func (m *Model) clampCursor() {
	if m.cursor.row < 0 {
		m.cursor.row = 0
	}
	if m.cursor.row >= len(m.lines) {
		m.cursor.row = len(m.lines) - 1
	}
	max := graphemeutil.Count(m.lines[m.cursor.row])
	if m.cursor.col < 0 {
		m.cursor.col = 0
	}
	if m.cursor.col > max {
		m.cursor.col = max
	}
}

func (m *Model) followCursor() {
	h := m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
	if h <= 0 {
		return
	}
	y := m.viewport.YOffset
	if m.cursor.row < y {
		m.viewport.SetYOffset(m.cursor.row)
		return
	}
	if m.cursor.row >= y+h {
		m.viewport.SetYOffset(m.cursor.row - h + 1)
	}
}
