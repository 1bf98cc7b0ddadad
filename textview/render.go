package textview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/iw2rmb/waypoint/binding"
	graphemeutil "github.com/iw2rmb/waypoint/internal/grapheme"
)

const (
	markerColWidth = 2
	tabWidth       = 4
)

func (m *Model) rebuildContent() {
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) renderContent() string {
	digits := gutterDigits(len(m.lines))

	out := make([]string, 0, len(m.lines))
	for row, line := range m.lines {
		var sb strings.Builder

		if m.showGutter {
			sb.WriteString(m.renderMarkerCell(row))
		}
		if m.showNums {
			numStyle := m.cfg.Style.LineNum
			if m.focused && row == m.cursor.row {
				numStyle = m.cfg.Style.LineNumActive
			}
			sb.WriteString(numStyle.Render(fmt.Sprintf("%*d", digits, row+1)))
			sb.WriteString(m.cfg.Style.Gutter.Render(" "))
		}

		sb.WriteString(m.renderLine(row, line))
		out = append(out, sb.String())
	}

	return strings.Join(out, "\n")
}

func (m *Model) renderMarkerCell(row int) string {
	marker := m.markers[row]
	if marker == nil {
		return m.cfg.Style.Gutter.Render(strings.Repeat(" ", markerColWidth))
	}
	glyph, style := MarkerGlyph, m.cfg.Style.Marker
	if !marker.Verified {
		glyph, style = MarkerGlyphUnverified, m.cfg.Style.MarkerUnverified
	}
	return style.Render(glyph + " ")
}

func (m *Model) renderLine(row int, line string) string {
	base := m.lineStyle(row)
	hasCursor := m.focused && row == m.cursor.row

	var sb strings.Builder
	cell := 0
	for col, gr := range graphemeutil.Split(line) {
		text := gr
		if gr == "\t" {
			text = strings.Repeat(" ", tabWidth-cell%tabWidth)
		}
		style := base
		if hasCursor && col == m.cursor.col {
			style = m.cfg.Style.Cursor
		}
		sb.WriteString(style.Render(text))
		cell += graphemeCellWidth(gr, cell)
	}

	// Cursor at EOL renders as a placeholder cell.
	if hasCursor && m.cursor.col >= graphemeutil.Count(line) {
		sb.WriteString(m.cfg.Style.Cursor.Render(" "))
	}

	return sb.String()
}

// lineStyle resolves the base text style for row from its display
// classes, applied in sorted class order.
func (m *Model) lineStyle(row int) lipgloss.Style {
	st := m.cfg.Style.Text
	set := m.classes[row]
	if len(set) == 0 {
		return st
	}

	classes := make([]string, 0, len(set))
	for c := range set {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	for _, c := range classes {
		if m.cfg.StyleForClass != nil {
			if keyed, ok := m.cfg.StyleForClass(c); ok {
				st = keyed.Inherit(st)
				continue
			}
		}
		if c == binding.CurrentLineClass {
			st = m.cfg.Style.CurrentLine.Inherit(st)
		}
	}
	return st
}

// colForCell maps a screen cell within the text area to a grapheme
// column on row, clamping to line end.
func (m *Model) colForCell(row, cell int) int {
	if cell <= 0 {
		return 0
	}
	used := 0
	for col, gr := range graphemeutil.Split(m.lines[row]) {
		w := graphemeCellWidth(gr, used)
		if cell < used+w {
			return col
		}
		used += w
	}
	return graphemeutil.Count(m.lines[row])
}

func (m *Model) gutterWidth() int {
	w := 0
	if m.showGutter {
		w += markerColWidth
	}
	if m.showNums {
		w += gutterDigits(len(m.lines)) + 1
	}
	return w
}

func gutterDigits(lineCount int) int {
	if lineCount < 1 {
		lineCount = 1
	}
	return len(fmt.Sprintf("%d", lineCount))
}

func graphemeCellWidth(gr string, cell int) int {
	if gr == "\t" {
		return tabWidth - cell%tabWidth
	}
	w := uniseg.StringWidth(gr)
	if w < 1 {
		w = 1
	}
	return w
}
