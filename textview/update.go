package textview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	graphemeutil "github.com/iw2rmb/waypoint/internal/grapheme"
)

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *Model) updateKey(msg tea.KeyMsg) tea.Cmd {
	if !m.focused {
		return nil
	}

	switch msg.String() {
	case "left":
		m.moveCursor(0, -1)
	case "right":
		m.moveCursor(0, 1)
	case "up":
		m.moveCursor(-1, 0)
	case "down":
		m.moveCursor(1, 0)
	case "home":
		m.cursor.col = 0
	case "end":
		m.cursor.col = graphemeutil.Count(m.lines[m.cursor.row])
	case "backspace":
		if !m.cfg.ReadOnly {
			m.DeleteBackward()
			return nil
		}
	case "enter":
		if !m.cfg.ReadOnly {
			m.InsertNewline()
			return nil
		}
	case "tab":
		if !m.cfg.ReadOnly {
			m.InsertText("\t")
			return nil
		}
	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && !msg.Alt {
			if !m.cfg.ReadOnly {
				m.InsertText(string(msg.Runes))
			}
			return nil
		}
		return nil
	}

	m.rebuildContent()
	m.followCursor()
	return nil
}

func (m *Model) updateMouse(msg tea.MouseMsg) tea.Cmd {
	var cmd tea.Cmd
	if isWheelMouse(msg) {
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if msg.X < 0 || msg.Y < 0 || msg.Y >= m.viewport.Height {
		return nil
	}

	row := m.viewport.YOffset + msg.Y
	if row < 0 || row >= len(m.lines) {
		return nil
	}

	if m.showGutter && msg.X < markerColWidth {
		m.fireGutterClick(row)
		return nil
	}

	gutter := m.gutterWidth()
	if msg.X < gutter {
		return nil
	}

	m.cursor = pos{row: row, col: m.colForCell(row, msg.X-gutter)}
	m.rebuildContent()
	return nil
}

func isWheelMouse(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress &&
		(msg.Button == tea.MouseButtonWheelUp ||
			msg.Button == tea.MouseButtonWheelDown ||
			msg.Button == tea.MouseButtonWheelLeft ||
			msg.Button == tea.MouseButtonWheelRight)
}

func (m *Model) moveCursor(dRow, dCol int) {
	if dRow != 0 {
		m.cursor.row += dRow
		m.clampCursor()
		return
	}

	line := m.lines[m.cursor.row]
	max := graphemeutil.Count(line)
	col := m.cursor.col + dCol
	switch {
	case col < 0 && m.cursor.row > 0:
		m.cursor.row--
		m.cursor.col = graphemeutil.Count(m.lines[m.cursor.row])
	case col > max && m.cursor.row < len(m.lines)-1:
		m.cursor.row++
		m.cursor.col = 0
	default:
		m.cursor.col = col
		m.clampCursor()
	}
}

// InsertText inserts s at the cursor. Newlines split lines the same way
// InsertNewline does; carriage returns are normalized away.
func (m *Model) InsertText(s string) {
	if s == "" {
		return
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	segments := strings.Split(s, "\n")
	for i, seg := range segments {
		if i > 0 {
			m.splitLineAtCursor()
		}
		if seg != "" {
			line := m.lines[m.cursor.row]
			m.lines[m.cursor.row] = graphemeutil.Slice(line, 0, m.cursor.col) +
				seg +
				graphemeutil.Slice(line, m.cursor.col, graphemeutil.Count(line))
			m.cursor.col += graphemeutil.Count(seg)
		}
	}

	m.rebuildContent()
	m.followCursor()
	m.notifyChange()
}

// InsertNewline splits the current line at the cursor.
func (m *Model) InsertNewline() {
	m.splitLineAtCursor()
	m.rebuildContent()
	m.followCursor()
	m.notifyChange()
}

// DeleteBackward removes the grapheme before the cursor, merging with
// the previous line at column zero.
func (m *Model) DeleteBackward() {
	if m.cursor.col > 0 {
		line := m.lines[m.cursor.row]
		m.lines[m.cursor.row] = graphemeutil.Slice(line, 0, m.cursor.col-1) +
			graphemeutil.Slice(line, m.cursor.col, graphemeutil.Count(line))
		m.cursor.col--
	} else if m.cursor.row > 0 {
		row := m.cursor.row
		prev := m.lines[row-1]
		m.cursor = pos{row: row - 1, col: graphemeutil.Count(prev)}
		m.lines[row-1] = prev + m.lines[row]
		m.lines = append(m.lines[:row], m.lines[row+1:]...)

		// Gutter state on the removed row survives on the merged line
		// unless it already carries its own.
		if marker, ok := m.markers[row]; ok && m.markers[row-1] == nil {
			m.markers[row-1] = marker
		}
		delete(m.markers, row)
		delete(m.classes, row)
		m.shiftLineState(row+1, -1)
	} else {
		return
	}

	m.rebuildContent()
	m.followCursor()
	m.notifyChange()
}

func (m *Model) splitLineAtCursor() {
	row := m.cursor.row
	line := m.lines[row]
	head := graphemeutil.Slice(line, 0, m.cursor.col)
	tail := graphemeutil.Slice(line, m.cursor.col, graphemeutil.Count(line))

	m.lines = append(m.lines[:row], append([]string{head}, m.lines[row+1:]...)...)
	m.lines = append(m.lines[:row+1], append([]string{tail}, m.lines[row+1:]...)...)
	m.shiftLineState(row+1, 1)
	m.cursor = pos{row: row + 1, col: 0}
}
