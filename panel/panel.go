// Package panel provides a Bubble Tea list component for a debug
// session's breakpoints: a header with a clear-all action and a
// scrollable body grouping breakpoints by source.
package panel

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/waypoint/debug"
)

const (
	glyphVerified   = "●"
	glyphUnverified = "○"
)

// KeyMap holds the panel's key bindings.
type KeyMap struct {
	ClearAll key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		ClearAll: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear all"),
		),
	}
}

// Styles controls the panel's rendering.
type Styles struct {
	Header lipgloss.Style
	Title  lipgloss.Style
	Hint   lipgloss.Style

	Source     lipgloss.Style
	Item       lipgloss.Style
	Unverified lipgloss.Style
	Empty      lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:     lipgloss.NewStyle().Bold(true),
		Title:      lipgloss.NewStyle().Bold(true),
		Hint:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Source:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Item:       lipgloss.NewStyle(),
		Unverified: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Empty:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
	}
}

// Options configures New.
type Options struct {
	// Service handles the clear-all action. Required.
	Service debug.Service
	// Model is the breakpoint model to list. Nil resolves the
	// service's current model.
	Model *debug.Model

	KeyMap KeyMap
	Styles Styles
}

// ClearedMsg reports that the clear-all request was dispatched. The
// request itself is fire and forget; failures stay with the service.
type ClearedMsg struct{}

// Model is the breakpoints panel component.
type Model struct {
	svc   debug.Service
	model *debug.Model

	keymap KeyMap
	styles Styles

	viewport viewport.Model
	width    int
	height   int
}

// New returns a panel listing the model's breakpoints.
func New(opts Options) Model {
	m := Model{
		svc:      opts.Service,
		model:    opts.Model,
		keymap:   opts.KeyMap,
		styles:   opts.Styles,
		viewport: viewport.New(0, 0),
	}
	if m.model == nil && m.svc != nil {
		m.model = m.svc.Model()
	}
	if m.keymap.ClearAll.Keys() == nil {
		m.keymap = DefaultKeyMap()
	}
	return m.Refresh()
}

func (m Model) Init() tea.Cmd { return nil }

// SetSize resizes the panel; the body gets the height left under the
// header row.
func (m Model) SetSize(width, height int) Model {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.width = width
	m.height = height
	m.viewport.Width = width
	bodyHeight := height - 1
	if bodyHeight < 0 {
		bodyHeight = 0
	}
	m.viewport.Height = bodyHeight
	return m.Refresh()
}

// SetModel swaps the listed model (session switch) and re-renders.
func (m Model) SetModel(model *debug.Model) Model {
	m.model = model
	return m.Refresh()
}

// Refresh rebuilds the body from the model's current breakpoint set.
// Hosts call it after Changed/Restored notifications.
func (m Model) Refresh() Model {
	m.viewport.SetContent(m.bodyContent())
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case ClearedMsg:
		return m.Refresh(), nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ClearAll) {
			return m, m.clearAllCmd()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.headerView() + "\n" + m.viewport.View()
}

// clearAllCmd dispatches the clear-all request off the update loop.
func (m Model) clearAllCmd() tea.Cmd {
	svc := m.svc
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		_ = svc.ClearBreakpoints(context.Background())
		return ClearedMsg{}
	}
}

func (m Model) headerView() string {
	title := m.styles.Title.Render("Breakpoints")
	hint := ""
	if help := m.keymap.ClearAll.Help(); help.Key != "" {
		hint = m.styles.Hint.Render(fmt.Sprintf(" [%s %s]", help.Key, help.Desc))
	}
	header := title + hint
	if m.width > 0 {
		header = lipgloss.NewStyle().MaxWidth(m.width).Render(header)
	}
	return m.styles.Header.Render(header)
}

func (m Model) bodyContent() string {
	if m.model == nil {
		return m.styles.Empty.Render("no session")
	}

	ids := m.model.Breakpoints.SourceIDs()
	if len(ids) == 0 {
		return m.styles.Empty.Render("no breakpoints")
	}

	var out []string
	for _, id := range ids {
		out = append(out, m.styles.Source.Render(id))
		for _, bp := range m.model.Breakpoints.Breakpoints(id) {
			glyph, style := glyphVerified, m.styles.Item
			if !bp.Verified {
				glyph, style = glyphUnverified, m.styles.Unverified
			}
			out = append(out, style.Render(fmt.Sprintf("  %s line %d", glyph, bp.Line)))
		}
	}
	return strings.Join(out, "\n")
}
