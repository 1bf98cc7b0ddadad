// Command waypoint-demo is a minimal tour of the binding: one editor,
// one local debug service, breakpoints toggled by clicking the gutter.
// ctrl+c quits.
package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/waypoint/binding"
	"github.com/iw2rmb/waypoint/debug"
	"github.com/iw2rmb/waypoint/textview"
)

type applyMsg struct{ fn func() }

type model struct {
	editor  *textview.Model
	handler *binding.Handler
}

func newModel(dispatch func(fn func())) model {
	svc := debug.NewLocalService(debug.LocalOptions{Name: "demo"})
	editor := textview.New(textview.Config{
		Text:  "Click the gutter to toggle a breakpoint.\n\nEdit freely; breakpoint\nlines follow the text.",
		Style: textview.DefaultStyle(),
	})
	handler := binding.New(binding.Options{Service: svc, Editor: editor, Dispatch: dispatch})
	return model{editor: editor, handler: handler}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case applyMsg:
		msg.fn()
		return m, nil
	case tea.WindowSizeMsg:
		m.editor.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.handler.Dispose()
			return m, tea.Quit
		}
	}
	return m, m.editor.Update(msg)
}

func (m model) View() string { return m.editor.View() }

func main() {
	var p *tea.Program
	dispatch := func(fn func()) {
		if p != nil {
			p.Send(applyMsg{fn: fn})
		}
	}

	p = tea.NewProgram(newModel(dispatch), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
