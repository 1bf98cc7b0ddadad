package binding

// CurrentLineClass is the display class applied to the line execution is
// paused on. Editors map classes to whatever styling they support.
const CurrentLineClass = "debug-current-line"

// Marker is a breakpoint indicator in an editor's gutter.
type Marker struct {
	// Verified reports whether the debugger accepted the breakpoint.
	// Editors may render unverified markers dimmed.
	Verified bool
}

// Editor is the capability surface the binding needs from an editor.
//
// Lines are 0-indexed everywhere on this interface; the binding converts
// to the debugger's 1-indexed breakpoint lines at its boundary.
//
// Hook registrations return a remove function; the binding calls it on
// dispose, so implementations must tolerate removal after the editor has
// itself been torn down.
type Editor interface {
	// Text returns the full document text.
	Text() string
	// LineCount returns the number of document lines, at least 1.
	LineCount() int

	// SetGutterMarker places a marker on line, or removes it when m is
	// nil. Lines out of range are ignored.
	SetGutterMarker(line int, m *Marker)
	// Marker returns the marker on line, or nil.
	Marker(line int) *Marker
	// EachLine visits every document line in order.
	EachLine(fn func(line int))

	// AddLineClass applies a named display class to line.
	AddLineClass(line int, class string)
	// RemoveLineClass removes a named display class from line.
	RemoveLineClass(line int, class string)

	// SetShowLineNumbers toggles the line-number gutter.
	SetShowLineNumbers(show bool)
	// SetShowBreakpointGutter toggles the marker gutter.
	SetShowBreakpointGutter(show bool)

	// OnGutterClick registers a marker-gutter click listener.
	OnGutterClick(fn func(line int)) (remove func())
	// OnChange registers a document-content change listener.
	OnChange(fn func()) (remove func())
}

// ShowCurrentLine highlights line (1-indexed) as the paused execution
// line, first clearing any previous highlight so at most one line
// carries it.
func ShowCurrentLine(ed Editor, line int) {
	if ed == nil || line < 1 {
		return
	}
	ClearHighlight(ed)
	ed.AddLineClass(line-1, CurrentLineClass)
}

// ClearHighlight removes the current-line highlight from every line.
func ClearHighlight(ed Editor) {
	if ed == nil {
		return
	}
	ed.EachLine(func(line int) {
		ed.RemoveLineClass(line, CurrentLineClass)
	})
}

// ClearGutter removes every gutter marker.
func ClearGutter(ed Editor) {
	if ed == nil {
		return
	}
	ed.EachLine(func(line int) {
		if ed.Marker(line) != nil {
			ed.SetGutterMarker(line, nil)
		}
	})
}
