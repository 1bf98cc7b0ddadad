package binding

import (
	"context"
	"time"

	"github.com/iw2rmb/waypoint/debug"
	"github.com/iw2rmb/waypoint/internal/debounce"
	"github.com/iw2rmb/waypoint/signal"
)

// Options configures a Handler.
type Options struct {
	// Service owns breakpoint state. Required.
	Service debug.Service
	// Editor is the bound editor. Required.
	Editor Editor
	// Path optionally names the editor's document. When empty, the
	// source identity is derived from the document text.
	Path string

	// DebounceInterval is the quiet period before editor content
	// changes are pushed to the service. Zero means one second.
	DebounceInterval time.Duration
	// Dispatch, when set, marshals the debounced push onto the host's
	// event loop. Nil runs it on the timer goroutine, which is fine
	// for editors that are safe to read off-loop.
	Dispatch func(fn func())
}

// Handler binds one editor to the service's active session.
//
// While live it keeps gutter markers equal to the model's breakpoint set
// for the bound source, forwards gutter clicks as breakpoint updates,
// and pushes settled content edits so breakpoint lines track text drift.
// Dispose tears all of that down; a disposed handler is inert.
type Handler struct {
	svc     debug.Service
	ed      Editor
	path    string
	session debug.Session

	breakpoints *debug.BreakpointModel
	callstack   *debug.CallstackModel

	monitor    *debounce.Monitor
	svcConns   signal.Group
	modelConns signal.Group
	removeHook []func()

	disposed bool
}

// New binds editor to the service's active session and starts listening.
func New(opts Options) *Handler {
	h := &Handler{
		svc:     opts.Service,
		ed:      opts.Editor,
		path:    opts.Path,
		session: opts.Service.Session(),
	}

	dispatch := opts.Dispatch
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	h.monitor = debounce.New(opts.DebounceInterval, func() {
		dispatch(h.pushEditorBreakpoints)
	})

	h.setModel(h.svc.Model())
	h.svcConns.Add(h.svc.ModelChanged().Connect(func(m *debug.Model) {
		h.setModel(m)
	}).Disconnect)

	if ed := h.ed; ed != nil {
		ed.SetShowLineNumbers(true)
		ed.SetShowBreakpointGutter(true)
		h.removeHook = append(h.removeHook,
			ed.OnChange(h.monitor.Trigger),
			ed.OnGutterClick(h.onGutterClick),
		)
	}

	h.renderMarkers()
	return h
}

// Dispose detaches the handler from the editor and the service.
// It is idempotent; cleanup runs once.
func (h *Handler) Dispose() {
	if h.disposed {
		return
	}
	h.disposed = true

	h.monitor.Stop()
	for _, remove := range h.removeHook {
		remove()
	}
	h.removeHook = nil
	h.modelConns.DisconnectAll()
	h.svcConns.DisconnectAll()

	if ed := h.ed; ed != nil {
		ClearGutter(ed)
		ClearHighlight(ed)
		ed.SetShowBreakpointGutter(false)
	}
}

// Disposed reports whether Dispose has run.
func (h *Handler) Disposed() bool { return h.disposed }

// setModel re-resolves the session's sub-models and re-subscribes.
func (h *Handler) setModel(m *debug.Model) {
	h.modelConns.DisconnectAll()
	h.breakpoints = nil
	h.callstack = nil
	if m == nil {
		return
	}
	h.breakpoints = m.Breakpoints
	h.callstack = m.Callstack

	h.modelConns.Add(h.callstack.CurrentFrameChanged.Connect(func(*debug.Frame) {
		if h.disposed {
			return
		}
		ClearHighlight(h.ed)
	}).Disconnect)

	onSet := func(sourceID string) {
		if h.disposed || sourceID != h.sourceID() {
			return
		}
		h.renderMarkers()
	}
	h.modelConns.Add(h.breakpoints.Changed.Connect(onSet).Disconnect)
	h.modelConns.Add(h.breakpoints.Restored.Connect(onSet).Disconnect)
}

// sourceID resolves the bound document's identity.
func (h *Handler) sourceID() string {
	if h.path != "" {
		return h.path
	}
	if h.ed == nil {
		return ""
	}
	return h.svc.CodeID(h.ed.Text())
}

// sessionMatches guards against a handler whose session is no longer the
// service's active one; stale handlers keep listening but never mutate
// the editor.
func (h *Handler) sessionMatches() bool {
	return h.svc.Session().ID == h.session.ID
}

// pushEditorBreakpoints sends the editor's marked lines to the service
// after content has settled, reconciling line drift from edits.
func (h *Handler) pushEditorBreakpoints() {
	ed := h.ed
	if h.disposed || ed == nil {
		return
	}

	var bps []debug.Breakpoint
	ed.EachLine(func(line int) {
		if ed.Marker(line) == nil {
			return
		}
		bps = append(bps, debug.Breakpoint{
			Line:   line + 1,
			Active: true,
			Source: debug.Source{Name: h.session.Name},
		})
	})

	// Fire and forget: the resulting model notification drives the
	// next render.
	_ = h.svc.UpdateBreakpoints(context.Background(), ed.Text(), bps, h.path)
}

// onGutterClick toggles the breakpoint on the clicked line.
func (h *Handler) onGutterClick(line int) {
	ed := h.ed
	if h.disposed || ed == nil || !h.sessionMatches() {
		return
	}
	if line < 0 || line >= ed.LineCount() {
		return
	}

	var current []debug.Breakpoint
	if h.breakpoints != nil {
		current = h.breakpoints.Breakpoints(h.sourceID())
	}

	var next []debug.Breakpoint
	if ed.Marker(line) != nil {
		for _, bp := range current {
			if bp.Line == line+1 {
				continue
			}
			next = append(next, bp)
		}
	} else {
		next = append(current, debug.Breakpoint{
			Line:   line + 1,
			Active: true,
			Source: debug.Source{Name: h.stampName()},
		})
	}

	_ = h.svc.UpdateBreakpoints(context.Background(), ed.Text(), next, h.path)
}

// stampName names the source on breakpoints created by clicks: the
// explicit path when there is one, else the session display name.
func (h *Handler) stampName() string {
	if h.path != "" {
		return h.path
	}
	return h.session.Name
}

// renderMarkers rebuilds the gutter from the model's set for the bound
// source. Renders are suppressed for stale sessions.
func (h *Handler) renderMarkers() {
	ed := h.ed
	if h.disposed || ed == nil || h.breakpoints == nil || !h.sessionMatches() {
		return
	}

	ClearGutter(ed)
	for _, bp := range h.breakpoints.Breakpoints(h.sourceID()) {
		line := bp.Line - 1
		if line < 0 || line >= ed.LineCount() {
			continue
		}
		ed.SetGutterMarker(line, &Marker{Verified: bp.Verified})
	}
}
