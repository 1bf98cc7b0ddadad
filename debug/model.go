package debug

import (
	"sort"

	"github.com/iw2rmb/waypoint/signal"
)

// Model groups the reactive sub-models one debug session exposes.
type Model struct {
	Breakpoints *BreakpointModel
	Callstack   *CallstackModel
}

// NewModel returns an empty model with both sub-models ready.
func NewModel() *Model {
	return &Model{
		Breakpoints: NewBreakpointModel(),
		Callstack:   &CallstackModel{},
	}
}

// BreakpointModel stores breakpoints keyed by source identity and
// notifies listeners on mutation.
type BreakpointModel struct {
	// Changed fires with the source id whose set was replaced.
	Changed signal.Signal[string]
	// Restored fires with the source id after a bulk restore
	// (session reattach) repopulates it.
	Restored signal.Signal[string]

	bySource map[string][]Breakpoint
}

// NewBreakpointModel returns an empty breakpoint model.
func NewBreakpointModel() *BreakpointModel {
	return &BreakpointModel{bySource: make(map[string][]Breakpoint)}
}

// Breakpoints returns the current set for sourceID, sorted by line.
// The returned slice is a copy.
func (m *BreakpointModel) Breakpoints(sourceID string) []Breakpoint {
	bps := m.bySource[sourceID]
	if len(bps) == 0 {
		return nil
	}
	out := make([]Breakpoint, len(bps))
	copy(out, bps)
	return out
}

// SourceIDs returns every source that currently has breakpoints, sorted.
func (m *BreakpointModel) SourceIDs() []string {
	ids := make([]string, 0, len(m.bySource))
	for id := range m.bySource {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Set replaces the breakpoint set for sourceID and emits Changed.
// An empty set removes the source entry.
func (m *BreakpointModel) Set(sourceID string, bps []Breakpoint) {
	m.store(sourceID, bps)
	m.Changed.Emit(sourceID)
}

// Restore replaces the breakpoint set for sourceID and emits Restored.
func (m *BreakpointModel) Restore(sourceID string, bps []Breakpoint) {
	m.store(sourceID, bps)
	m.Restored.Emit(sourceID)
}

// Clear empties every source, emitting Changed once per source.
func (m *BreakpointModel) Clear() {
	ids := m.SourceIDs()
	for _, id := range ids {
		delete(m.bySource, id)
	}
	for _, id := range ids {
		m.Changed.Emit(id)
	}
}

func (m *BreakpointModel) store(sourceID string, bps []Breakpoint) {
	if len(bps) == 0 {
		delete(m.bySource, sourceID)
		return
	}
	set := make([]Breakpoint, len(bps))
	copy(set, bps)
	sort.SliceStable(set, func(i, j int) bool { return set[i].Line < set[j].Line })
	m.bySource[sourceID] = set
}

// Frame is one entry of the paused callstack.
type Frame struct {
	Name     string
	SourceID string
	Line     int // 1-indexed
}

// CallstackModel tracks the paused callstack and the selected frame.
//
// The zero value is an empty, running (not paused) callstack.
type CallstackModel struct {
	// CurrentFrameChanged fires whenever the selected frame moves,
	// including to nil when execution resumes.
	CurrentFrameChanged signal.Signal[*Frame]

	frames  []Frame
	current int
}

// Frames returns the paused callstack, outermost last.
func (m *CallstackModel) Frames() []Frame {
	out := make([]Frame, len(m.frames))
	copy(out, m.frames)
	return out
}

// CurrentFrame returns the selected frame, or nil while running.
func (m *CallstackModel) CurrentFrame() *Frame {
	if len(m.frames) == 0 || m.current < 0 || m.current >= len(m.frames) {
		return nil
	}
	f := m.frames[m.current]
	return &f
}

// SetFrames replaces the callstack, selects the top frame, and emits
// CurrentFrameChanged.
func (m *CallstackModel) SetFrames(frames []Frame) {
	m.frames = make([]Frame, len(frames))
	copy(m.frames, frames)
	m.current = 0
	m.CurrentFrameChanged.Emit(m.CurrentFrame())
}

// SelectFrame moves the selection and emits CurrentFrameChanged.
// Out-of-range indices are ignored.
func (m *CallstackModel) SelectFrame(index int) {
	if index < 0 || index >= len(m.frames) {
		return
	}
	m.current = index
	m.CurrentFrameChanged.Emit(m.CurrentFrame())
}

// ClearFrames empties the callstack (execution resumed) and emits
// CurrentFrameChanged with nil.
func (m *CallstackModel) ClearFrames() {
	m.frames = nil
	m.current = 0
	m.CurrentFrameChanged.Emit(nil)
}
