// Package debug defines the debugger-side collaborators the binding layer
// talks to: the breakpoint and callstack sub-models, the session identity,
// and the Service contract that owns breakpoint state.
//
// The package also ships LocalService, an in-memory Service used by the
// examples and tests. It is a reference collaborator, not a debug-adapter
// implementation: there is no protocol handling and no persistence.
package debug
