package debug

import (
	"context"

	"github.com/iw2rmb/waypoint/signal"
)

// Service is the authority over breakpoint state.
//
// UpdateBreakpoints and ClearBreakpoints are asynchronous from the
// caller's point of view: callers fire and forget, and observe the
// outcome through the model's Changed/Restored signals.
type Service interface {
	// Session returns the identity of the active debug target.
	Session() Session

	// Model returns the reactive model for the active session, or nil
	// when no session is attached.
	Model() *Model

	// ModelChanged notifies when the active model is swapped (attach,
	// detach, session switch). Listeners re-resolve via Model().
	ModelChanged() *signal.Signal[*Model]

	// UpdateBreakpoints replaces the breakpoint set for the source
	// identified by path, or by the content id of code when path is
	// empty.
	UpdateBreakpoints(ctx context.Context, code string, bps []Breakpoint, path string) error

	// ClearBreakpoints removes every breakpoint in the session.
	ClearBreakpoints(ctx context.Context) error

	// CodeID derives a source identity from raw code text.
	CodeID(code string) string
}
