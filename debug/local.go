package debug

import (
	"context"

	"github.com/google/uuid"

	"github.com/iw2rmb/waypoint/signal"
)

// LocalService is an in-memory Service: the model it exposes is the
// authoritative store. Breakpoints verify immediately.
type LocalService struct {
	session      Session
	model        *Model
	modelChanged signal.Signal[*Model]
}

// LocalOptions configures NewLocalService.
type LocalOptions struct {
	// Name is the session display name stamped onto breakpoints.
	// Empty defaults to "local".
	Name string
	// Path optionally gives the target a file identity.
	Path string
}

// NewLocalService returns a service with a fresh session attached.
func NewLocalService(opts LocalOptions) *LocalService {
	name := opts.Name
	if name == "" {
		name = "local"
	}
	return &LocalService{
		session: Session{ID: uuid.NewString(), Name: name, Path: opts.Path},
		model:   NewModel(),
	}
}

func (s *LocalService) Session() Session { return s.session }

func (s *LocalService) Model() *Model { return s.model }

func (s *LocalService) ModelChanged() *signal.Signal[*Model] { return &s.modelChanged }

func (s *LocalService) CodeID(code string) string { return CodeID(code) }

// UpdateBreakpoints replaces the set for the resolved source identity.
// Every stored breakpoint is marked active and verified.
func (s *LocalService) UpdateBreakpoints(ctx context.Context, code string, bps []Breakpoint, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	set := make([]Breakpoint, 0, len(bps))
	for _, bp := range bps {
		bp.Active = true
		bp.Verified = true
		set = append(set, bp)
	}
	s.model.Breakpoints.Set(SourceID(path, code), set)
	return nil
}

// ClearBreakpoints removes every breakpoint in the session.
func (s *LocalService) ClearBreakpoints(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.model.Breakpoints.Clear()
	return nil
}

// SwitchSession attaches a fresh session and model, notifying
// ModelChanged listeners. Existing breakpoints are discarded.
func (s *LocalService) SwitchSession(opts LocalOptions) {
	name := opts.Name
	if name == "" {
		name = "local"
	}
	s.session = Session{ID: uuid.NewString(), Name: name, Path: opts.Path}
	s.model = NewModel()
	s.modelChanged.Emit(s.model)
}
