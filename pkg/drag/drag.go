// Package drag implements the drag-to-drop lifecycle of a single block.
//
// A [Session] moves through the states
//
//	Idle -> Dragging -> Attached | Floating | Deleted
//
// Start detaches the block (keeping its position) and takes the workspace
// drag lock, Move tracks the pointer, End resolves the drop through a
// [snap.Resolver] and applies it. Only one session may be dragging per
// workspace; a finished session can be started again.
package drag

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/snap"
	"github.com/matzehuels/blockstack/pkg/workspace"
)

var (
	// ErrSessionActive is returned when a drag starts while another is in flight.
	ErrSessionActive = errors.New("drag session already active")

	// ErrNotDragging is returned by Move, End and Cancel outside the Dragging state.
	ErrNotDragging = errors.New("no drag in progress")
)

// State is the lifecycle state of a session.
type State int

const (
	Idle     State = iota
	Dragging       // block follows the pointer
	Attached       // dropped into a container body or input slot
	Floating       // dropped on the surface, parentless
	Deleted        // dropped outside the bounds or on the trash
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Attached:
		return "attached"
	case Floating:
		return "floating"
	case Deleted:
		return "deleted"
	default:
		return "idle"
	}
}

// Terminal reports whether s ends a session.
func (s State) Terminal() bool { return s == Attached || s == Floating || s == Deleted }

// Outcome describes how a drag ended.
type Outcome struct {
	State    State
	BlockID  string
	Target   snap.Target
	Position geom.Point // top-level position when Floating
}

// Session drives one drag at a time against a workspace.
type Session struct {
	ws       *workspace.Workspace
	resolver *snap.Resolver
	logger   *log.Logger

	state   State
	blockID string
	offset  geom.Point
	pointer geom.Point
}

// NewSession creates an idle session. A nil logger uses log.Default().
func NewSession(ws *workspace.Workspace, resolver *snap.Resolver, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{ws: ws, resolver: resolver, logger: logger}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// BlockID returns the id of the block being (or last) dragged.
func (s *Session) BlockID() string { return s.blockID }

// Pointer returns the latest pointer sample.
func (s *Session) Pointer() geom.Point { return s.pointer }

// Start begins dragging block id with the pointer at pointer.
//
// A parented block is detached first and keeps its drawn position. The
// offset between pointer and block origin is kept for the whole drag.
func (s *Session) Start(id string, pointer geom.Point) error {
	if s.state == Dragging || !s.ws.Settled() {
		return fmt.Errorf("%w: %s", ErrSessionActive, s.ws.Dragging())
	}
	b, ok := s.ws.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", workspace.ErrBlockNotFound, id)
	}
	if !b.Parent.IsNone() {
		if err := s.ws.Detach(id); err != nil {
			return err
		}
	}
	if err := s.ws.BeginDrag(id); err != nil {
		return err
	}

	s.state = Dragging
	s.blockID = id
	s.offset = pointer.Sub(b.Position)
	s.pointer = pointer
	s.logger.Debug("drag started", "block", id, "at", b.Position)
	return nil
}

// StartFromPalette instantiates def under the pointer and starts dragging it.
func (s *Session) StartFromPalette(def block.Definition, pointer geom.Point) (*block.Instance, error) {
	if s.state == Dragging || !s.ws.Settled() {
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, s.ws.Dragging())
	}
	b := s.ws.Instantiate(def, pointer)
	if err := s.Start(b.ID, pointer); err != nil {
		return nil, err
	}
	return b, nil
}

// Move records a pointer sample and moves the block along with it.
func (s *Session) Move(pointer geom.Point) error {
	if s.state != Dragging {
		return ErrNotDragging
	}
	s.pointer = pointer
	return s.ws.SetPosition(s.blockID, pointer.Sub(s.offset))
}

// End drops the block at pointer.
//
// Deletion is checked first, then the snap target is applied. The session
// always reaches a terminal state: if applying the target fails the block
// stays floating and the error is returned alongside the outcome. Every
// container is notified afterwards so ancestors can resize.
func (s *Session) End(pointer geom.Point) (Outcome, error) {
	if err := s.Move(pointer); err != nil {
		return Outcome{}, err
	}
	s.ws.EndDrag()
	defer s.ws.NotifyAll()

	id := s.blockID
	out := Outcome{BlockID: id}

	if s.resolver.ShouldDelete(pointer) {
		if err := s.ws.Remove(id); err != nil {
			return s.finish(out, Floating), err
		}
		s.logger.Debug("drag ended", "block", id, "state", Deleted)
		return s.finish(out, Deleted), nil
	}

	out.Target = s.resolver.Resolve(id, pointer)
	var err error
	switch out.Target.Kind {
	case snap.Input:
		err = s.ws.AttachToInput(id, out.Target.ParentID, out.Target.Var)
	case snap.Container:
		err = s.ws.AttachToContainer(id, out.Target.ParentID)
	case snap.Below:
		err = s.ws.SetPosition(id, out.Target.Position)
	}

	state := Floating
	if err == nil && (out.Target.Kind == snap.Input || out.Target.Kind == snap.Container) {
		state = Attached
	}
	if b, ok := s.ws.Get(id); ok && state == Floating {
		out.Position = b.Position
	}
	if err != nil {
		s.logger.Warn("drop rejected", "block", id, "target", out.Target.Kind, "err", err)
	} else {
		s.logger.Debug("drag ended", "block", id, "state", state, "target", out.Target.Kind)
	}
	return s.finish(out, state), err
}

// Cancel ends the drag without snapping; the block floats where it is.
func (s *Session) Cancel() (Outcome, error) {
	if s.state != Dragging {
		return Outcome{}, ErrNotDragging
	}
	s.ws.EndDrag()
	s.ws.NotifyAll()
	out := Outcome{BlockID: s.blockID}
	if b, ok := s.ws.Get(s.blockID); ok {
		out.Position = b.Position
	}
	return s.finish(out, Floating), nil
}

func (s *Session) finish(out Outcome, state State) Outcome {
	s.state = state
	out.State = state
	return out
}
