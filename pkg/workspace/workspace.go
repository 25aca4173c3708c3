package workspace

import (
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/geom"
)

var (
	// ErrBlockNotFound is returned when an id does not resolve to a live block.
	ErrBlockNotFound = errors.New("block not found")

	// ErrInvalidID is returned by [Workspace.Add] when the id is empty.
	ErrInvalidID = errors.New("block ID must not be empty")

	// ErrDuplicateID is returned by [Workspace.Add] when the id is already registered.
	ErrDuplicateID = errors.New("duplicate block ID")

	// ErrHasParent is returned when attaching a block that is still attached
	// somewhere. Callers detach first.
	ErrHasParent = errors.New("block already has a parent")

	// ErrNotContainer is returned when attaching into a block without a body.
	ErrNotContainer = errors.New("target block has no body")

	// ErrNotValueBlock is returned when plugging a non-value block into an input slot.
	ErrNotValueBlock = errors.New("only reporter and boolean blocks fit input slots")

	// ErrUnknownInput is returned when an input name does not exist on the block.
	ErrUnknownInput = errors.New("unknown input")

	// ErrSlotOccupied is returned when an input slot already holds a block.
	ErrSlotOccupied = errors.New("input slot is occupied")

	// ErrCycle is returned when an attachment would make a block its own ancestor.
	ErrCycle = errors.New("attachment would create a cycle")

	// ErrDragInProgress is returned when an operation needs a settled graph
	// or a second drag is started.
	ErrDragInProgress = errors.New("drag in progress")
)

// LayoutListener receives layout invalidation notifications.
//
// OnChildSetChanged is called synchronously, once for the container whose
// child set changed and once for each of its ancestors, innermost first.
type LayoutListener interface {
	OnChildSetChanged(containerID string)
}

// LayoutListenerFunc adapts a function to [LayoutListener].
type LayoutListenerFunc func(containerID string)

// OnChildSetChanged calls f(containerID).
func (f LayoutListenerFunc) OnChildSetChanged(containerID string) { f(containerID) }

// Option configures a Workspace.
type Option func(*Workspace)

// WithLayoutListener sets the listener notified when a container's children change.
func WithLayoutListener(l LayoutListener) Option {
	return func(w *Workspace) { w.listener = l }
}

// WithGeometry sets the geometry used to preserve positions on detach.
func WithGeometry(g geom.Geometry) Option {
	return func(w *Workspace) { w.geometry = g }
}

// WithIDGenerator replaces the UUID generator used by [Workspace.Instantiate].
func WithIDGenerator(gen func() string) Option {
	return func(w *Workspace) { w.newID = gen }
}

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(w *Workspace) { w.logger = l }
}

// Workspace is the block registry and the composition graph over it.
//
// Blocks are stored by id; parent/child edges are ids on both ends. The
// registry order (creation order) is the order used by snapping, code
// generation and serialization.
//
// The zero value is not usable - use New. A Workspace is not safe for
// concurrent use; every operation runs to completion before returning.
type Workspace struct {
	blocks   map[string]*block.Instance
	order    []string
	listener LayoutListener
	geometry geom.Geometry
	newID    func() string
	logger   *log.Logger
	dragging string
}

// New creates an empty workspace.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		blocks: make(map[string]*block.Instance),
		newID:  uuid.NewString,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetLayoutListener replaces the layout listener. nil disables notifications.
func (w *Workspace) SetLayoutListener(l LayoutListener) { w.listener = l }

// SetGeometry replaces the geometry provider. nil keeps stored positions on detach.
func (w *Workspace) SetGeometry(g geom.Geometry) { w.geometry = g }

// Geometry returns the current geometry provider, which may be nil.
func (w *Workspace) Geometry() geom.Geometry { return w.geometry }

// =============================================================================
// Registry
// =============================================================================

// Instantiate creates a parentless block from def at pos with a fresh id.
func (w *Workspace) Instantiate(def block.Definition, pos geom.Point) *block.Instance {
	id := w.newID()
	for w.blocks[id] != nil {
		id = w.newID()
	}
	b := block.New(def, id, pos)
	w.register(b)
	return b
}

// Add registers an instance that already carries an id, such as one
// rebuilt from a snapshot. The instance is registered as given; callers
// re-link it through the attach operations.
func (w *Workspace) Add(b *block.Instance) error {
	if b.ID == "" {
		return ErrInvalidID
	}
	if _, exists := w.blocks[b.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, b.ID)
	}
	w.register(b)
	return nil
}

func (w *Workspace) register(b *block.Instance) {
	w.blocks[b.ID] = b
	w.order = append(w.order, b.ID)
}

// Get returns the block with the given id.
func (w *Workspace) Get(id string) (*block.Instance, bool) {
	b, ok := w.blocks[id]
	return b, ok
}

// Len returns the number of live blocks.
func (w *Workspace) Len() int { return len(w.order) }

// Blocks returns every live block in registry order.
// The slice is fresh; the instances are the live ones.
func (w *Workspace) Blocks() []*block.Instance {
	out := make([]*block.Instance, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.blocks[id])
	}
	return out
}

// IDs returns every live id in registry order.
func (w *Workspace) IDs() []string { return slices.Clone(w.order) }

// Roots returns the parentless blocks in registry order.
func (w *Workspace) Roots() []*block.Instance {
	var out []*block.Instance
	for _, id := range w.order {
		if b := w.blocks[id]; b.Parent.IsNone() {
			out = append(out, b)
		}
	}
	return out
}

// Containers returns every block with a body in registry order.
func (w *Workspace) Containers() []*block.Instance {
	var out []*block.Instance
	for _, id := range w.order {
		if b := w.blocks[id]; b.Kind.HasBody() {
			out = append(out, b)
		}
	}
	return out
}

func (w *Workspace) lookup(id string) (*block.Instance, error) {
	b, ok := w.blocks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	return b, nil
}

// SetLiteral edits the literal text of an input slot. The edit is allowed
// while the slot is occupied; the text shows again once the child leaves.
func (w *Workspace) SetLiteral(id, varname, text string) error {
	b, err := w.lookup(id)
	if err != nil {
		return err
	}
	in, ok := b.Inputs[varname]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownInput, varname, id)
	}
	in.Literal = text
	return nil
}

// SetPosition moves a top-level block. Positions of attached blocks are
// derived by the renderer, so the call is ignored for them.
func (w *Workspace) SetPosition(id string, pos geom.Point) error {
	b, err := w.lookup(id)
	if err != nil {
		return err
	}
	if b.Parent.IsNone() {
		b.Position = pos
	}
	return nil
}

// =============================================================================
// Drag Lock
// =============================================================================

// BeginDrag marks id as being dragged. Only one drag may be active.
func (w *Workspace) BeginDrag(id string) error {
	if w.dragging != "" {
		return fmt.Errorf("%w: %s", ErrDragInProgress, w.dragging)
	}
	if _, err := w.lookup(id); err != nil {
		return err
	}
	w.dragging = id
	return nil
}

// EndDrag releases the drag lock.
func (w *Workspace) EndDrag() { w.dragging = "" }

// Dragging returns the id of the block being dragged, or "".
func (w *Workspace) Dragging() string { return w.dragging }

// Settled reports whether no drag is in progress.
func (w *Workspace) Settled() bool { return w.dragging == "" }
