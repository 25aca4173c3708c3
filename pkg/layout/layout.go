// Package layout is a deterministic box model for block workspaces.
//
// [Engine] measures every block from its label and kind, stacks nested
// children inside container bodies and places input children at their slot
// origin. It implements both [geom.Geometry], so the snap resolver and detach
// logic can query it, and [workspace.LayoutListener], so composition changes
// invalidate the affected measurements.
//
// Measurements are cached per block and recomputed lazily on the next query.
// World positions are derived from the parent chain on every query, so moving
// a top-level block needs no notification.
package layout

import (
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/workspace"
)

// Box model constants, in workspace units.
const (
	MinWidth      = 140.0 // narrowest block
	LabelPad      = 12.0  // horizontal padding counted into the width estimate
	LabelX        = 10.0  // x of the first label part
	CharWidth     = 8.0   // width per label character
	InputEstimate = 64.0  // width an input slot adds to the estimate
	InputAdvance  = 66.0  // horizontal advance past an input slot
	InputWidth    = 60.0
	InputHeight   = 22.0

	HeaderHeight = 30.0 // command, container and function header
	ValueHeight  = 28.0 // reporter and boolean

	ContainerInputY = 8.0  // slot y on container headers
	BodyInset       = 10.0 // body rectangle inset from the block's left edge
	BodyOverlap     = 8.0  // body rectangle starts this far above the header bottom
	BodyOffset      = 4.0  // first nested child starts this far below the header
	StackGap        = 8.0  // vertical gap between nested children
	BodyPad         = 12.0 // space below the last nested child
	MinBodyHeight   = 80.0
)

// DefaultBounds is the drawing surface used when none is configured.
var DefaultBounds = geom.Rect{Right: 1200, Bottom: 800}

// shape is the local measurement of one block. Offsets and slots are relative
// to the block's own origin.
type shape struct {
	header   float64 // header height
	base     float64 // header width
	width    float64 // full width including children
	height   float64 // full height including children
	body     float64 // body rectangle height, containers only
	slots    map[string]geom.Point
	children map[string]geom.Point
}

// Option configures an Engine.
type Option func(*Engine)

// WithBounds sets the drawing surface.
func WithBounds(r geom.Rect) Option {
	return func(e *Engine) { e.bounds = r }
}

// WithTrash sets a deletion target.
func WithTrash(r geom.Rect) Option {
	return func(e *Engine) { e.trash, e.hasTrash = r, true }
}

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine measures the blocks of one workspace.
type Engine struct {
	ws       *workspace.Workspace
	bounds   geom.Rect
	trash    geom.Rect
	hasTrash bool
	shapes   map[string]*shape
	logger   *log.Logger
}

// New creates an engine for ws. It does not register itself; see [Bind].
func New(ws *workspace.Workspace, opts ...Option) *Engine {
	e := &Engine{
		ws:     ws,
		bounds: DefaultBounds,
		shapes: make(map[string]*shape),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bind creates an engine for ws and installs it as the workspace's layout
// listener and geometry provider.
func Bind(ws *workspace.Workspace, opts ...Option) *Engine {
	e := New(ws, opts...)
	ws.SetLayoutListener(e)
	ws.SetGeometry(e)
	return e
}

// OnChildSetChanged drops the cached measurement of containerID.
func (e *Engine) OnChildSetChanged(containerID string) {
	if _, ok := e.shapes[containerID]; ok {
		e.logger.Debug("layout invalidated", "block", containerID)
		delete(e.shapes, containerID)
	}
}

// Invalidate drops every cached measurement.
func (e *Engine) Invalidate() { clear(e.shapes) }

// =============================================================================
// geom.Geometry
// =============================================================================

// BoundingBox returns the composed box of a block, children included.
func (e *Engine) BoundingBox(id string) (geom.Rect, bool) {
	b, ok := e.ws.Get(id)
	if !ok {
		return geom.Rect{}, false
	}
	origin, ok := e.origin(b)
	if !ok {
		return geom.Rect{}, false
	}
	s := e.measure(b)
	return geom.RectAt(origin, s.width, s.height), true
}

// SlotBox returns the box of an input slot.
func (e *Engine) SlotBox(id, varname string) (geom.Rect, bool) {
	b, ok := e.ws.Get(id)
	if !ok {
		return geom.Rect{}, false
	}
	slot, ok := e.measure(b).slots[varname]
	if !ok {
		return geom.Rect{}, false
	}
	origin, ok := e.origin(b)
	if !ok {
		return geom.Rect{}, false
	}
	return geom.RectAt(origin.Add(slot), InputWidth, InputHeight), true
}

// BodyBox returns the body rectangle of a container or function block.
func (e *Engine) BodyBox(id string) (geom.Rect, bool) {
	b, ok := e.ws.Get(id)
	if !ok || !b.Kind.HasBody() {
		return geom.Rect{}, false
	}
	origin, ok := e.origin(b)
	if !ok {
		return geom.Rect{}, false
	}
	s := e.measure(b)
	topLeft := origin.Add(geom.Point{X: BodyInset, Y: s.header - BodyOverlap})
	return geom.RectAt(topLeft, s.base-2*BodyInset, s.body), true
}

// Bounds returns the drawing surface.
func (e *Engine) Bounds() geom.Rect { return e.bounds }

// TrashBox returns the deletion target, if configured.
func (e *Engine) TrashBox() (geom.Rect, bool) { return e.trash, e.hasTrash }

// =============================================================================
// Measurement
// =============================================================================

// origin returns the world position of b's top-left corner.
func (e *Engine) origin(b *block.Instance) (geom.Point, bool) {
	if b.Parent.IsNone() {
		return b.Position, true
	}
	parent, ok := e.ws.Get(b.Parent.ID)
	if !ok {
		return geom.Point{}, false
	}
	base, ok := e.origin(parent)
	if !ok {
		return geom.Point{}, false
	}
	off, ok := e.measure(parent).children[b.ID]
	if !ok {
		return geom.Point{}, false
	}
	return base.Add(off), true
}

func (e *Engine) measure(b *block.Instance) *shape {
	if s, ok := e.shapes[b.ID]; ok {
		return s
	}

	s := &shape{
		header:   HeaderHeight,
		slots:    make(map[string]geom.Point, len(b.Inputs)),
		children: make(map[string]geom.Point),
	}
	if b.Kind.IsValue() {
		s.header = ValueHeight
	}

	estimate, x := LabelPad, LabelX
	for _, p := range block.ParseLabel(b.Label) {
		if !p.IsInput() {
			n := float64(utf8.RuneCountInString(p.Text)) * CharWidth
			estimate += n
			x += n
			continue
		}
		estimate += InputEstimate
		if _, dup := s.slots[p.Input]; !dup {
			y := s.header/2 - 10
			if b.Kind == block.KindContainer {
				y = ContainerInputY
			}
			s.slots[p.Input] = geom.Point{X: x, Y: y}
		}
		x += InputAdvance
	}
	s.base = max(MinWidth, estimate)
	s.width, s.height = s.base, s.header

	if b.Kind.HasBody() {
		var stack float64
		for _, cid := range b.Nested {
			c, ok := e.ws.Get(cid)
			if !ok {
				continue
			}
			cs := e.measure(c)
			s.children[cid] = geom.Point{X: BodyInset, Y: s.header + BodyOffset + stack}
			stack += cs.height + StackGap
			s.width = max(s.width, BodyInset+cs.width)
		}
		s.body = max(MinBodyHeight, stack+BodyPad)
		s.height = s.header - BodyOverlap + s.body
	}

	for _, name := range b.InputOrder {
		in := b.Inputs[name]
		if in == nil || !in.Occupied() {
			continue
		}
		c, ok := e.ws.Get(in.ChildID)
		if !ok {
			continue
		}
		cs := e.measure(c)
		at := s.slots[name]
		s.children[c.ID] = at
		s.width = max(s.width, at.X+cs.width)
		s.height = max(s.height, at.Y+cs.height)
	}

	e.shapes[b.ID] = s
	return s
}
