// Package snap decides where a dragged block lands.
//
// A [Resolver] evaluates candidates in strict priority order and returns the
// first match:
//
//  1. an unoccupied input slot under the pointer (reporter and boolean blocks)
//  2. the body of a container under the pointer, deepest container first
//  3. a position directly below a command or container block
//  4. nothing: the block floats where it was released
//
// Below-stack placement is positional only. The block lands under the
// candidate on the top-level surface and no composition edge is recorded.
//
// Deletion is checked separately with [Resolver.ShouldDelete] and takes
// precedence over every snap.
package snap

import (
	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/workspace"
)

// Kind identifies the type of snap target.
type Kind int

const (
	None      Kind = iota // no target, the block floats
	Input                 // plug into an input slot
	Container             // append to a container body
	Below                 // place under a block, positional only
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Container:
		return "container"
	case Below:
		return "below"
	default:
		return "none"
	}
}

// Target is the result of a resolution.
//
// ParentID is the slot owner for Input, the container for Container and the
// block placed under for Below. Var is the slot name for Input. Position is
// the top-level position for Below.
type Target struct {
	Kind     Kind
	ParentID string
	Var      string
	Position geom.Point
}

// Options holds the hit-testing tolerances.
type Options struct {
	// ContainerMargin expands container body rectangles on every side.
	ContainerMargin float64
	// BelowTolerance is the horizontal slack past a candidate's left and right edges.
	BelowTolerance float64
	// BelowAbove is how far above a candidate's bottom edge the band starts.
	BelowAbove float64
	// BelowUnder is how far below a candidate's bottom edge the band ends.
	BelowUnder float64
	// BelowGap is the vertical gap between a candidate and a block placed under it.
	BelowGap float64
	// DeleteMargin expands the workspace bounds before the outside test.
	DeleteMargin float64
}

// DefaultOptions returns the tolerances of the reference renderer.
func DefaultOptions() Options {
	return Options{
		ContainerMargin: 8,
		BelowTolerance:  10,
		BelowAbove:      16,
		BelowUnder:      20,
		BelowGap:        6,
		DeleteMargin:    6,
	}
}

// Resolver hit-tests pointer samples against a workspace.
type Resolver struct {
	ws   *workspace.Workspace
	geo  geom.Geometry
	opts Options
}

// NewResolver creates a resolver. geo is the rendering layer's geometry.
func NewResolver(ws *workspace.Workspace, geo geom.Geometry, opts Options) *Resolver {
	return &Resolver{ws: ws, geo: geo, opts: opts}
}

// Options returns the tolerances in use.
func (r *Resolver) Options() Options { return r.opts }

// ShouldDelete reports whether a release at pointer deletes the block: the
// pointer is outside the margin-expanded bounds or over the trash target.
func (r *Resolver) ShouldDelete(pointer geom.Point) bool {
	if !r.geo.Bounds().Expand(r.opts.DeleteMargin).Contains(pointer) {
		return true
	}
	if trash, ok := r.geo.TrashBox(); ok && trash.Contains(pointer) {
		return true
	}
	return false
}

// Resolve returns the snap target for the dragged block at pointer.
func (r *Resolver) Resolve(draggedID string, pointer geom.Point) Target {
	dragged, ok := r.ws.Get(draggedID)
	if !ok {
		return Target{}
	}
	excluded := make(map[string]bool)
	excluded[draggedID] = true
	for _, id := range r.ws.Descendants(draggedID) {
		excluded[id] = true
	}

	if dragged.Kind.IsValue() {
		if t, ok := r.resolveInput(pointer, excluded); ok {
			return t
		}
	}
	if t, ok := r.resolveContainer(pointer, excluded); ok {
		return t
	}
	if t, ok := r.resolveBelow(pointer, excluded); ok {
		return t
	}
	return Target{}
}

func (r *Resolver) resolveInput(pointer geom.Point, excluded map[string]bool) (Target, bool) {
	for _, b := range r.ws.Blocks() {
		if excluded[b.ID] {
			continue
		}
		for _, name := range b.InputOrder {
			if b.Inputs[name].Occupied() {
				continue
			}
			slot, ok := r.geo.SlotBox(b.ID, name)
			if ok && slot.Contains(pointer) {
				return Target{Kind: Input, ParentID: b.ID, Var: name}, true
			}
		}
	}
	return Target{}, false
}

func (r *Resolver) resolveContainer(pointer geom.Point, excluded map[string]bool) (Target, bool) {
	var (
		best  *block.Instance
		depth = -1
	)
	for _, c := range r.ws.Containers() {
		if excluded[c.ID] {
			continue
		}
		body, ok := r.geo.BodyBox(c.ID)
		if !ok || !body.Expand(r.opts.ContainerMargin).Contains(pointer) {
			continue
		}
		if d := r.ws.Depth(c.ID); d > depth {
			best, depth = c, d
		}
	}
	if best == nil {
		return Target{}, false
	}
	return Target{Kind: Container, ParentID: best.ID}, true
}

func (r *Resolver) resolveBelow(pointer geom.Point, excluded map[string]bool) (Target, bool) {
	o := r.opts
	for _, b := range r.ws.Blocks() {
		if excluded[b.ID] || !b.Kind.IsStackable() {
			continue
		}
		box, ok := r.geo.BoundingBox(b.ID)
		if !ok {
			continue
		}
		if pointer.X > box.Left-o.BelowTolerance && pointer.X < box.Right+o.BelowTolerance &&
			pointer.Y > box.Bottom-o.BelowAbove && pointer.Y < box.Bottom+o.BelowUnder {
			return Target{
				Kind:     Below,
				ParentID: b.ID,
				Position: geom.Point{X: box.Left, Y: box.Bottom + o.BelowGap},
			}, true
		}
	}
	return Target{}, false
}
