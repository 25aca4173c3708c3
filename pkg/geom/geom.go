// Package geom provides the small amount of geometry the block engine needs.
//
// The engine never measures anything itself. Rendering layers (an SVG canvas,
// a terminal view, the reference [layout] engine) implement [Geometry] and the
// snap resolver, drag session and detach logic consume it.
//
// All coordinates are workspace coordinates with y growing downward, so a
// [Rect] has Top <= Bottom.
//
// [layout]: github.com/matzehuels/blockstack/pkg/layout
package geom

import "fmt"

// Point is a position in workspace coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// String formats the point as "x,y".
func (p Point) String() string { return fmt.Sprintf("%g,%g", p.X, p.Y) }

// Rect is an axis-aligned rectangle.
type Rect struct {
	Left, Top     float64
	Right, Bottom float64
}

// RectAt builds a rectangle from an origin and a size.
func RectAt(origin Point, width, height float64) Rect {
	return Rect{Left: origin.X, Top: origin.Y, Right: origin.X + width, Bottom: origin.Y + height}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.Left, Y: r.Top} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Expand grows r by margin on every side. A negative margin shrinks it.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		Left:   r.Left - margin,
		Top:    r.Top - margin,
		Right:  r.Right + margin,
		Bottom: r.Bottom + margin,
	}
}

// Translate moves r by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{Left: r.Left + d.X, Top: r.Top + d.Y, Right: r.Right + d.X, Bottom: r.Bottom + d.Y}
}

// Geometry is the capability a rendering layer supplies to the engine.
//
// Every box is the composed (world) box in workspace coordinates. Methods
// return false when the block or slot is unknown to the renderer.
type Geometry interface {
	// BoundingBox returns the full box of a block including nested content.
	BoundingBox(id string) (Rect, bool)

	// SlotBox returns the box of the input slot varname on block id.
	SlotBox(id, varname string) (Rect, bool)

	// BodyBox returns the inner body rectangle of a container or function block.
	BodyBox(id string) (Rect, bool)

	// Bounds returns the drawing surface.
	Bounds() Rect

	// TrashBox returns the deletion target, if the renderer shows one.
	TrashBox() (Rect, bool)
}
