package workspace

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/geom"
)

var (
	sayDef    = block.Definition{Label: "say %text", Kind: block.KindCommand, Templates: map[string]string{"javascript": "console.log(%text);"}}
	repeatDef = block.Definition{Label: "repeat %times times", Kind: block.KindContainer, Templates: map[string]string{"javascript": "for (;;) {\n%body\n}"}}
	addDef    = block.Definition{Label: "%a + %b", Kind: block.KindReporter}
	gtDef     = block.Definition{Label: "%a > %b", Kind: block.KindBoolean}
)

// seqIDs returns an id generator yielding b1, b2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("b%d", n)
	}
}

func newTestWorkspace(opts ...Option) *Workspace {
	return New(append([]Option{WithIDGenerator(seqIDs())}, opts...)...)
}

type recorder struct{ calls []string }

func (r *recorder) OnChildSetChanged(id string) { r.calls = append(r.calls, id) }

type fakeGeometry map[string]geom.Rect

func (g fakeGeometry) BoundingBox(id string) (geom.Rect, bool) {
	r, ok := g[id]
	return r, ok
}

func (g fakeGeometry) SlotBox(string, string) (geom.Rect, bool) { return geom.Rect{}, false }
func (g fakeGeometry) BodyBox(string) (geom.Rect, bool)         { return geom.Rect{}, false }
func (g fakeGeometry) Bounds() geom.Rect                        { return geom.Rect{Right: 1000, Bottom: 1000} }
func (g fakeGeometry) TrashBox() (geom.Rect, bool)              { return geom.Rect{}, false }

func mustCheck(t *testing.T, w *Workspace) {
	t.Helper()
	if err := w.Check(); err != nil {
		t.Fatalf("Check() = %v", err)
	}
}

func TestInstantiate(t *testing.T) {
	w := newTestWorkspace()
	b := w.Instantiate(repeatDef, geom.Point{X: 10, Y: 20})

	if b.ID != "b1" {
		t.Errorf("ID = %q, want b1", b.ID)
	}
	if !b.Parent.IsNone() {
		t.Errorf("Parent = %v, want none", b.Parent)
	}
	if got := b.InputOrder; !slices.Equal(got, []string{"times"}) {
		t.Errorf("InputOrder = %v, want [times]", got)
	}
	if b.ContainerVar != "body" {
		t.Errorf("ContainerVar = %q, want body", b.ContainerVar)
	}
	if got, ok := w.Get("b1"); !ok || got != b {
		t.Error("Get(b1) should return the instantiated block")
	}

	// Instances own their templates.
	b.Templates["javascript"] = "changed"
	if repeatDef.Templates["javascript"] == "changed" {
		t.Error("editing an instance template must not touch the definition")
	}
}

func TestInstantiateDefaultIDs(t *testing.T) {
	w := New()
	a := w.Instantiate(sayDef, geom.Point{})
	b := w.Instantiate(sayDef, geom.Point{})
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids %q and %q should be unique and non-empty", a.ID, b.ID)
	}
}

func TestAdd(t *testing.T) {
	w := newTestWorkspace()
	if err := w.Add(block.New(sayDef, "x", geom.Point{})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := w.Add(block.New(sayDef, "x", geom.Point{})); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Add duplicate = %v, want ErrDuplicateID", err)
	}
	if err := w.Add(block.New(sayDef, "", geom.Point{})); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Add empty = %v, want ErrInvalidID", err)
	}
}

func TestAttachToContainer(t *testing.T) {
	rec := &recorder{}
	w := newTestWorkspace(WithLayoutListener(rec))
	outer := w.Instantiate(repeatDef, geom.Point{})
	inner := w.Instantiate(repeatDef, geom.Point{})
	say1 := w.Instantiate(sayDef, geom.Point{})
	say2 := w.Instantiate(sayDef, geom.Point{})

	if err := w.AttachToContainer(inner.ID, outer.ID); err != nil {
		t.Fatal(err)
	}
	rec.calls = nil
	if err := w.AttachToContainer(say1.ID, inner.ID); err != nil {
		t.Fatal(err)
	}
	if err := w.AttachToContainer(say2.ID, inner.ID); err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(inner.Nested, []string{say1.ID, say2.ID}) {
		t.Errorf("Nested = %v, want [%s %s]", inner.Nested, say1.ID, say2.ID)
	}
	if say1.Parent != block.InContainer(inner.ID) {
		t.Errorf("Parent = %v, want container %s", say1.Parent, inner.ID)
	}
	want := []string{inner.ID, outer.ID, inner.ID, outer.ID}
	if !slices.Equal(rec.calls, want) {
		t.Errorf("notifications = %v, want %v", rec.calls, want)
	}
	if got := w.Roots(); len(got) != 1 || got[0] != outer {
		t.Errorf("Roots() = %v, want only %s", got, outer.ID)
	}
	mustCheck(t, w)
}

func TestAttachToContainerRejects(t *testing.T) {
	w := newTestWorkspace()
	outer := w.Instantiate(repeatDef, geom.Point{})
	inner := w.Instantiate(repeatDef, geom.Point{})
	say := w.Instantiate(sayDef, geom.Point{})
	rep := w.Instantiate(addDef, geom.Point{})
	if err := w.AttachToContainer(inner.ID, outer.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		child     string
		container string
		want      error
	}{
		{"self", outer.ID, outer.ID, ErrCycle},
		{"into descendant", outer.ID, inner.ID, ErrCycle},
		{"already parented", inner.ID, outer.ID, ErrHasParent},
		{"not a container", rep.ID, say.ID, ErrNotContainer},
		{"unknown child", "nope", outer.ID, ErrBlockNotFound},
		{"unknown container", say.ID, "nope", ErrBlockNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := w.AttachToContainer(tt.child, tt.container); !errors.Is(err, tt.want) {
				t.Errorf("AttachToContainer(%s, %s) = %v, want %v", tt.child, tt.container, err, tt.want)
			}
		})
	}
	mustCheck(t, w)
}

func TestAttachToInput(t *testing.T) {
	w := newTestWorkspace()
	say := w.Instantiate(sayDef, geom.Point{})
	sum := w.Instantiate(addDef, geom.Point{})
	cmp := w.Instantiate(gtDef, geom.Point{})
	_ = w.SetLiteral(say.ID, "text", `"hi"`)

	if err := w.AttachToInput(sum.ID, say.ID, "text"); err != nil {
		t.Fatal(err)
	}
	if got := say.Inputs["text"].ChildID; got != sum.ID {
		t.Errorf("ChildID = %q, want %q", got, sum.ID)
	}
	if sum.Parent != block.InInput(say.ID, "text") {
		t.Errorf("Parent = %v, want input %s.text", sum.Parent, say.ID)
	}

	// Occupied slot: rejected, nothing changes.
	err := w.AttachToInput(cmp.ID, say.ID, "text")
	if !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("AttachToInput occupied = %v, want ErrSlotOccupied", err)
	}
	if say.Inputs["text"].ChildID != sum.ID || !cmp.Parent.IsNone() {
		t.Error("rejected attach must not change state")
	}

	// After detaching the occupant the slot accepts the new block and the
	// literal survived underneath.
	if err := w.Detach(sum.ID); err != nil {
		t.Fatal(err)
	}
	if got := say.Inputs["text"].Literal; got != `"hi"` {
		t.Errorf("Literal = %q, want %q", got, `"hi"`)
	}
	if err := w.AttachToInput(cmp.ID, say.ID, "text"); err != nil {
		t.Errorf("AttachToInput after detach = %v", err)
	}
	mustCheck(t, w)
}

func TestAttachToInputRejects(t *testing.T) {
	w := newTestWorkspace()
	say := w.Instantiate(sayDef, geom.Point{})
	sum := w.Instantiate(addDef, geom.Point{})
	inner := w.Instantiate(addDef, geom.Point{})
	if err := w.AttachToInput(inner.ID, sum.ID, "a"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		child  string
		parent string
		input  string
		want   error
	}{
		{"command in slot", say.ID, sum.ID, "b", ErrNotValueBlock},
		{"unknown input", sum.ID, say.ID, "nope", ErrUnknownInput},
		{"self", sum.ID, sum.ID, "b", ErrCycle},
		{"into descendant", sum.ID, inner.ID, "a", ErrCycle},
		{"already parented", inner.ID, say.ID, "text", ErrHasParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := w.AttachToInput(tt.child, tt.parent, tt.input); !errors.Is(err, tt.want) {
				t.Errorf("AttachToInput(%s, %s, %s) = %v, want %v", tt.child, tt.parent, tt.input, err, tt.want)
			}
		})
	}
	mustCheck(t, w)
}

func TestDetachPreservesOrderAndPosition(t *testing.T) {
	geo := fakeGeometry{}
	rec := &recorder{}
	w := newTestWorkspace(WithGeometry(geo), WithLayoutListener(rec))
	loop := w.Instantiate(repeatDef, geom.Point{X: 100, Y: 100})
	a := w.Instantiate(sayDef, geom.Point{})
	b := w.Instantiate(sayDef, geom.Point{})
	c := w.Instantiate(sayDef, geom.Point{})
	for _, id := range []string{a.ID, b.ID, c.ID} {
		if err := w.AttachToContainer(id, loop.ID); err != nil {
			t.Fatal(err)
		}
	}
	geo[b.ID] = geom.RectAt(geom.Point{X: 110, Y: 172}, 140, 30)

	rec.calls = nil
	if err := w.Detach(b.ID); err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(loop.Nested, []string{a.ID, c.ID}) {
		t.Errorf("Nested = %v, want [%s %s]", loop.Nested, a.ID, c.ID)
	}
	if want := (geom.Point{X: 110, Y: 172}); b.Position != want {
		t.Errorf("Position = %v, want %v", b.Position, want)
	}
	if !b.Parent.IsNone() {
		t.Errorf("Parent = %v, want none", b.Parent)
	}
	if !slices.Equal(rec.calls, []string{loop.ID}) {
		t.Errorf("notifications = %v, want [%s]", rec.calls, loop.ID)
	}

	// Detaching a top-level block is a no-op.
	if err := w.Detach(b.ID); err != nil {
		t.Errorf("Detach parentless = %v", err)
	}
	mustCheck(t, w)
}

func TestDetachInputs(t *testing.T) {
	w := newTestWorkspace()
	sum := w.Instantiate(addDef, geom.Point{})
	x := w.Instantiate(addDef, geom.Point{})
	y := w.Instantiate(gtDef, geom.Point{})
	_ = w.AttachToInput(x.ID, sum.ID, "a")
	_ = w.AttachToInput(y.ID, sum.ID, "b")

	if err := w.DetachInputs(sum.ID); err != nil {
		t.Fatal(err)
	}
	if got := sum.InputChildren(); len(got) != 0 {
		t.Errorf("InputChildren() = %v, want none", got)
	}
	if len(w.Roots()) != 3 {
		t.Errorf("Roots() = %d, want 3", len(w.Roots()))
	}
	mustCheck(t, w)
}

func TestRemoveCascade(t *testing.T) {
	rec := &recorder{}
	w := newTestWorkspace(WithLayoutListener(rec))
	top := w.Instantiate(repeatDef, geom.Point{})
	mid := w.Instantiate(repeatDef, geom.Point{})
	leaf := w.Instantiate(sayDef, geom.Point{})
	plug := w.Instantiate(addDef, geom.Point{})
	keep := w.Instantiate(sayDef, geom.Point{})
	other := w.Instantiate(sayDef, geom.Point{})

	_ = w.AttachToContainer(mid.ID, top.ID)
	_ = w.AttachToContainer(keep.ID, top.ID)
	_ = w.AttachToContainer(leaf.ID, mid.ID)
	_ = w.AttachToInput(plug.ID, leaf.ID, "text")
	mustCheck(t, w)

	rec.calls = nil
	if err := w.Remove(mid.ID); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{mid.ID, leaf.ID, plug.ID} {
		if _, ok := w.Get(id); ok {
			t.Errorf("%s should be removed", id)
		}
	}
	if !slices.Equal(top.Nested, []string{keep.ID}) {
		t.Errorf("Nested = %v, want [%s]", top.Nested, keep.ID)
	}
	if w.Len() != 3 {
		t.Errorf("Len() = %d, want 3", w.Len())
	}
	if !slices.Equal(rec.calls, []string{top.ID}) {
		t.Errorf("notifications = %v, want [%s]", rec.calls, top.ID)
	}
	_ = other
	mustCheck(t, w)
}

func TestRemoveScrubsInputReference(t *testing.T) {
	w := newTestWorkspace()
	say := w.Instantiate(sayDef, geom.Point{})
	sum := w.Instantiate(addDef, geom.Point{})
	_ = w.SetLiteral(say.ID, "text", "42")
	_ = w.AttachToInput(sum.ID, say.ID, "text")

	if err := w.Remove(sum.ID); err != nil {
		t.Fatal(err)
	}
	in := say.Inputs["text"]
	if in.Occupied() {
		t.Errorf("ChildID = %q, want empty", in.ChildID)
	}
	if in.Literal != "42" {
		t.Errorf("Literal = %q, want 42", in.Literal)
	}
	if err := w.Remove("missing"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("Remove(missing) = %v, want ErrBlockNotFound", err)
	}
	mustCheck(t, w)
}

func TestRemoveReleasesDragLock(t *testing.T) {
	w := newTestWorkspace()
	b := w.Instantiate(sayDef, geom.Point{})
	if err := w.BeginDrag(b.ID); err != nil {
		t.Fatal(err)
	}
	_ = w.Remove(b.ID)
	if !w.Settled() {
		t.Error("removing the dragged block should release the drag lock")
	}
}

func TestDragLock(t *testing.T) {
	w := newTestWorkspace()
	a := w.Instantiate(sayDef, geom.Point{})
	b := w.Instantiate(sayDef, geom.Point{})

	if err := w.BeginDrag(a.ID); err != nil {
		t.Fatal(err)
	}
	if err := w.BeginDrag(b.ID); !errors.Is(err, ErrDragInProgress) {
		t.Errorf("second BeginDrag = %v, want ErrDragInProgress", err)
	}
	if w.Dragging() != a.ID {
		t.Errorf("Dragging() = %q, want %q", w.Dragging(), a.ID)
	}
	w.EndDrag()
	if err := w.BeginDrag(b.ID); err != nil {
		t.Errorf("BeginDrag after EndDrag = %v", err)
	}
}

func TestSetPosition(t *testing.T) {
	w := newTestWorkspace()
	loop := w.Instantiate(repeatDef, geom.Point{})
	say := w.Instantiate(sayDef, geom.Point{X: 5, Y: 5})
	_ = w.AttachToContainer(say.ID, loop.ID)

	_ = w.SetPosition(loop.ID, geom.Point{X: 50, Y: 60})
	_ = w.SetPosition(say.ID, geom.Point{X: 999, Y: 999})

	if want := (geom.Point{X: 50, Y: 60}); loop.Position != want {
		t.Errorf("Position = %v, want %v", loop.Position, want)
	}
	if want := (geom.Point{X: 5, Y: 5}); say.Position != want {
		t.Errorf("nested Position = %v, want unchanged %v", say.Position, want)
	}
	if err := w.SetLiteral(say.ID, "nope", "x"); !errors.Is(err, ErrUnknownInput) {
		t.Errorf("SetLiteral(nope) = %v, want ErrUnknownInput", err)
	}
}

func TestAncestry(t *testing.T) {
	w := newTestWorkspace()
	a := w.Instantiate(repeatDef, geom.Point{})
	b := w.Instantiate(repeatDef, geom.Point{})
	c := w.Instantiate(sayDef, geom.Point{})
	d := w.Instantiate(addDef, geom.Point{})
	_ = w.AttachToContainer(b.ID, a.ID)
	_ = w.AttachToContainer(c.ID, b.ID)
	_ = w.AttachToInput(d.ID, c.ID, "text")

	if got := w.Ancestors(d.ID); !slices.Equal(got, []string{c.ID, b.ID, a.ID}) {
		t.Errorf("Ancestors(d) = %v", got)
	}
	if got := w.Depth(d.ID); got != 3 {
		t.Errorf("Depth(d) = %d, want 3", got)
	}
	if !w.IsDescendant(d.ID, a.ID) || w.IsDescendant(a.ID, d.ID) {
		t.Error("IsDescendant direction wrong")
	}
	if got := w.Descendants(a.ID); !slices.Equal(got, []string{b.ID, c.ID, d.ID}) {
		t.Errorf("Descendants(a) = %v", got)
	}
	if p, ok := w.Parent(c.ID); !ok || p != b {
		t.Errorf("Parent(c) = %v, want %s", p, b.ID)
	}
}

func TestNotifyAllInnermostFirst(t *testing.T) {
	rec := &recorder{}
	w := newTestWorkspace()
	outer := w.Instantiate(repeatDef, geom.Point{})
	inner := w.Instantiate(repeatDef, geom.Point{})
	_ = w.AttachToContainer(inner.ID, outer.ID)

	w.SetLayoutListener(rec)
	w.NotifyAll()
	if !slices.Equal(rec.calls, []string{inner.ID, outer.ID}) {
		t.Errorf("NotifyAll order = %v, want [%s %s]", rec.calls, inner.ID, outer.ID)
	}
}

func TestCheckDetectsCorruption(t *testing.T) {
	w := newTestWorkspace()
	loop := w.Instantiate(repeatDef, geom.Point{})
	say := w.Instantiate(sayDef, geom.Point{})
	_ = w.AttachToContainer(say.ID, loop.ID)

	// One-sided edge.
	say.Parent = block.NoParent
	if err := w.Check(); err == nil {
		t.Error("Check() should report a parentless block still referenced by a body")
	}

	// Self-cycle.
	say.Parent = block.InContainer(loop.ID)
	loop.Parent = block.InContainer(loop.ID)
	loop.Nested = append(loop.Nested, loop.ID)
	if err := w.Check(); !errors.Is(err, ErrCycle) {
		t.Errorf("Check() = %v, want ErrCycle", err)
	}
}
