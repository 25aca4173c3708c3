package workspace

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/blockstack/pkg/block"
)

// =============================================================================
// Attach
// =============================================================================

// AttachToContainer appends child to the tail of container's body.
//
// The child must be parentless and container must have a body. Attaching a
// block into itself or into one of its own descendants returns [ErrCycle].
// Ancestors of container are notified so they can resize.
func (w *Workspace) AttachToContainer(childID, containerID string) error {
	child, err := w.lookup(childID)
	if err != nil {
		return err
	}
	container, err := w.lookup(containerID)
	if err != nil {
		return err
	}
	if !child.Parent.IsNone() {
		return fmt.Errorf("%w: %s", ErrHasParent, childID)
	}
	if !container.Kind.HasBody() {
		return fmt.Errorf("%w: %s is a %s block", ErrNotContainer, containerID, container.Kind)
	}
	if childID == containerID || w.IsDescendant(containerID, childID) {
		return fmt.Errorf("%w: %s into %s", ErrCycle, childID, containerID)
	}

	container.Nested = append(container.Nested, childID)
	child.Parent = block.InContainer(containerID)
	w.logger.Debug("attached to container", "block", childID, "container", containerID, "index", len(container.Nested)-1)
	w.notifyUp(containerID)
	return nil
}

// AttachToInput plugs a reporter or boolean block into slot varname of parent.
//
// An occupied slot is rejected with [ErrSlotOccupied] and nothing changes;
// the occupant has to be detached first.
func (w *Workspace) AttachToInput(childID, parentID, varname string) error {
	child, err := w.lookup(childID)
	if err != nil {
		return err
	}
	parent, err := w.lookup(parentID)
	if err != nil {
		return err
	}
	if !child.Kind.IsValue() {
		return fmt.Errorf("%w: %s is a %s block", ErrNotValueBlock, childID, child.Kind)
	}
	in, ok := parent.Inputs[varname]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownInput, varname, parentID)
	}
	if in.Occupied() {
		return fmt.Errorf("%w: %s.%s holds %s", ErrSlotOccupied, parentID, varname, in.ChildID)
	}
	if !child.Parent.IsNone() {
		return fmt.Errorf("%w: %s", ErrHasParent, childID)
	}
	if childID == parentID || w.IsDescendant(parentID, childID) {
		return fmt.Errorf("%w: %s into %s.%s", ErrCycle, childID, parentID, varname)
	}

	in.ChildID = childID
	child.Parent = block.InInput(parentID, varname)
	w.logger.Debug("attached to input", "block", childID, "parent", parentID, "input", varname)
	w.notifyUp(parentID)
	return nil
}

// =============================================================================
// Detach
// =============================================================================

// Detach makes a block top-level again.
//
// The block's composed position is read from the geometry provider before
// the parent link is cut and becomes its top-level position, so the block
// stays where it was drawn. A container parent keeps the relative order of
// its remaining children; an input parent gets its literal text back.
// Detaching a parentless block does nothing.
func (w *Workspace) Detach(id string) error {
	b, err := w.lookup(id)
	if err != nil {
		return err
	}
	if b.Parent.IsNone() {
		return nil
	}

	if w.geometry != nil {
		if box, ok := w.geometry.BoundingBox(id); ok {
			b.Position = box.Origin()
		}
	}

	parent := b.Parent
	w.unlink(b)
	w.logger.Debug("detached", "block", id, "from", parent.ID, "kind", parent.Kind, "at", b.Position)
	if _, ok := w.blocks[parent.ID]; ok {
		w.notifyUp(parent.ID)
	}
	return nil
}

// DetachInputs detaches every block plugged into id's input slots.
func (w *Workspace) DetachInputs(id string) error {
	b, err := w.lookup(id)
	if err != nil {
		return err
	}
	for _, childID := range b.InputChildren() {
		if _, ok := w.blocks[childID]; !ok {
			// Dangling reference: clear the slot directly.
			for _, in := range b.Inputs {
				if in.ChildID == childID {
					in.ChildID = ""
				}
			}
			continue
		}
		if err := w.Detach(childID); err != nil {
			return err
		}
	}
	return nil
}

// unlink removes the edge between b and its parent and resets b.Parent.
// It does not notify.
func (w *Workspace) unlink(b *block.Instance) {
	parent, ok := w.blocks[b.Parent.ID]
	if ok {
		switch b.Parent.Kind {
		case block.ParentContainer:
			if i := slices.Index(parent.Nested, b.ID); i >= 0 {
				parent.Nested = slices.Delete(parent.Nested, i, i+1)
			}
		case block.ParentInput:
			if in := parent.Inputs[b.Parent.Var]; in != nil && in.ChildID == b.ID {
				in.ChildID = ""
			}
		}
	}
	b.Parent = block.NoParent
}

// =============================================================================
// Remove
// =============================================================================

// Remove deletes a block together with everything composed into it.
//
// Nested children are removed first (post-order), then input children. Every
// surviving reference to a removed id, in any body or input slot of the
// registry, is cleared in the same call; slots get their literal text back.
// Nothing of a partially removed subtree is observable afterwards.
func (w *Workspace) Remove(id string) error {
	b, err := w.lookup(id)
	if err != nil {
		return err
	}

	removed := make(map[string]bool)
	var postOrder []string
	w.collectSubtree(b, removed, &postOrder)

	affected := make(map[string]bool)
	for _, oid := range w.order {
		if removed[oid] {
			continue
		}
		other := w.blocks[oid]
		for _, in := range other.Inputs {
			if in.ChildID != "" && removed[in.ChildID] {
				in.ChildID = ""
				affected[oid] = true
			}
		}
		before := len(other.Nested)
		other.Nested = slices.DeleteFunc(other.Nested, func(c string) bool { return removed[c] })
		if len(other.Nested) != before {
			affected[oid] = true
		}
	}

	for _, rid := range postOrder {
		delete(w.blocks, rid)
	}
	w.order = slices.DeleteFunc(w.order, func(oid string) bool { return removed[oid] })
	if removed[w.dragging] {
		w.dragging = ""
	}

	w.logger.Debug("removed", "block", id, "count", len(postOrder))
	for _, oid := range w.order {
		if affected[oid] {
			w.notifyUp(oid)
		}
	}
	return nil
}

// collectSubtree appends b's subtree to out in post-order.
func (w *Workspace) collectSubtree(b *block.Instance, seen map[string]bool, out *[]string) {
	if seen[b.ID] {
		return
	}
	seen[b.ID] = true
	for _, cid := range b.Children() {
		if c, ok := w.blocks[cid]; ok {
			w.collectSubtree(c, seen, out)
		}
	}
	*out = append(*out, b.ID)
}

// Clear removes every block.
func (w *Workspace) Clear() {
	w.blocks = make(map[string]*block.Instance)
	w.order = nil
	w.dragging = ""
}

// =============================================================================
// Queries
// =============================================================================

// Parent returns the parent block of id, if any.
func (w *Workspace) Parent(id string) (*block.Instance, bool) {
	b, ok := w.blocks[id]
	if !ok || b.Parent.IsNone() {
		return nil, false
	}
	p, ok := w.blocks[b.Parent.ID]
	return p, ok
}

// Ancestors returns the ids above id, innermost first.
func (w *Workspace) Ancestors(id string) []string {
	var out []string
	b, ok := w.blocks[id]
	for ok && !b.Parent.IsNone() && len(out) <= len(w.order) {
		out = append(out, b.Parent.ID)
		b, ok = w.blocks[b.Parent.ID]
	}
	return out
}

// Depth returns the number of ancestors of id.
func (w *Workspace) Depth(id string) int { return len(w.Ancestors(id)) }

// IsDescendant reports whether id sits anywhere below ancestor, through
// container bodies or input slots.
func (w *Workspace) IsDescendant(id, ancestor string) bool {
	return slices.Contains(w.Ancestors(id), ancestor)
}

// Descendants returns every id below id in pre-order.
func (w *Workspace) Descendants(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	var walk func(string)
	walk = func(cur string) {
		b, ok := w.blocks[cur]
		if !ok {
			return
		}
		for _, cid := range b.Children() {
			if seen[cid] {
				continue
			}
			seen[cid] = true
			out = append(out, cid)
			walk(cid)
		}
	}
	walk(id)
	return out
}

// =============================================================================
// Layout Notification
// =============================================================================

// notifyUp tells the listener that id's children changed, then does the
// same for every ancestor of id.
func (w *Workspace) notifyUp(id string) {
	if w.listener == nil {
		return
	}
	w.listener.OnChildSetChanged(id)
	for _, aid := range w.Ancestors(id) {
		w.listener.OnChildSetChanged(aid)
	}
}

// NotifyAll asks the listener to recompute every container, innermost
// (deepest) first.
func (w *Workspace) NotifyAll() {
	if w.listener == nil {
		return
	}
	containers := w.Containers()
	slices.SortStableFunc(containers, func(a, b *block.Instance) int {
		return w.Depth(b.ID) - w.Depth(a.ID)
	})
	for _, c := range containers {
		w.listener.OnChildSetChanged(c.ID)
	}
}

// =============================================================================
// Invariants
// =============================================================================

// Check verifies the structural invariants of the graph and returns every
// violation joined into one error, or nil.
//
// Checked: each block has exactly one consistent parent representation,
// parent and child edges agree on both ends, no id is referenced twice, no
// block is its own ancestor, and no reference dangles.
func (w *Workspace) Check() error {
	var errs []error
	claimed := make(map[string]string)

	claim := func(child, by string) {
		if prev, ok := claimed[child]; ok {
			errs = append(errs, fmt.Errorf("%s claimed by both %s and %s", child, prev, by))
			return
		}
		claimed[child] = by
	}

	for _, id := range w.order {
		b := w.blocks[id]
		for _, cid := range b.Nested {
			claim(cid, id)
			c, ok := w.blocks[cid]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("%s: nested child %s: %w", id, cid, ErrBlockNotFound))
			case c.Parent != block.InContainer(id):
				errs = append(errs, fmt.Errorf("%s: nested child %s has parent %v", id, cid, c.Parent))
			}
		}
		for _, name := range b.InputOrder {
			in := b.Inputs[name]
			if in == nil || !in.Occupied() {
				continue
			}
			claim(in.ChildID, id)
			c, ok := w.blocks[in.ChildID]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("%s.%s: child %s: %w", id, name, in.ChildID, ErrBlockNotFound))
			case c.Parent != block.InInput(id, name):
				errs = append(errs, fmt.Errorf("%s.%s: child %s has parent %v", id, name, in.ChildID, c.Parent))
			}
		}
	}

	for _, id := range w.order {
		b := w.blocks[id]
		if b.Parent.IsNone() {
			if by, ok := claimed[id]; ok {
				errs = append(errs, fmt.Errorf("%s: parentless but referenced by %s", id, by))
			}
			continue
		}
		if _, ok := w.blocks[b.Parent.ID]; !ok {
			errs = append(errs, fmt.Errorf("%s: parent %s: %w", id, b.Parent.ID, ErrBlockNotFound))
			continue
		}
		if claimed[id] != b.Parent.ID {
			errs = append(errs, fmt.Errorf("%s: parent %s does not reference it", id, b.Parent.ID))
		}
		if len(w.Ancestors(id)) > len(w.order) || slices.Contains(w.Ancestors(id), id) {
			errs = append(errs, fmt.Errorf("%s: %w", id, ErrCycle))
		}
	}

	if len(w.order) != len(w.blocks) {
		errs = append(errs, fmt.Errorf("registry order has %d ids for %d blocks", len(w.order), len(w.blocks)))
	}
	return errors.Join(errs...)
}
