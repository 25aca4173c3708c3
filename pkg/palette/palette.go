package palette

import (
	"slices"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/errors"
)

// Palette is an ordered list of block definitions.
//
// Definitions are copied in and out, so callers never share template maps
// with the palette or with instances made from it.
type Palette struct {
	defs []block.Definition
}

// New creates a palette from defs, validating each one.
func New(defs ...block.Definition) (*Palette, error) {
	p := &Palette{}
	for _, d := range defs {
		if err := p.Add(d); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Default returns a palette holding [Defaults].
func Default() *Palette {
	return &Palette{defs: Defaults()}
}

// Len returns the number of definitions.
func (p *Palette) Len() int { return len(p.defs) }

// Definitions returns a copy of every definition in palette order.
func (p *Palette) Definitions() []block.Definition {
	out := make([]block.Definition, len(p.defs))
	for i, d := range p.defs {
		out[i] = d.Clone()
	}
	return out
}

// Get returns the definition at index.
func (p *Palette) Get(index int) (block.Definition, bool) {
	if index < 0 || index >= len(p.defs) {
		return block.Definition{}, false
	}
	return p.defs[index].Clone(), true
}

// Find returns the first definition whose label or display name equals label.
func (p *Palette) Find(label string) (block.Definition, int, bool) {
	for i, d := range p.defs {
		if d.Label == label || block.DisplayName(d.Label) == label {
			return d.Clone(), i, true
		}
	}
	return block.Definition{}, -1, false
}

// Add validates def and appends it.
func (p *Palette) Add(def block.Definition) error {
	if err := def.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDefinition, err, "add definition")
	}
	p.defs = append(p.defs, def.Clone())
	return nil
}

// Remove deletes and returns the definition at index. Blocks already
// instantiated from it are unaffected.
func (p *Palette) Remove(index int) (block.Definition, error) {
	if index < 0 || index >= len(p.defs) {
		return block.Definition{}, errors.New(errors.ErrCodeNotFound,
			"palette index %d out of range (have %d definitions)", index, len(p.defs))
	}
	d := p.defs[index]
	p.defs = slices.Delete(p.defs, index, index+1)
	return d, nil
}

// Replace swaps the whole list. Nothing changes if any definition is invalid.
func (p *Palette) Replace(defs []block.Definition) error {
	next, err := New(defs...)
	if err != nil {
		return err
	}
	p.defs = next.defs
	return nil
}
