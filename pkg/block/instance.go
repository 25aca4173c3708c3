package block

import (
	"maps"
	"slices"

	"github.com/matzehuels/blockstack/pkg/geom"
)

// ParentKind tells which of the three parent representations an instance has.
type ParentKind int

const (
	// ParentNone marks a top-level block positioned directly on the workspace.
	ParentNone ParentKind = iota
	// ParentContainer marks a block stacked in a container's body.
	ParentContainer
	// ParentInput marks a block plugged into another block's input slot.
	ParentInput
)

// String returns a short name for the parent kind.
func (k ParentKind) String() string {
	switch k {
	case ParentContainer:
		return "container"
	case ParentInput:
		return "input"
	default:
		return "none"
	}
}

// Parent is the single parent link of an instance. Var is set only for
// ParentInput; ID is empty only for ParentNone.
type Parent struct {
	Kind ParentKind
	ID   string
	Var  string
}

// NoParent is the parent value of a top-level block.
var NoParent = Parent{}

// InContainer returns the parent link for a block stacked in container id.
func InContainer(id string) Parent { return Parent{Kind: ParentContainer, ID: id} }

// InInput returns the parent link for a block plugged into slot varname of id.
func InInput(id, varname string) Parent { return Parent{Kind: ParentInput, ID: id, Var: varname} }

// IsNone reports whether the block is top-level.
func (p Parent) IsNone() bool { return p.Kind == ParentNone }

// Input is one input slot. While ChildID is set the literal is hidden but
// kept, so detaching the child brings the typed text back.
type Input struct {
	Literal string
	ChildID string
}

// Occupied reports whether a block is plugged into the slot.
func (in *Input) Occupied() bool { return in.ChildID != "" }

// Instance is a live block in a workspace.
//
// Instances are mutated only through [workspace.Workspace]; the exported
// fields are readable by renderers, serializers and generators.
type Instance struct {
	ID           string
	Label        string
	Kind         Kind
	Color        string
	Templates    map[string]string
	ContainerVar string

	// Position is the top-left corner on the workspace. It is meaningful only
	// while Parent is ParentNone.
	Position geom.Point

	// Inputs is keyed by placeholder name; keys never change after creation.
	Inputs map[string]*Input
	// InputOrder lists input names in label order.
	InputOrder []string

	// Nested is the authoritative stacking order of a container's body.
	Nested []string

	Parent Parent
}

// New creates a parentless instance from a definition.
func New(def Definition, id string, pos geom.Point) *Instance {
	names := InputNames(def.Label)
	inputs := make(map[string]*Input, len(names))
	for _, n := range names {
		inputs[n] = &Input{}
	}
	return &Instance{
		ID:           id,
		Label:        def.Label,
		Kind:         def.Kind,
		Color:        def.Color,
		Templates:    maps.Clone(def.Templates),
		ContainerVar: ContainerVarOf(def),
		Position:     pos,
		Inputs:       inputs,
		InputOrder:   names,
	}
}

// Definition returns a definition equivalent to the one the instance was made from.
func (b *Instance) Definition() Definition {
	return Definition{
		Label:        b.Label,
		Kind:         b.Kind,
		Color:        b.Color,
		Templates:    maps.Clone(b.Templates),
		ContainerVar: b.ContainerVar,
	}
}

// Template returns the template for lang and whether it was present and non-empty.
func (b *Instance) Template(lang string) (string, bool) {
	t, ok := b.Templates[lang]
	return t, ok && t != ""
}

// InputChildren returns the ids plugged into input slots, in label order.
func (b *Instance) InputChildren() []string {
	var ids []string
	for _, name := range b.InputOrder {
		if in := b.Inputs[name]; in != nil && in.Occupied() {
			ids = append(ids, in.ChildID)
		}
	}
	return ids
}

// Children returns every direct child: nested body first, then input children.
func (b *Instance) Children() []string {
	return append(slices.Clone(b.Nested), b.InputChildren()...)
}
