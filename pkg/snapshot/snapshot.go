package snapshot

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/errors"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/workspace"
)

// Part is a bit set of snapshot sections.
type Part uint8

const (
	PartDefinitions Part = 1 << iota // palette definitions
	PartInstances                    // workspace blocks
	PartCode                         // generated code and its language

	PartNone Part = 0
	PartAll       = PartDefinitions | PartInstances | PartCode
)

// Export kinds accepted by [ParseKind].
const (
	KindDefinitions = "definitions"
	KindInstances   = "instances"
	KindProject     = "project"
)

// Kinds lists the export kinds.
var Kinds = []string{KindDefinitions, KindInstances, KindProject}

// ParseKind maps an export kind name to the sections it carries.
func ParseKind(kind string) (Part, error) {
	switch strings.ToLower(kind) {
	case KindDefinitions, "blocks":
		return PartDefinitions, nil
	case KindInstances, "workspace":
		return PartInstances, nil
	case KindProject:
		return PartAll, nil
	}
	return PartNone, errors.New(errors.ErrCodeInvalidFormat,
		"unknown export kind %q (want one of: %s)", kind, strings.Join(Kinds, ", "))
}

// Snapshot is a serializable copy of palette definitions and workspace blocks.
//
// Parts records which sections are present. A decoded snapshot carries only
// the sections found in the payload, and an encoded one writes only the
// sections set in Parts, so an empty list and a missing list stay distinct.
type Snapshot struct {
	Definitions []block.Definition
	Instances   []Record
	Code        string
	Language    string
	SavedAt     int64 // unix milliseconds, zero when unknown

	Parts Part
}

// Has reports whether every section in p is present.
func (s *Snapshot) Has(p Part) bool { return s.Parts&p == p }

// Only returns a shallow copy restricted to the sections in p.
func (s *Snapshot) Only(p Part) *Snapshot {
	out := &Snapshot{SavedAt: s.SavedAt, Parts: s.Parts & p}
	if out.Has(PartDefinitions) {
		out.Definitions = s.Definitions
	}
	if out.Has(PartInstances) {
		out.Instances = s.Instances
	}
	if out.Has(PartCode) {
		out.Code, out.Language = s.Code, s.Language
	}
	return out
}

// Record is the persisted form of one block instance.
//
// X and Y hold the stored top-level position. Parent links appear on both
// ends: NestedChildIDs and Inputs[v].ChildID are authoritative on restore;
// ParentContainerID and ParentInput are kept for readers of the payload.
type Record struct {
	ID                string                `json:"id"`
	Label             string                `json:"label"`
	Kind              block.Kind            `json:"kind"`
	Color             string                `json:"color,omitempty"`
	Templates         map[string]string     `json:"templates,omitempty"`
	ContainerVar      string                `json:"containerVar,omitempty"`
	X                 float64               `json:"x"`
	Y                 float64               `json:"y"`
	ParentContainerID *string               `json:"parentContainerId"`
	ParentInput       *InputRef             `json:"parentInput"`
	Inputs            map[string]InputState `json:"inputs"`
	NestedChildIDs    []string              `json:"nestedChildIds"`
}

// InputRef names the slot a block is plugged into.
type InputRef struct {
	ParentID string `json:"parentId"`
	Varname  string `json:"varname"`
}

// InputState is the persisted state of one input slot.
type InputState struct {
	Literal string  `json:"literal"`
	ChildID *string `json:"childId"`
}

// Definition returns the definition fields of the record.
func (r Record) Definition() block.Definition {
	return block.Definition{
		Label:        r.Label,
		Kind:         r.Kind,
		Color:        r.Color,
		Templates:    maps.Clone(r.Templates),
		ContainerVar: r.ContainerVar,
	}
}

// =============================================================================
// Capture
// =============================================================================

// Capture records defs and every block of ws in registry order.
//
// The graph must be settled: a capture during a drag fails with
// [workspace.ErrDragInProgress].
func Capture(ws *workspace.Workspace, defs []block.Definition) (*Snapshot, error) {
	if !ws.Settled() {
		return nil, fmt.Errorf("capture: %w: %s", workspace.ErrDragInProgress, ws.Dragging())
	}

	s := &Snapshot{
		Definitions: make([]block.Definition, 0, len(defs)),
		Instances:   make([]Record, 0, ws.Len()),
		Parts:       PartDefinitions | PartInstances,
	}
	for _, d := range defs {
		s.Definitions = append(s.Definitions, d.Clone())
	}
	for _, b := range ws.Blocks() {
		s.Instances = append(s.Instances, recordOf(b))
	}
	return s, nil
}

func recordOf(b *block.Instance) Record {
	r := Record{
		ID:             b.ID,
		Label:          b.Label,
		Kind:           b.Kind,
		Color:          b.Color,
		Templates:      maps.Clone(b.Templates),
		ContainerVar:   b.ContainerVar,
		X:              b.Position.X,
		Y:              b.Position.Y,
		Inputs:         make(map[string]InputState, len(b.Inputs)),
		NestedChildIDs: slices.Clone(b.Nested),
	}
	if r.NestedChildIDs == nil {
		r.NestedChildIDs = []string{}
	}
	switch b.Parent.Kind {
	case block.ParentContainer:
		id := b.Parent.ID
		r.ParentContainerID = &id
	case block.ParentInput:
		r.ParentInput = &InputRef{ParentID: b.Parent.ID, Varname: b.Parent.Var}
	}
	for name, in := range b.Inputs {
		st := InputState{Literal: in.Literal}
		if in.Occupied() {
			id := in.ChildID
			st.ChildID = &id
		}
		r.Inputs[name] = st
	}
	return r
}

// =============================================================================
// Restore
// =============================================================================

// Restore rebuilds the instances of s inside ws.
//
// Phase one registers every record as a parentless block with its literals.
// Phase two re-links nested children in recorded order, then input children.
// References to unknown ids, attachments the graph rejects and second claims
// on the same child are skipped and logged; the graph stays valid. Records
// without an id or with a repeated id make the payload malformed and fail
// before ws is touched.
func Restore(ws *workspace.Workspace, s *Snapshot, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	if err := checkRecords(ws, s.Instances); err != nil {
		return err
	}

	for _, r := range s.Instances {
		b := block.New(r.Definition(), r.ID, geom.Point{X: r.X, Y: r.Y})
		for name, st := range r.Inputs {
			if in, ok := b.Inputs[name]; ok {
				in.Literal = st.Literal
			}
		}
		if err := ws.Add(b); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "restore block %s", r.ID)
		}
	}

	skipped := 0
	for _, r := range s.Instances {
		for _, cid := range r.NestedChildIDs {
			if err := ws.AttachToContainer(cid, r.ID); err != nil {
				logger.Debug("skipped nested child", "block", r.ID, "child", cid, "err", err)
				skipped++
			}
		}
	}
	for _, r := range s.Instances {
		for _, name := range slices.Sorted(maps.Keys(r.Inputs)) {
			st := r.Inputs[name]
			if st.ChildID == nil || *st.ChildID == "" {
				continue
			}
			if err := ws.AttachToInput(*st.ChildID, r.ID, name); err != nil {
				logger.Debug("skipped input child", "block", r.ID, "input", name, "child", *st.ChildID, "err", err)
				skipped++
			}
		}
	}

	logger.Debug("restored snapshot", "blocks", len(s.Instances), "skipped", skipped)
	return nil
}

func checkRecords(ws *workspace.Workspace, records []Record) error {
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if r.ID == "" {
			return errors.New(errors.ErrCodeInvalidSnapshot, "instance %d has no id", i)
		}
		if _, live := ws.Get(r.ID); seen[r.ID] || live {
			return errors.New(errors.ErrCodeInvalidSnapshot, "duplicate instance id %s", r.ID)
		}
		seen[r.ID] = true
		if !r.Kind.IsValid() {
			return errors.New(errors.ErrCodeInvalidSnapshot, "instance %s has unknown kind %q", r.ID, r.Kind)
		}
	}
	return nil
}
