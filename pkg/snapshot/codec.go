package snapshot

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/errors"
)

// payload is the wire shape. Pointer fields distinguish absent sections from
// empty ones.
type payload struct {
	Definitions *[]block.Definition `json:"definitions,omitempty"`
	Instances   *[]Record           `json:"instances,omitempty"`
	Code        *string             `json:"code,omitempty"`
	Language    *string             `json:"language,omitempty"`
	SavedAt     int64               `json:"savedAt,omitempty"`
}

// legacyPayload is the shape written by the browser editor this format
// descends from.
type legacyPayload struct {
	BlockDefs   *[]legacyDefinition `json:"blockDefs"`
	BlockStates *[]legacyState      `json:"blockStates"`
	Code        *string             `json:"code"`
	Lang        *string             `json:"lang"`
	SavedAt     int64               `json:"savedAt"`
}

type legacyDefinition struct {
	Label        string            `json:"label"`
	Type         block.Kind        `json:"type"`
	Color        string            `json:"color"`
	Templates    map[string]string `json:"templates"`
	ContainerVar string            `json:"containerVar"`
}

type legacyState struct {
	ID          string                 `json:"id"`
	Label       string                 `json:"label"`
	Type        block.Kind             `json:"type"`
	Color       string                 `json:"color"`
	Templates   map[string]string      `json:"templates"`
	X           float64                `json:"x"`
	Y           float64                `json:"y"`
	ParentBlock *string                `json:"parentBlock"`
	ParentInput *InputRef              `json:"parentInput"`
	InputState  map[string]legacyInput `json:"inputState"`
	NestedIDs   []string               `json:"nestedIds"`
}

type legacyInput struct {
	Value   string  `json:"value"`
	ChildID *string `json:"childId"`
}

// Encode writes s as indented JSON, including only the sections in s.Parts.
func Encode(s *Snapshot) ([]byte, error) {
	p := payload{SavedAt: s.SavedAt}
	if s.Has(PartDefinitions) {
		defs := s.Definitions
		if defs == nil {
			defs = []block.Definition{}
		}
		p.Definitions = &defs
	}
	if s.Has(PartInstances) {
		recs := s.Instances
		if recs == nil {
			recs = []Record{}
		}
		p.Instances = &recs
	}
	if s.Has(PartCode) {
		p.Code, p.Language = &s.Code, &s.Language
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write encodes s to w.
func Write(w io.Writer, s *Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Decode parses a snapshot payload.
//
// Any subset of sections is accepted, and the legacy field names (blockDefs,
// blockStates, inputState, nestedIds, parentBlock, type, lang) are converted.
// The code section is present only when both code and language are. Every
// definition is validated. A payload that is not a JSON object, or whose
// sections have the wrong shape, fails with errors.ErrCodeInvalidSnapshot.
func Decode(data []byte) (*Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, errors.New(errors.ErrCodeInvalidSnapshot, "snapshot must be a JSON object")
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode snapshot")
	}
	var legacy legacyPayload
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode legacy snapshot")
	}

	s := &Snapshot{SavedAt: p.SavedAt}
	if s.SavedAt == 0 {
		s.SavedAt = legacy.SavedAt
	}

	switch {
	case p.Definitions != nil:
		s.Definitions = *p.Definitions
		s.Parts |= PartDefinitions
	case legacy.BlockDefs != nil:
		s.Definitions = convertDefinitions(*legacy.BlockDefs)
		s.Parts |= PartDefinitions
	}
	for _, d := range s.Definitions {
		if err := d.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "decode snapshot")
		}
	}

	switch {
	case p.Instances != nil:
		s.Instances = *p.Instances
		s.Parts |= PartInstances
	case legacy.BlockStates != nil:
		s.Instances = convertStates(*legacy.BlockStates)
		s.Parts |= PartInstances
	}

	code, lang := p.Code, p.Language
	if code == nil {
		code = legacy.Code
	}
	if lang == nil {
		lang = legacy.Lang
	}
	if code != nil && lang != nil && *lang != "" {
		s.Code, s.Language = *code, *lang
		s.Parts |= PartCode
	}
	return s, nil
}

// Read decodes a snapshot from r.
func Read(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "read snapshot")
	}
	return Decode(data)
}

func convertDefinitions(in []legacyDefinition) []block.Definition {
	out := make([]block.Definition, 0, len(in))
	for _, d := range in {
		out = append(out, block.Definition{
			Label:        d.Label,
			Kind:         d.Type,
			Color:        d.Color,
			Templates:    d.Templates,
			ContainerVar: d.ContainerVar,
		})
	}
	return out
}

func convertStates(in []legacyState) []Record {
	out := make([]Record, 0, len(in))
	for _, st := range in {
		r := Record{
			ID:             st.ID,
			Label:          st.Label,
			Kind:           st.Type,
			Color:          st.Color,
			Templates:      st.Templates,
			X:              st.X,
			Y:              st.Y,
			ParentInput:    st.ParentInput,
			Inputs:         make(map[string]InputState, len(st.InputState)),
			NestedChildIDs: st.NestedIDs,
		}
		// parentBlock is set for both parent kinds; parentInput tells them apart.
		if st.ParentBlock != nil && st.ParentInput == nil {
			r.ParentContainerID = st.ParentBlock
		}
		for name, in := range st.InputState {
			r.Inputs[name] = InputState{Literal: in.Value, ChildID: in.ChildID}
		}
		out = append(out, r)
	}
	return out
}
