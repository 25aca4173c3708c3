package block

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind classifies a block by how it composes with other blocks.
type Kind string

const (
	// KindCommand is a plain statement block that stacks inside containers.
	KindCommand Kind = "command"
	// KindContainer wraps a body of nested blocks.
	KindContainer Kind = "container"
	// KindFunction wraps a body that is hoisted as a named definition.
	KindFunction Kind = "function"
	// KindReporter produces a value and plugs into input slots.
	KindReporter Kind = "reporter"
	// KindBoolean produces a truth value and plugs into input slots.
	KindBoolean Kind = "boolean"
)

// Kinds lists every valid kind in palette order.
var Kinds = []Kind{KindCommand, KindContainer, KindFunction, KindReporter, KindBoolean}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool { return slices.Contains(Kinds, k) }

// HasBody reports whether blocks of this kind hold nested children.
func (k Kind) HasBody() bool { return k == KindContainer || k == KindFunction }

// IsValue reports whether blocks of this kind can occupy an input slot.
func (k Kind) IsValue() bool { return k == KindReporter || k == KindBoolean }

// IsStackable reports whether blocks of this kind take part in below-stack snapping.
func (k Kind) IsStackable() bool { return k == KindCommand || k == KindContainer }

// DefaultContainerVar is the body placeholder used when nothing else is found.
const DefaultContainerVar = "body"

// Definition is a palette template. Instances copy its fields at creation,
// so editing or deleting a definition never affects placed blocks.
type Definition struct {
	Label        string            `json:"label" toml:"label" yaml:"label" validate:"required"`
	Kind         Kind              `json:"kind" toml:"kind" yaml:"kind" validate:"required,oneof=command container function reporter boolean"`
	Color        string            `json:"color,omitempty" toml:"color,omitempty" yaml:"color,omitempty" validate:"omitempty,iscolor"`
	Templates    map[string]string `json:"templates,omitempty" toml:"templates,omitempty" yaml:"templates,omitempty"`
	ContainerVar string            `json:"containerVar,omitempty" toml:"container_var,omitempty" yaml:"containerVar,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the definition's fields.
func (d Definition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("definition %q: %w", d.Label, err)
	}
	if d.ContainerVar != "" && !wordRe.MatchString(d.ContainerVar) {
		return fmt.Errorf("definition %q: container var %q is not a placeholder name", d.Label, d.ContainerVar)
	}
	return nil
}

// Inputs returns the input names declared by the definition's label.
func (d Definition) Inputs() []string { return InputNames(d.Label) }

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	d.Templates = maps.Clone(d.Templates)
	return d
}

// =============================================================================
// Label Parsing
// =============================================================================

var (
	placeholderRe   = regexp.MustCompile(`%\w+`)
	wordRe          = regexp.MustCompile(`^\w+$`)
	containerHintRe = regexp.MustCompile(`%(body|then|else|area|content|inner)\b`)
)

// Part is one segment of a parsed label: literal text or an input placeholder.
type Part struct {
	Text  string // literal text; empty for inputs
	Input string // placeholder name without '%'; empty for text
}

// IsInput reports whether the part is an input placeholder.
func (p Part) IsInput() bool { return p.Input != "" }

// ParseLabel splits a label into text and placeholder parts in label order.
// Empty segments are dropped, so "say %text" yields ["say ", %text].
func ParseLabel(label string) []Part {
	var parts []Part
	last := 0
	for _, loc := range placeholderRe.FindAllStringIndex(label, -1) {
		if loc[0] > last {
			parts = append(parts, Part{Text: label[last:loc[0]]})
		}
		parts = append(parts, Part{Input: label[loc[0]+1 : loc[1]]})
		last = loc[1]
	}
	if last < len(label) {
		parts = append(parts, Part{Text: label[last:]})
	}
	return parts
}

// InputNames returns the placeholder names in first-appearance order.
// A label without placeholders returns nil.
func InputNames(label string) []string {
	var names []string
	for _, p := range ParseLabel(label) {
		if p.IsInput() && !slices.Contains(names, p.Input) {
			names = append(names, p.Input)
		}
	}
	return names
}

// DisplayName renders a label with every placeholder replaced by "_".
func DisplayName(label string) string {
	return placeholderRe.ReplaceAllString(label, "_")
}

// ContainerVarOf returns the body placeholder name for a definition.
//
// An explicit ContainerVar wins. Otherwise the templates are scanned, in
// sorted language order, for a conventional body placeholder. The fallback
// is [DefaultContainerVar].
func ContainerVarOf(d Definition) string {
	if d.ContainerVar != "" {
		return d.ContainerVar
	}
	langs := slices.Sorted(maps.Keys(d.Templates))
	var all strings.Builder
	for _, lang := range langs {
		all.WriteString(d.Templates[lang])
		all.WriteByte(' ')
	}
	if m := containerHintRe.FindStringSubmatch(all.String()); m != nil {
		return m[1]
	}
	return DefaultContainerVar
}
