package palette

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/errors"
)

func TestDefaults(t *testing.T) {
	defs := Defaults()
	if len(defs) != 7 {
		t.Fatalf("len(Defaults()) = %d, want 7", len(defs))
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			t.Errorf("Validate(%q) = %v", d.Label, err)
		}
		for _, lang := range []string{"javascript", "python", "c"} {
			if d.Templates[lang] == "" {
				t.Errorf("%q has no %s template", d.Label, lang)
			}
		}
	}

	repeat := defs[2]
	if got, want := repeat.Templates["python"], "for i in range(%times):\n    %body"; got != want {
		t.Errorf("repeat python = %q, want %q", got, want)
	}
	if got, want := repeat.Templates["javascript"], "for (let i = 0; i < %times; i++) {\n%body\n}"; got != want {
		t.Errorf("repeat javascript = %q, want %q", got, want)
	}
	if got := block.ContainerVarOf(defs[4]); got != "then" {
		t.Errorf("ContainerVarOf(if-else) = %q, want %q", got, "then")
	}
}

func TestDefaultsAreIndependent(t *testing.T) {
	a, b := Default(), Default()
	defs := a.Definitions()
	defs[0].Templates["javascript"] = "changed"

	got, _ := a.Get(0)
	if got.Templates["javascript"] == "changed" {
		t.Error("Definitions() shares template maps with the palette")
	}
	if d, _ := b.Get(0); d.Templates["javascript"] != "console.log(%text);" {
		t.Errorf("second palette = %q", d.Templates["javascript"])
	}
}

func TestAddRemoveFind(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Add(block.Definition{Label: "move %steps steps", Kind: block.KindCommand}); err != nil {
		t.Fatalf("Add() = %v", err)
	}
	if err := p.Add(block.Definition{Label: "stop", Kind: block.KindCommand}); err != nil {
		t.Fatalf("Add() = %v", err)
	}

	if _, i, ok := p.Find("move _ steps"); !ok || i != 0 {
		t.Errorf("Find(display name) = %d, %v, want 0, true", i, ok)
	}
	if _, i, ok := p.Find("stop"); !ok || i != 1 {
		t.Errorf("Find(label) = %d, %v, want 1, true", i, ok)
	}
	if _, _, ok := p.Find("jump"); ok {
		t.Error("Find(jump) found a definition")
	}

	removed, err := p.Remove(0)
	if err != nil {
		t.Fatalf("Remove(0) = %v", err)
	}
	if removed.Label != "move %steps steps" || p.Len() != 1 {
		t.Errorf("Remove(0) = %q, Len() = %d", removed.Label, p.Len())
	}
	for _, i := range []int{-1, 1, 5} {
		if _, err := p.Remove(i); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("Remove(%d) error = %v, want %s", i, err, errors.ErrCodeNotFound)
		}
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		def  block.Definition
	}{
		{"empty label", block.Definition{Kind: block.KindCommand}},
		{"unknown kind", block.Definition{Label: "x", Kind: "statement"}},
		{"bad color", block.Definition{Label: "x", Kind: block.KindCommand, Color: "blue-ish"}},
		{"bad container var", block.Definition{Label: "x", Kind: block.KindContainer, ContainerVar: "two words"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			err := p.Add(tt.def)
			if !errors.Is(err, errors.ErrCodeInvalidDefinition) {
				t.Errorf("Add() error = %v, want %s", err, errors.ErrCodeInvalidDefinition)
			}
			if p.Len() != 7 {
				t.Errorf("Len() = %d after rejected Add", p.Len())
			}
		})
	}
}

func TestReplaceIsAtomic(t *testing.T) {
	p := Default()
	err := p.Replace([]block.Definition{
		{Label: "ok", Kind: block.KindCommand},
		{Label: "", Kind: block.KindCommand},
	})
	if err == nil {
		t.Fatal("Replace() accepted an invalid definition")
	}
	if p.Len() != 7 {
		t.Errorf("Len() = %d, want 7", p.Len())
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"blocks.json", FormatJSON},
		{"blocks.TOML", FormatTOML},
		{"dir/blocks.yaml", FormatYAML},
		{"blocks.yml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("FormatOf(%q) = %q, %v, want %q", tt.path, got, err, tt.want)
		}
	}
	if _, err := FormatOf("blocks.xml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("FormatOf(xml) error = %v", err)
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Default().Definitions()

	for _, ext := range []string{".json", ".toml", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "palette"+ext)
			if err := WriteFile(path, Default()); err != nil {
				t.Fatalf("WriteFile() = %v", err)
			}
			p, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() = %v", err)
			}
			if got := p.Definitions(); !reflect.DeepEqual(got, want) {
				t.Errorf("LoadFile() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestReadTOML(t *testing.T) {
	src := `
[[block]]
label = "forever"
kind = "container"
color = "#FF6680"
container_var = "inner"

[block.templates]
python = "while True:\n    %inner"
`
	p, err := Read(strings.NewReader(src), FormatTOML)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	d, ok := p.Get(0)
	if !ok {
		t.Fatal("Get(0) missing")
	}
	if d.Kind != block.KindContainer || d.ContainerVar != "inner" {
		t.Errorf("Get(0) = %+v", d)
	}
	if got := d.Templates["python"]; got != "while True:\n    %inner" {
		t.Errorf("python template = %q", got)
	}
}

func TestReadRejects(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		format Format
		code   errors.Code
	}{
		{"malformed json", `{"blocks": [`, FormatJSON, errors.ErrCodeInvalidFormat},
		{"malformed yaml", "blocks: [", FormatYAML, errors.ErrCodeInvalidFormat},
		{"invalid definition", `{"blocks": [{"label": "x", "kind": "nope"}]}`, FormatJSON, errors.ErrCodeInvalidDefinition},
		{"unknown format", `{}`, Format("xml"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.src), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadEmptyYAML(t *testing.T) {
	p, err := Read(bytes.NewReader(nil), FormatYAML)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "none.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadFile() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}
