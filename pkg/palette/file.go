package palette

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/errors"
)

// Format is a palette file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unsupported palette file %q (want .json, .toml, .yaml or .yml)", path)
}

// document is the on-disk shape. TOML needs a table at the top level, so the
// definitions always live under one key.
type document struct {
	Blocks []block.Definition `json:"blocks" toml:"block" yaml:"blocks"`
}

// Read decodes a palette in format f from r and validates every definition.
func Read(r io.Reader, f Format) (*Palette, error) {
	var doc document
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
		if err == io.EOF {
			err = nil
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown palette format %q", f)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s palette", f)
	}
	return New(doc.Blocks...)
}

// Write encodes p in format f to w.
func Write(w io.Writer, p *Palette, f Format) error {
	doc := document{Blocks: p.Definitions()}
	var buf bytes.Buffer
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode json palette")
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode toml palette")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode yaml palette")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode yaml palette")
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown palette format %q", f)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// LoadFile reads a palette file, picking the format from its extension.
func LoadFile(path string) (*Palette, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open palette")
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open palette")
	}
	defer file.Close()
	return Read(file, f)
}

// WriteFile writes p to path, picking the format from its extension.
func WriteFile(path string, p *Palette) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, p, f); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write palette %s", path)
	}
	return nil
}
