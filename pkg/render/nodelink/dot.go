package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/errors"
	"github.com/matzehuels/blockstack/pkg/workspace"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the id, kind and top-level position to node labels.
	Detailed bool
}

// ToDOT converts the blocks of ws to Graphviz DOT in registry order.
func ToDOT(ws *workspace.Workspace, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("\n")

	blocks := ws.Blocks()
	for _, b := range blocks {
		fmt.Fprintf(&buf, "  %q [%s];\n", b.ID, strings.Join(nodeAttrs(b, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, b := range blocks {
		for i, cid := range b.Nested {
			fmt.Fprintf(&buf, "  %q -> %q [label=\"%d\"];\n", b.ID, cid, i+1)
		}
		for _, name := range b.InputOrder {
			if in := b.Inputs[name]; in != nil && in.Occupied() {
				fmt.Fprintf(&buf, "  %q -> %q [label=%q, style=dashed];\n", b.ID, in.ChildID, name)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Display renders the label of b with its input state: literals in square
// brackets and plugged slots as the slot name in angle brackets.
func Display(b *block.Instance) string {
	var sb strings.Builder
	for _, p := range block.ParseLabel(b.Label) {
		if !p.IsInput() {
			sb.WriteString(p.Text)
			continue
		}
		in := b.Inputs[p.Input]
		switch {
		case in != nil && in.Occupied():
			sb.WriteString("<" + p.Input + ">")
		case in != nil && in.Literal != "":
			sb.WriteString("[" + in.Literal + "]")
		default:
			sb.WriteString("[ ]")
		}
	}
	return sb.String()
}

func nodeLabel(b *block.Instance, detailed bool) string {
	label := Display(b)
	if !detailed {
		return label
	}
	parts := []string{label, fmt.Sprintf("%s (%s)", b.ID, b.Kind)}
	if b.Parent.IsNone() {
		parts = append(parts, "at "+b.Position.String())
	}
	return strings.Join(parts, "\n")
}

func nodeAttrs(b *block.Instance, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(b, detailed))}
	if b.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", b.Color), "fontcolor=white")
	}
	switch b.Kind {
	case block.KindReporter:
		attrs = append(attrs, "shape=ellipse", "style=filled")
	case block.KindBoolean:
		attrs = append(attrs, "shape=hexagon", "style=filled")
	case block.KindFunction:
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render graph")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from its
// own size instead of the point-based width Graphviz emits.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
