// Package nodelink renders a block workspace as a node-link diagram.
//
// # Overview
//
// Every block becomes a node filled with its palette color. Composition edges
// point from parent to child: solid edges for nested children, labelled in
// body order, and dashed edges for blocks plugged into an input slot,
// labelled with the slot name.
//
// # Usage
//
//	dot := nodelink.ToDOT(ws, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Options
//
//   - Detailed: node labels also show the block id, kind and, for top-level
//     blocks, the position.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
