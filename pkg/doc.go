// Package pkg holds the libraries behind blockstack, a block composition
// engine for visual programming.
//
// # Overview
//
// Blocks are created from palette definitions, composed into a tree of
// container bodies and input slots, and turned into source code through
// per-language templates. The packages are layered:
//
//  1. [block] - definitions, instances and label parsing
//  2. [workspace] - the block registry and composition graph
//  3. [geom], [layout], [snap], [drag] - geometry, hit-testing and drag-and-drop
//  4. [snapshot], [codegen] - serialization and code generation
//  5. [palette], [store], [project] - definitions, persistence and orchestration
//  6. [config], [errors], [observability], [render/nodelink] - supporting concerns
//
// # Data Flow
//
//	palette definition
//	       ↓
//	[workspace] instance  ←  [drag] session  ←  [snap] resolver  ←  [layout] boxes
//	       ↓
//	[codegen] source text        [snapshot] payload  →  [store] backend
//
// # Quick Start
//
//	p := project.New(project.Options{})
//	repeat, _, _ := p.Palette().Find("repeat _ times")
//	out, _ := p.DropNew(ctx, repeat, geom.Point{X: 100, Y: 100})
//	_ = p.Workspace().SetLiteral(out.BlockID, "times", "3")
//	code, _ := p.Generate(ctx, "python")
//
// [block]: github.com/matzehuels/blockstack/pkg/block
// [workspace]: github.com/matzehuels/blockstack/pkg/workspace
// [geom]: github.com/matzehuels/blockstack/pkg/geom
// [layout]: github.com/matzehuels/blockstack/pkg/layout
// [snap]: github.com/matzehuels/blockstack/pkg/snap
// [drag]: github.com/matzehuels/blockstack/pkg/drag
// [snapshot]: github.com/matzehuels/blockstack/pkg/snapshot
// [codegen]: github.com/matzehuels/blockstack/pkg/codegen
// [palette]: github.com/matzehuels/blockstack/pkg/palette
// [store]: github.com/matzehuels/blockstack/pkg/store
// [project]: github.com/matzehuels/blockstack/pkg/project
// [config]: github.com/matzehuels/blockstack/pkg/config
// [errors]: github.com/matzehuels/blockstack/pkg/errors
// [observability]: github.com/matzehuels/blockstack/pkg/observability
// [render/nodelink]: github.com/matzehuels/blockstack/pkg/render/nodelink
package pkg
