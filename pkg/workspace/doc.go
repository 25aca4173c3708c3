// Package workspace holds live block instances and the composition graph
// between them.
//
// # Registry
//
// A [Workspace] is an arena: every [block.Instance] is stored by id and all
// edges are ids on both ends. Registry order is creation order, and it is the
// iteration order for snapping, code generation and serialization.
//
// # Composition
//
// Blocks compose in two ways:
//
//   - stacking: a command or container sits in a container's body
//     ([Workspace.AttachToContainer]); the body's Nested list is the
//     authoritative top-to-bottom order
//   - embedding: a reporter or boolean plugs into an input slot
//     ([Workspace.AttachToInput]); the slot's literal text is kept underneath
//
// A block has exactly one parent link at a time and is never its own
// ancestor. Attach operations require a parentless child, so moving a block
// is always detach then attach.
//
// # Layout Invalidation
//
// Attach, detach and remove call [LayoutListener.OnChildSetChanged]
// synchronously for the affected container and every ancestor above it.
// [Workspace.Detach] queries the [geom.Geometry] for the block's composed
// position before cutting the link, so the block stays where it was drawn.
//
// # Drag Lock
//
// [Workspace.BeginDrag] marks one block as in flight. Serialization refuses to
// run until [Workspace.EndDrag] releases it.
package workspace
