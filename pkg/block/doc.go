// Package block defines block definitions (palette templates) and block
// instances (live blocks on a workspace).
//
// # Labels
//
// A label is text interleaved with %name placeholders. Each placeholder
// becomes an input slot on instances created from the definition:
//
//	block.InputNames("repeat %times times") // ["times"]
//	block.InputNames("%a + %b")              // ["a", "b"]
//	block.InputNames("stop")                 // nil
//
// # Kinds
//
// Five kinds determine how blocks compose:
//
//   - command: a statement, stacks in container bodies
//   - container: a statement with a body of nested blocks
//   - function: a container whose body is hoisted by the code generator
//   - reporter, boolean: values, plug into input slots
//
// # Container Placeholder
//
// Container and function templates mark where nested code goes with a
// placeholder such as %body. [ContainerVarOf] resolves it from the explicit
// ContainerVar field or infers it from the templates.
package block
