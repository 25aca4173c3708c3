// Package codegen turns a composed workspace into source text.
//
// Each block contributes its template for the target language. Input
// placeholders (%name) receive the generated code of the block plugged into
// the slot, or the slot's literal text. The body placeholder of containers
// and functions receives the code of the nested blocks, one per line.
//
// # Templates
//
// A block without a template for the requested language uses the fallback
// language (javascript by default); a block with neither generates nothing.
// Substitution is a single pass: text inserted for one placeholder is never
// scanned for others.
//
// Multi-line code is indented to match its placeholder:
//
//	for i in range(%times):
//	    %body
//
// puts every nested line four spaces in. Indentation-sensitive languages
// additionally indent a body whose placeholder starts an unindented line.
//
// # Functions
//
// A template reading "name = %body" defines a function: its body is stored
// in the run's function table under name and the block emits nothing. A
// later block whose substituted template is exactly name is replaced by the
// stored body. Call sites generated before their definition are emitted as
// written.
//
// Every [Generator.Generate] call starts a new [Run], so function tables are
// never shared between generations.
package codegen
