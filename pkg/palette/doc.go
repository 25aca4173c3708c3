// Package palette holds the block definitions users instantiate from.
//
// [Default] returns the built-in blocks. Palettes can be kept in JSON, TOML
// or YAML files; every format stores the definitions under one list:
//
//	[[block]]
//	label = "say %text"
//	kind = "command"
//	color = "#4C97FF"
//
//	[block.templates]
//	javascript = "console.log(%text);"
//	python = "print(%text)"
package palette
