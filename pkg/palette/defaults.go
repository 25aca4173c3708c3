package palette

import (
	"strings"

	"github.com/lithammer/dedent"

	"github.com/matzehuels/blockstack/pkg/block"
)

// tmpl strips the source indentation from a multi-line template.
func tmpl(s string) string {
	return strings.Trim(dedent.Dedent(s), "\n")
}

// Defaults returns the built-in definitions: say, wait, repeat, if, if-else,
// addition and comparison, each with javascript, python and c templates.
func Defaults() []block.Definition {
	return []block.Definition{
		{
			Label: "say %text",
			Kind:  block.KindCommand,
			Color: "#4C97FF",
			Templates: map[string]string{
				"javascript": "console.log(%text);",
				"python":     "print(%text)",
				"c":          `printf("%s\n", %text);`,
			},
		},
		{
			Label: "wait %seconds seconds",
			Kind:  block.KindCommand,
			Color: "#FFAB19",
			Templates: map[string]string{
				"javascript": "await new Promise(r => setTimeout(r, %seconds * 1000));",
				"python": tmpl(`
					import time
					time.sleep(%seconds)
				`),
				"c": "sleep(%seconds);",
			},
		},
		{
			Label: "repeat %times times",
			Kind:  block.KindContainer,
			Color: "#FF6680",
			Templates: map[string]string{
				"javascript": tmpl(`
					for (let i = 0; i < %times; i++) {
					%body
					}
				`),
				"python": tmpl(`
					for i in range(%times):
					    %body
				`),
				"c": tmpl(`
					for (int i = 0; i < %times; i++) {
					%body
					}
				`),
			},
		},
		{
			Label: "if %condition then",
			Kind:  block.KindContainer,
			Color: "#2EBA55",
			Templates: map[string]string{
				"javascript": tmpl(`
					if (%condition) {
					%body
					}
				`),
				"python": tmpl(`
					if %condition:
					    %body
				`),
				"c": tmpl(`
					if (%condition) {
					%body
					}
				`),
			},
		},
		{
			Label: "if %condition then else",
			Kind:  block.KindContainer,
			Color: "#1E90FF",
			Templates: map[string]string{
				"javascript": tmpl(`
					if (%condition) {
					%then
					} else {
					%else
					}
				`),
				"python": tmpl(`
					if %condition:
					    %then
					else:
					    %else
				`),
				"c": tmpl(`
					if (%condition) {
					%then
					} else {
					%else
					}
				`),
			},
		},
		{
			Label: "%a + %b",
			Kind:  block.KindReporter,
			Color: "#FFCA28",
			Templates: map[string]string{
				"javascript": "(%a + %b)",
				"python":     "(%a + %b)",
				"c":          "(%a + %b)",
			},
		},
		{
			Label: "%a > %b",
			Kind:  block.KindBoolean,
			Color: "#F44336",
			Templates: map[string]string{
				"javascript": "(%a > %b)",
				"python":     "(%a > %b)",
				"c":          "(%a > %b)",
			},
		},
	}
}
