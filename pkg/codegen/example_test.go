package codegen_test

import (
	"fmt"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/codegen"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/workspace"
)

func ExampleGenerator_Generate() {
	ws := workspace.New()
	loop := ws.Instantiate(block.Definition{
		Label: "repeat %times times",
		Kind:  block.KindContainer,
		Templates: map[string]string{
			"javascript": "for (let i = 0; i < %times; i++) {\n%body\n}",
			"python":     "for i in range(%times):\n    %body",
		},
	}, geom.Point{})
	say := ws.Instantiate(block.Definition{
		Label: "say %text",
		Kind:  block.KindCommand,
		Templates: map[string]string{
			"javascript": "console.log(%text);",
			"python":     "print(%text)",
		},
	}, geom.Point{})
	_ = ws.SetLiteral(loop.ID, "times", "3")
	_ = ws.SetLiteral(say.ID, "text", `"hi"`)
	_ = ws.AttachToContainer(say.ID, loop.ID)

	gen := codegen.New(ws)
	for _, lang := range []string{"javascript", "python"} {
		code, err := gen.Generate(lang)
		if err != nil {
			panic(err)
		}
		fmt.Println(code)
	}
	// Output:
	// for (let i = 0; i < 3; i++) {
	// console.log("hi");
	// }
	// for i in range(3):
	//     print("hi")
}
