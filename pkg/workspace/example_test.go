package workspace_test

import (
	"fmt"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/workspace"
)

func ExampleWorkspace_AttachToContainer() {
	ws := workspace.New()
	loop := ws.Instantiate(block.Definition{Label: "repeat %times times", Kind: block.KindContainer}, geom.Point{X: 20, Y: 20})
	say := ws.Instantiate(block.Definition{Label: "say %text", Kind: block.KindCommand}, geom.Point{})

	if err := ws.AttachToContainer(say.ID, loop.ID); err != nil {
		panic(err)
	}
	fmt.Println("Roots:", len(ws.Roots()))
	fmt.Println("Nested:", len(loop.Nested))
	fmt.Println("Parent kind:", say.Parent.Kind)
	// Output:
	// Roots: 1
	// Nested: 1
	// Parent kind: container
}

func ExampleWorkspace_Remove() {
	ws := workspace.New()
	loop := ws.Instantiate(block.Definition{Label: "forever", Kind: block.KindContainer}, geom.Point{})
	say := ws.Instantiate(block.Definition{Label: "say %text", Kind: block.KindCommand}, geom.Point{})
	sum := ws.Instantiate(block.Definition{Label: "%a + %b", Kind: block.KindReporter}, geom.Point{})
	_ = ws.AttachToContainer(say.ID, loop.ID)
	_ = ws.AttachToInput(sum.ID, say.ID, "text")

	// Removing the container takes everything inside it along.
	_ = ws.Remove(loop.ID)
	fmt.Println("Blocks left:", ws.Len())
	fmt.Println("Consistent:", ws.Check() == nil)
	// Output:
	// Blocks left: 0
	// Consistent: true
}
