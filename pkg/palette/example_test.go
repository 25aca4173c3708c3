package palette_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/palette"
)

func ExampleDefault() {
	for _, d := range palette.Default().Definitions() {
		fmt.Printf("%-10s %s\n", d.Kind, block.DisplayName(d.Label))
	}
	// Output:
	// command    say _
	// command    wait _ seconds
	// container  repeat _ times
	// container  if _ then
	// container  if _ then else
	// reporter   _ + _
	// boolean    _ > _
}

func ExampleWrite() {
	p, _ := palette.New(block.Definition{
		Label:     "stop",
		Kind:      block.KindCommand,
		Templates: map[string]string{"javascript": "return;"},
	})
	_ = palette.Write(os.Stdout, p, palette.FormatYAML)
	// Output:
	// blocks:
	//   - label: stop
	//     kind: command
	//     templates:
	//       javascript: return;
}
