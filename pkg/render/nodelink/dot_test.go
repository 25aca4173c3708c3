package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/workspace"
)

func testWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	n := 0
	ids := []string{"rep", "say", "add"}
	ws := workspace.New(workspace.WithIDGenerator(func() string {
		n++
		return ids[n-1]
	}))
	rep := ws.Instantiate(block.Definition{Label: "repeat %times times", Kind: block.KindContainer, Color: "#FF6680"}, geom.Point{X: 10, Y: 20})
	say := ws.Instantiate(block.Definition{Label: "say %text", Kind: block.KindCommand}, geom.Point{})
	add := ws.Instantiate(block.Definition{Label: "%a + %b", Kind: block.KindReporter}, geom.Point{})

	if err := ws.SetLiteral(rep.ID, "times", "3"); err != nil {
		t.Fatal(err)
	}
	if err := ws.SetLiteral(add.ID, "a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := ws.AttachToContainer(say.ID, rep.ID); err != nil {
		t.Fatal(err)
	}
	if err := ws.AttachToInput(add.ID, say.ID, "text"); err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestDisplay(t *testing.T) {
	ws := testWorkspace(t)
	tests := []struct {
		id   string
		want string
	}{
		{"rep", "repeat [3] times"},
		{"say", "say <text>"},
		{"add", "[1] + [ ]"},
	}
	for _, tt := range tests {
		b, _ := ws.Get(tt.id)
		if got := Display(b); got != tt.want {
			t.Errorf("Display(%s) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testWorkspace(t), Options{})

	for _, want := range []string{
		"digraph G {",
		`"rep" [label="repeat [3] times", fillcolor="#FF6680", fontcolor=white];`,
		`"say" [label="say <text>"];`,
		`"add" [label="[1] + [ ]", shape=ellipse, style=filled];`,
		`"rep" -> "say" [label="1"];`,
		`"say" -> "add" [label="text", style=dashed];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testWorkspace(t), Options{Detailed: true})

	if !strings.Contains(dot, `label="repeat [3] times\nrep (container)\nat 10,20"`) {
		t.Errorf("detailed root label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `label="say <text>\nsay (command)"`) {
		t.Errorf("detailed nested label missing:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(workspace.New(), Options{})
	if strings.Contains(dot, "->") {
		t.Errorf("empty workspace has edges:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testWorkspace(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("SVG root not normalized: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got := string(normalizeViewBox(in)); got != want {
		t.Errorf("normalizeViewBox() = %q, want %q", got, want)
	}
	if got := string(normalizeViewBox([]byte("<svg/>"))); got != "<svg/>" {
		t.Errorf("normalizeViewBox(no viewBox) = %q", got)
	}
}
