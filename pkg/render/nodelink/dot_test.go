package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/neuronpath/pkg/chain"
	"github.com/matzehuels/neuronpath/pkg/graph"
	"github.com/matzehuels/neuronpath/pkg/node"
)

func sample() []graph.Edge[node.RegionLayer] {
	a, b, c := node.Region("a"), node.InLayer("b", "L5"), node.Region("c")
	return []graph.Edge[node.RegionLayer]{graph.E(a, b), graph.E(b, c), graph.E(a, c)}
}

func TestToDOTPlain(t *testing.T) {
	dot := ToDOT(sample(), Options[node.RegionLayer]{Title: "sst"})
	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`label="sst";`,
		`"b@L5" [label="b\n@L5"];`,
		`"a" -> "c";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTChains(t *testing.T) {
	es := sample()
	d := chain.Decompose(es)
	dot := ToDOT(es, Options[node.RegionLayer]{Chains: &d, LeftToRight: true})
	if !strings.Contains(dot, "rankdir=LR;") {
		t.Errorf("DOT missing LR rankdir:\n%s", dot)
	}
	if got := strings.Count(dot, "penwidth=2.5"); got != 2 {
		t.Errorf("DOT has %d chain steps, want 2:\n%s", got, dot)
	}
	if got := strings.Count(dot, "style=dashed"); got != 1 {
		t.Errorf("DOT has %d dashed linkers, want 1:\n%s", got, dot)
	}
}

func TestDarker(t *testing.T) {
	if got := darker("#ff8040"); got != "#7f4020" {
		t.Errorf("darker() = %s, want #7f4020", got)
	}
	if got := darker("bad"); got != "bad" {
		t.Errorf("darker(bad) = %s", got)
	}
}

func TestRender(t *testing.T) {
	dot := ToDOT(sample(), Options[node.RegionLayer]{})
	ctx := context.Background()

	out, err := Render(ctx, dot, "dot")
	if err != nil || string(out) != dot {
		t.Errorf("Render(dot) = %q, %v", out, err)
	}
	if _, err := Render(ctx, dot, "pdf"); err == nil {
		t.Error("Render(pdf) should fail")
	}

	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("RenderSVG output is not SVG: %.80s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() = %s, want %s", out, want)
	}
}
