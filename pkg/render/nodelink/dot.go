package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/neuronpath/pkg/chain"
	"github.com/matzehuels/neuronpath/pkg/graph"
	"github.com/matzehuels/neuronpath/pkg/node"
	"github.com/matzehuels/neuronpath/pkg/render"
)

// Options configures node-link diagram rendering.
type Options[K node.Key[K]] struct {
	// Chains highlights a decomposition of the drawn edges.
	Chains *chain.Decomposition[K]

	// Title is drawn as the graph label when non-empty.
	Title string

	// LeftToRight switches rankdir from TB to LR.
	LeftToRight bool
}

// palette cycles through chain fill colours.
var palette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3",
	"#fdb462", "#b3de69", "#fccde5", "#d9d9d9", "#bc80bd",
}

// ToDOT converts a path to Graphviz DOT format. Nodes are labelled with their
// canonical text, with a layer on its own line. The result can be rendered
// with [RenderSVG] or [RenderPNG].
func ToDOT[K node.Hashable[K]](edges []graph.Edge[K], opts Options[K]) string {
	g := graph.New(edges...)

	colour := make(map[K]string)
	steps := make(map[graph.Edge[K]]string)
	linkers := make(map[graph.Edge[K]]bool)
	if d := opts.Chains; d != nil {
		for i, c := range d.Chains {
			col := palette[i%len(palette)]
			for _, k := range c {
				colour[k] = col
			}
			for _, e := range c.Steps() {
				steps[e] = col
			}
		}
		for _, e := range d.Linkers {
			linkers[e] = true
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.LeftToRight {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	for _, k := range g.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", label(k.Canonical()))}
		if col, ok := colour[k]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", col))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", k.Canonical(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Dedupe() {
		var attrs []string
		switch {
		case steps[e] != "":
			attrs = append(attrs, "penwidth=2.5", fmt.Sprintf("color=%q", darker(steps[e])))
		case linkers[e]:
			attrs = append(attrs, "style=dashed", "color=grey40")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From.Canonical(), e.To.Canonical())
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From.Canonical(), e.To.Canonical(), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// label puts the layer of a "region@layer" key on its own line.
func label(s string) string {
	if i := strings.LastIndex(s, node.LayerSeparator); i > 0 {
		return s[:i] + "\n" + node.LayerSeparator + s[i+1:]
	}
	return s
}

// darker halves each channel of a "#rrggbb" colour.
func darker(hex string) string {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return hex
	}
	r, g, b := (v>>16&0xff)/2, (v>>8&0xff)/2, (v&0xff)/2
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Render renders DOT source in format. DOT output is the source itself.
func Render(ctx context.Context, dot, format string) ([]byte, error) {
	switch format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		return RenderSVG(ctx, dot)
	case render.FormatPNG:
		return RenderPNG(ctx, dot)
	}
	return nil, render.ValidateFormat(format)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := renderGraphviz(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderGraphviz(ctx, dot, graphviz.PNG)
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
