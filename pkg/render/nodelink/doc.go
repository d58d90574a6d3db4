// Package nodelink renders connectivity paths as node-link diagrams.
//
// # Overview
//
// This package produces directed graph drawings using Graphviz, where
// regions appear as boxes connected by arrows. When a chain decomposition
// is supplied, each chain gets its own fill colour and bold steps, and the
// linker edges between chains are dashed.
//
// # Usage
//
// Convert a path to DOT format, then render to SVG:
//
//	d := chain.Decompose(edges)
//	dot := nodelink.ToDOT(edges, nodelink.Options[node.RegionLayer]{Chains: &d})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Chains: decomposition to highlight, or nil for a plain diagram
//   - Title: graph label drawn above the diagram
//   - LeftToRight: lay chains out horizontally instead of top to bottom
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering, so no Graphviz installation is needed.
package nodelink
