package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/matzehuels/neuronpath/pkg/node"
)

// Edge is a directed (From, To) pair. Edges carry no attributes.
type Edge[K node.Key[K]] struct {
	From K `json:"from"`
	To   K `json:"to"`
}

// E is shorthand for Edge{From: from, To: to}.
func E[K node.Key[K]](from, to K) Edge[K] { return Edge[K]{From: from, To: to} }

// Compare orders edges by From, then To, using [node.Total].
func (e Edge[K]) Compare(o Edge[K]) int {
	if c := node.Total(e.From, o.From); c != 0 {
		return c
	}
	return node.Total(e.To, o.To)
}

func (e Edge[K]) String() string { return fmt.Sprintf("%v->%v", e.From, e.To) }

// Graph is an ordered, immutable edge list with derived adjacency.
// The zero value is an empty graph.
type Graph[K node.Key[K]] struct {
	edges    []Edge[K]
	nodes    []K
	outgoing map[K][]K
	incoming map[K]int
}

// New builds a graph from edges. Duplicate edges are kept.
func New[K node.Key[K]](edges ...Edge[K]) *Graph[K] {
	g := &Graph[K]{
		edges:    slices.Clone(edges),
		outgoing: make(map[K][]K),
		incoming: make(map[K]int),
	}
	seen := make(map[K]bool)
	addNode := func(k K) {
		if !seen[k] {
			seen[k] = true
			g.nodes = append(g.nodes, k)
		}
	}
	for _, e := range edges {
		addNode(e.From)
		addNode(e.To)
		g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
		g.incoming[e.To]++
	}
	node.Sort(g.nodes)
	for k := range g.outgoing {
		node.Sort(g.outgoing[k])
	}
	return g
}

// ToGraph builds a graph from upstream pairs and optional pre-existing
// linker edges. Linkers are ordinary edges once inside the graph.
func ToGraph[K node.Key[K]](pairs []Edge[K], linkers ...Edge[K]) *Graph[K] {
	all := make([]Edge[K], 0, len(pairs)+len(linkers))
	all = append(all, pairs...)
	all = append(all, linkers...)
	return New(all...)
}

// Edges returns a copy of the edges in insertion order.
func (g *Graph[K]) Edges() []Edge[K] { return slices.Clone(g.edges) }

// Len returns the number of edges, duplicates included.
func (g *Graph[K]) Len() int { return len(g.edges) }

// Nodes returns every node that appears in an edge, in key order.
func (g *Graph[K]) Nodes() []K { return slices.Clone(g.nodes) }

// Children returns the successors of k in key order. A successor appears
// once per edge, so duplicate edges yield duplicate children.
// The returned slice must not be modified.
func (g *Graph[K]) Children(k K) []K { return g.outgoing[k] }

// InDegree returns the number of edges ending at k.
func (g *Graph[K]) InDegree(k K) int { return g.incoming[k] }

// OutDegree returns the number of edges starting at k.
func (g *Graph[K]) OutDegree(k K) int { return len(g.outgoing[k]) }

// InDegrees returns a fresh node→in-degree map covering every node.
func (g *Graph[K]) InDegrees() map[K]int {
	m := make(map[K]int, len(g.nodes))
	for _, k := range g.nodes {
		m[k] = g.incoming[k]
	}
	return m
}

// Sources returns nodes with no incoming edge, in key order.
func (g *Graph[K]) Sources() []K {
	var out []K
	for _, k := range g.nodes {
		if g.incoming[k] == 0 {
			out = append(out, k)
		}
	}
	return out
}

// Sinks returns nodes with no outgoing edge, in key order.
func (g *Graph[K]) Sinks() []K {
	var out []K
	for _, k := range g.nodes {
		if len(g.outgoing[k]) == 0 {
			out = append(out, k)
		}
	}
	return out
}

// Roots returns the sources, or when the whole graph is cyclic the single
// synthetic start: the From node of the smallest edge. An empty graph has
// no roots.
func (g *Graph[K]) Roots() []K {
	if src := g.Sources(); len(src) > 0 {
		return src
	}
	if e, ok := g.MinEdge(nil); ok {
		return []K{e.From}
	}
	return nil
}

// Cover returns the sources followed by one synthetic start per cyclic
// region that no earlier root reaches. Each synthetic start is the From node
// of the smallest edge leaving a still-unreached node. Every node of g is
// reachable from the returned roots.
func (g *Graph[K]) Cover() []K {
	roots := g.Sources()
	reached := make(map[K]bool, len(g.nodes))
	var stack []K
	visit := func(start K) {
		stack = append(stack[:0], start)
		reached[start] = true
		for len(stack) > 0 {
			k := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, c := range g.outgoing[k] {
				if !reached[c] {
					reached[c] = true
					stack = append(stack, c)
				}
			}
		}
	}
	for _, r := range roots {
		visit(r)
	}
	for len(reached) < len(g.nodes) {
		e, ok := g.MinEdge(func(k K) bool { return !reached[k] })
		if !ok {
			break
		}
		roots = append(roots, e.From)
		visit(e.From)
	}
	return roots
}

// MinEdge returns the smallest edge whose From node satisfies keep.
// A nil keep accepts every edge.
func (g *Graph[K]) MinEdge(keep func(K) bool) (Edge[K], bool) {
	var best Edge[K]
	found := false
	for _, e := range g.edges {
		if keep != nil && !keep(e.From) {
			continue
		}
		if !found || e.Compare(best) < 0 {
			best, found = e, true
		}
	}
	return best, found
}

// Dedupe returns the distinct edges of g in canonical (sorted) order.
func (g *Graph[K]) Dedupe() []Edge[K] {
	return Dedupe(g.edges)
}

// Dedupe returns the distinct edges in canonical (sorted) order.
func Dedupe[K node.Key[K]](edges []Edge[K]) []Edge[K] {
	seen := make(map[Edge[K]]bool, len(edges))
	out := make([]Edge[K], 0, len(edges))
	for _, e := range edges {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	slices.SortFunc(out, Edge[K].Compare)
	return out
}

// SetEqual reports whether a and b contain the same distinct edges.
func SetEqual[K node.Key[K]](a, b []Edge[K]) bool {
	return slices.Equal(Dedupe(a), Dedupe(b))
}

// Hash returns a content hash of the distinct edge set of g. Graphs that
// differ only in edge order or duplication hash identically.
func Hash[K node.Hashable[K]](g *Graph[K]) string {
	h := sha256.New()
	for _, e := range g.Dedupe() {
		fmt.Fprintf(h, "%d:%s%d:%s\n", len(e.From.Canonical()), e.From.Canonical(), len(e.To.Canonical()), e.To.Canonical())
	}
	return hex.EncodeToString(h.Sum(nil))
}
