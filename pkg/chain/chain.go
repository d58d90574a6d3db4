package chain

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/neuronpath/pkg/graph"
	"github.com/matzehuels/neuronpath/pkg/node"
)

var (
	// ErrDuplicateEdge is returned by Recompose when chains and linkers
	// together name the same edge twice.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrEmptyChain is returned by Recompose for a chain with no nodes.
	ErrEmptyChain = errors.New("empty chain")
)

// DuplicateEdgeError reports the edge that appeared twice.
type DuplicateEdgeError[K node.Key[K]] struct {
	Edge graph.Edge[K]
}

func (e *DuplicateEdgeError[K]) Error() string {
	return fmt.Sprintf("%v: %v", ErrDuplicateEdge, e.Edge)
}

func (e *DuplicateEdgeError[K]) Unwrap() error { return ErrDuplicateEdge }

// Chain is a simple path through the graph, listed from its first node.
type Chain[K node.Key[K]] []K

// Steps returns the consecutive edges along c.
func (c Chain[K]) Steps() []graph.Edge[K] {
	if len(c) < 2 {
		return nil
	}
	out := make([]graph.Edge[K], 0, len(c)-1)
	for i := 0; i+1 < len(c); i++ {
		out = append(out, graph.E(c[i], c[i+1]))
	}
	return out
}

// Decomposition is a chain cover of a graph: vertex-disjoint chains plus
// the linker edges not captured as a chain step.
type Decomposition[K node.Key[K]] struct {
	Chains  []Chain[K]      `json:"chains"`
	Linkers []graph.Edge[K] `json:"linkers"`
}

// IsEmpty reports whether d holds no chains and no linkers.
func (d Decomposition[K]) IsEmpty() bool {
	return len(d.Chains) == 0 && len(d.Linkers) == 0
}

// Nodes returns every node named by d, in key order.
func (d Decomposition[K]) Nodes() []K {
	seen := make(map[K]bool)
	var out []K
	add := func(k K) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, c := range d.Chains {
		for _, k := range c {
			add(k)
		}
	}
	for _, e := range d.Linkers {
		add(e.From)
		add(e.To)
	}
	node.Sort(out)
	return out
}

// Decompose splits edges into long chains and the linker edges needed to
// reconstruct the rest.
//
// Duplicate input edges are collapsed first. Nodes are placed in [Order];
// edges cut there, including self-loops, are always linkers. The remaining
// edges form a DAG over which chains are chosen greedily:
//
//  1. For every uncovered node, in reverse order, compute the longest chain
//     starting there through uncovered nodes. A node adopts a child's chain
//     when its current best is no longer than the child's, so among equal
//     candidates the first child in key order wins.
//  2. Take the longest chain overall, the smallest start breaking ties, and
//     mark its nodes covered.
//  3. Repeat until no chain of two or more nodes remains.
//
// Every distinct edge ends up as exactly one chain step or one linker. The
// result is a valid cover, not necessarily a minimum one.
func Decompose[K node.Key[K]](edges []graph.Edge[K]) Decomposition[K] {
	return DecomposeGraph(graph.New(edges...))
}

// DecomposeGraph is [Decompose] for an already built graph. Each round
// recomputes chain lengths over the uncovered nodes, so the worst case is
// O(V·(V+E)) for V nodes and E edges.
func DecomposeGraph[K node.Key[K]](g *graph.Graph[K]) Decomposition[K] {
	var d Decomposition[K]
	if g.Len() == 0 {
		return d
	}

	order, cut := Order(g)
	forward := make(map[K][]K, len(order))
	isCut := make(map[graph.Edge[K]]bool, len(cut))
	for _, e := range cut {
		isCut[e] = true
	}
	for _, e := range g.Dedupe() {
		if !isCut[e] {
			forward[e.From] = append(forward[e.From], e.To)
		}
	}

	nodes := g.Nodes()
	covered := make(map[K]bool, len(order))
	length := make(map[K]int, len(order))
	next := make(map[K]K, len(order))
	for {
		clear(length)
		clear(next)
		for i := len(order) - 1; i >= 0; i-- {
			k := order[i]
			if covered[k] {
				continue
			}
			length[k] = 1
			for _, c := range forward[k] {
				if covered[c] {
					continue
				}
				if length[k] <= length[c] {
					length[k] = length[c] + 1
					next[k] = c
				}
			}
		}

		var start K
		best := 0
		for _, k := range nodes {
			if covered[k] {
				continue
			}
			if length[k] > best {
				start, best = k, length[k]
			}
		}
		if best < 2 {
			break
		}

		c := make(Chain[K], 0, best)
		for k, i := start, 0; i < best; i++ {
			c = append(c, k)
			covered[k] = true
			k = next[k]
		}
		d.Chains = append(d.Chains, c)
	}

	steps := make(map[graph.Edge[K]]bool)
	for _, c := range d.Chains {
		for _, e := range c.Steps() {
			steps[e] = true
		}
	}
	for _, e := range g.Dedupe() {
		if !steps[e] {
			d.Linkers = append(d.Linkers, e)
		}
	}
	return d
}

// Recompose returns the edges described by d: every chain step in chain
// order, followed by the linkers. It fails with a [*DuplicateEdgeError] if
// any edge is named twice and with [ErrEmptyChain] for a chain with no nodes.
func Recompose[K node.Key[K]](d Decomposition[K]) ([]graph.Edge[K], error) {
	seen := make(map[graph.Edge[K]]bool)
	var out []graph.Edge[K]
	add := func(e graph.Edge[K]) error {
		if seen[e] {
			return &DuplicateEdgeError[K]{Edge: e}
		}
		seen[e] = true
		out = append(out, e)
		return nil
	}
	for i, c := range d.Chains {
		if len(c) == 0 {
			return nil, fmt.Errorf("chain %d: %w", i, ErrEmptyChain)
		}
		for _, e := range c.Steps() {
			if err := add(e); err != nil {
				return nil, err
			}
		}
	}
	for _, e := range d.Linkers {
		if err := add(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sortEdges[K node.Key[K]](edges []graph.Edge[K]) {
	slices.SortFunc(edges, graph.Edge[K].Compare)
}
