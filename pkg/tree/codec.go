package tree

import (
	"errors"
	"fmt"

	"github.com/matzehuels/neuronpath/pkg/graph"
	"github.com/matzehuels/neuronpath/pkg/node"
)

// ErrMalformedInput is returned when a node position holds a nested
// sequence, or a sequence has no head.
var ErrMalformedInput = errors.New("malformed tree value")

// Expand converts an edge list into its canonical nested forest.
//
// Each root from [graph.Graph.Cover] is expanded in turn. While expanding a
// node its children are visited in key order:
//
//   - a child never seen before is expanded in place
//   - a child seen fewer times than its in-degree is re-mentioned as a bare
//     leaf, which records a re-converging edge without recursing again
//   - a fully seen child that is itself a top-level root is re-mentioned
//     without counting, recording a back-reference to that root
//   - anything else is an exhausted cycle edge and emits nothing
//
// A single top-level tree is returned as-is; zero or several are wrapped
// in a Blank-headed [Forest].
func Expand[K node.Key[K]](edges []graph.Edge[K]) Value[K] {
	return ExpandGraph(graph.New(edges...))
}

// ExpandGraph is [Expand] for an already built graph.
func ExpandGraph[K node.Key[K]](g *graph.Graph[K]) Value[K] {
	type frame struct {
		node     K
		children []K
		next     int
		items    []Value[K]
	}

	roots := g.Cover()
	isRoot := make(map[K]bool, len(roots))
	for _, r := range roots {
		isRoot[r] = true
	}
	expected := g.InDegrees()
	seen := make(map[K]int, len(expected))

	push := func(stack []frame, k K) []frame {
		seen[k]++
		return append(stack, frame{node: k, children: g.Children(k)})
	}

	var top []Value[K]
	for _, r := range roots {
		if seen[r] > 0 {
			continue
		}
		stack := push(nil, r)
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next == len(f.children) {
				done := Leaf(f.node)
				if len(f.items) > 0 {
					done = Seq(f.node, f.items...)
				}
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					top = append(top, done)
				} else {
					parent := &stack[len(stack)-1]
					parent.items = append(parent.items, done)
				}
				continue
			}

			c := f.children[f.next]
			f.next++
			switch {
			case seen[c] == 0:
				stack = push(stack, c)
			case seen[c] < expected[c]:
				f.items = append(f.items, Leaf(c))
				seen[c]++
			case isRoot[c]:
				f.items = append(f.items, Leaf(c))
			}
		}
	}

	if len(top) == 1 {
		return top[0]
	}
	return Forest(top...)
}

// Collapse converts a tree value back into its edge list.
//
// A Blank-headed forest contributes no edge for its head; each item is an
// independent tree. Any other sequence yields one (parent, child) edge per
// item after the head, naming the child by its own head, and then
// contributes the edges inside each item. Edges are returned in pre-order.
func Collapse[K node.Key[K]](v Value[K]) ([]graph.Edge[K], error) {
	var out []graph.Edge[K]
	stack := []Value[K]{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch cur.kind {
		case KindLeaf:
			continue
		case KindForest:
			for i := len(cur.items) - 1; i >= 0; i-- {
				if cur.items[i].kind == KindForest {
					return nil, fmt.Errorf("%w: nested blank head in %s", ErrMalformedInput, cur)
				}
				stack = append(stack, cur.items[i])
			}
			continue
		}

		parent, ok := cur.Head()
		if !ok {
			return nil, fmt.Errorf("%w: sequence has no node head: %s", ErrMalformedInput, cur)
		}
		children := cur.items[1:]
		for _, child := range children {
			head, ok := child.Head()
			if !ok {
				return nil, fmt.Errorf("%w: child of %v has no node head: %s", ErrMalformedInput, parent, child)
			}
			out = append(out, graph.E(parent, head))
		}
		for i := len(children) - 1; i >= 0; i-- {
			if children[i].kind == KindSeq {
				stack = append(stack, children[i])
			}
		}
	}
	return out, nil
}
