// Package tree converts connectivity paths between edge lists and a
// canonical nested forest.
//
// # Overview
//
// A path graph with branches, merges and the occasional cycle is stored in
// published documents as a nested bracketed list: each list names a parent
// followed by its children, and each child is either a bare node or another
// list. [Expand] produces that shape from an edge list and [Collapse] turns
// it back into edges:
//
//	edges := []graph.Edge[node.ID]{
//	    graph.E[node.ID]("a", "b"),
//	    graph.E[node.ID]("b", "c"),
//	    graph.E[node.ID]("a", "d"),
//	}
//	v := tree.Expand(edges) // (a (b c) d)
//	back, _ := tree.Collapse(v)
//
// # Values
//
// [Value] is a tagged union with three variants:
//
//   - Leaf: a single node, built with [Leaf]
//   - Seq: a parent followed by children, built with [Seq]
//   - Forest: independent trees under a synthetic Blank head, built with [Forest]
//
// The Blank head lets a path with zero or several roots still be a single
// value without implying an edge between the roots.
//
// # Guarantees
//
// For any duplicate-free edge list E, Collapse(Expand(E)) contains exactly
// the edges of E. Siblings are ordered by node key, so Expand returns the
// same value for any ordering of the same edge set. The reverse direction
// is idempotent but a hand-built forest that is not in canonical order is
// not reordered by a round trip.
//
// # Resource use
//
// Inputs ultimately come from spreadsheets, so Expand, Collapse, Parse and
// the helpers walk values with explicit stacks rather than recursion. Deep
// or adversarial paths cost heap, not goroutine stack.
package tree
