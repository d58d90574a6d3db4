// Package graph provides the edge-list model consumed by the path codecs.
//
// # Overview
//
// A connectivity path arrives from upstream as an ordered list of
// (from, to) pairs. [Graph] keeps that list as-is (duplicates included) and
// derives the views the codecs need:
//
//   - [Graph.Sources]: nodes with no incoming edge
//   - [Graph.Sinks]: nodes with no outgoing edge
//   - [Graph.InDegree]: number of incoming edges per node
//   - [Graph.Children]: successors of a node in key order
//   - [Graph.Roots]: where a traversal starts, even when the graph is cyclic
//
// Build a graph with [New] or, from upstream pairs plus pre-existing linker
// edges, with [ToGraph]:
//
//	g := graph.New(
//	    graph.E[node.ID]("a", "b"),
//	    graph.E[node.ID]("b", "c"),
//	)
//	g.Sources() // [a]
//
// # Cycles
//
// Anatomical paths occasionally loop back on themselves. When no source
// exists, [Graph.Roots] picks a single synthetic start: the From node of the
// smallest (from, to) edge. [Graph.Cover] repeats that choice for every
// cyclic region that the sources cannot reach, so a traversal seeded from
// its result visits every node.
//
// # Concurrency
//
// A Graph is immutable after construction and safe for concurrent readers.
package graph
