// Package chain decomposes a connectivity path into long linear chains
// plus linker edges, and recomposes the edge list from them.
//
// A chain is a simple path listed from its first node; chains in one
// [Decomposition] never share a node. Any edge that is not a step of some
// chain is a linker. Together they name every distinct edge of the input
// exactly once, so
//
//	edges, _ := chain.Recompose(chain.Decompose(in))
//
// is set-equal to in. The selection is greedy and deterministic for a given
// edge set, but it is not guaranteed to be a minimum chain cover.
package chain
