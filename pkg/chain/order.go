package chain

import (
	"container/heap"

	"github.com/matzehuels/neuronpath/pkg/graph"
	"github.com/matzehuels/neuronpath/pkg/node"
)

// Order returns a deterministic topological order of g's nodes and the
// edges that had to be cut to obtain it.
//
// Ready nodes are taken smallest first. When every remaining node still has
// an incoming edge the residue contains a cycle; that cycle is located by
// walking smallest predecessors from the smallest remaining node and its
// smallest edge is cut. Self-loops are always cut.
func Order[K node.Key[K]](g *graph.Graph[K]) (order []K, cut []graph.Edge[K]) {
	edges := g.Dedupe()
	indeg := make(map[K]int, len(edges))
	preds := make(map[K][]K)
	isCut := make(map[graph.Edge[K]]bool)
	for _, e := range edges {
		if e.From == e.To {
			isCut[e] = true
			cut = append(cut, e)
			continue
		}
		indeg[e.To]++
		preds[e.To] = append(preds[e.To], e.From)
	}

	ready := &keyHeap[K]{}
	for _, k := range g.Nodes() {
		if indeg[k] == 0 {
			heap.Push(ready, k)
		}
	}

	placed := make(map[K]bool, len(indeg))
	nodes := g.Nodes()
	for len(order) < len(nodes) {
		if ready.Len() == 0 {
			e := smallestCycleEdge(nodes, preds, placed, isCut)
			isCut[e] = true
			cut = append(cut, e)
			indeg[e.To]--
			if indeg[e.To] == 0 {
				heap.Push(ready, e.To)
			}
			continue
		}
		k := heap.Pop(ready).(K)
		placed[k] = true
		order = append(order, k)
		children := g.Children(k)
		for i, c := range children {
			e := graph.E(k, c)
			if (i > 0 && children[i-1] == c) || isCut[e] || placed[c] {
				continue
			}
			indeg[c]--
			if indeg[c] == 0 {
				heap.Push(ready, c)
			}
		}
	}
	sortEdges(cut)
	return order, cut
}

// smallestCycleEdge finds a cycle among unplaced nodes and returns its
// smallest edge. The caller guarantees every unplaced node has at least one
// unplaced, uncut predecessor.
func smallestCycleEdge[K node.Key[K]](nodes []K, preds map[K][]K, placed map[K]bool, isCut map[graph.Edge[K]]bool) graph.Edge[K] {
	var start K
	for _, k := range nodes {
		if !placed[k] {
			start = k
			break
		}
	}

	pos := make(map[K]int)
	var walk []K
	cur := start
	for {
		if i, ok := pos[cur]; ok {
			walk = walk[i:]
			break
		}
		pos[cur] = len(walk)
		walk = append(walk, cur)
		cur = smallestPred(cur, preds, placed, isCut)
	}

	// walk holds the cycle in reverse: walk[i+1] -> walk[i].
	var best graph.Edge[K]
	for i := range walk {
		e := graph.E(walk[(i+1)%len(walk)], walk[i])
		if i == 0 || e.Compare(best) < 0 {
			best = e
		}
	}
	return best
}

func smallestPred[K node.Key[K]](k K, preds map[K][]K, placed map[K]bool, isCut map[graph.Edge[K]]bool) K {
	var best K
	found := false
	for _, p := range preds[k] {
		if placed[p] || isCut[graph.E(p, k)] {
			continue
		}
		if !found || node.Total(p, best) < 0 {
			best, found = p, true
		}
	}
	return best
}

type keyHeap[K node.Key[K]] []K

func (h keyHeap[K]) Len() int           { return len(h) }
func (h keyHeap[K]) Less(i, j int) bool { return node.Total(h[i], h[j]) < 0 }
func (h keyHeap[K]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *keyHeap[K]) Push(x any)        { *h = append(*h, x.(K)) }
func (h *keyHeap[K]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
