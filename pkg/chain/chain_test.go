package chain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/neuronpath/pkg/graph"
	"github.com/matzehuels/neuronpath/pkg/node"
)

type id = node.ID

func edges(pairs ...string) []graph.Edge[id] {
	out := make([]graph.Edge[id], 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, graph.E(id(pairs[i]), id(pairs[i+1])))
	}
	return out
}

func chains(cs ...[]id) []Chain[id] {
	out := make([]Chain[id], 0, len(cs))
	for _, c := range cs {
		out = append(out, Chain[id](c))
	}
	return out
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name        string
		edges       []graph.Edge[id]
		wantChains  []Chain[id]
		wantLinkers []graph.Edge[id]
	}{
		{
			name:        "two chains sharing a source",
			edges:       edges("1", "3", "1", "2", "2", "4"),
			wantChains:  chains([]id{"1", "2", "4"}),
			wantLinkers: edges("1", "3"),
		},
		{
			name: "multi-parent multi-child mesh",
			edges: edges(
				"3", "1", "3", "2", "4", "1", "4", "2", "5", "1", "5", "2",
				"6", "1", "6", "2", "1", "7", "1", "8", "2", "7", "2", "8",
			),
			wantChains: chains([]id{"3", "1", "7"}, []id{"4", "2", "8"}),
			wantLinkers: edges(
				"1", "8", "2", "7", "3", "2", "4", "1",
				"5", "1", "5", "2", "6", "1", "6", "2",
			),
		},
		{
			name:       "single path",
			edges:      edges("c", "d", "a", "b", "b", "c"),
			wantChains: chains([]id{"a", "b", "c", "d"}),
		},
		{
			name:        "cycle is cut at its smallest edge",
			edges:       edges("a", "b", "b", "c", "c", "a"),
			wantChains:  chains([]id{"b", "c", "a"}),
			wantLinkers: edges("a", "b"),
		},
		{
			name:        "self loop is a linker",
			edges:       edges("1", "2", "2", "3", "2", "2"),
			wantChains:  chains([]id{"1", "2", "3"}),
			wantLinkers: edges("2", "2"),
		},
		{
			name:        "duplicates collapse",
			edges:       edges("a", "b", "a", "b"),
			wantChains:  chains([]id{"a", "b"}),
			wantLinkers: nil,
		},
		{
			name:        "lone self loop",
			edges:       edges("x", "x"),
			wantLinkers: edges("x", "x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decompose(tt.edges)
			if diff := cmp.Diff(tt.wantChains, d.Chains); diff != "" {
				t.Errorf("chains mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantLinkers, d.Linkers); diff != "" {
				t.Errorf("linkers mismatch (-want +got):\n%s", diff)
			}

			back, err := Recompose(d)
			if err != nil {
				t.Fatalf("Recompose() error: %v", err)
			}
			if !graph.SetEqual(tt.edges, back) {
				t.Errorf("Recompose() = %v, want set of %v", back, tt.edges)
			}
		})
	}
}

func TestDecomposeEmpty(t *testing.T) {
	d := Decompose[id](nil)
	if !d.IsEmpty() {
		t.Errorf("Decompose(nil) = %+v, want empty", d)
	}
	back, err := Recompose(d)
	if err != nil || len(back) != 0 {
		t.Errorf("Recompose(empty) = %v, %v", back, err)
	}
}

func TestRecomposeDuplicate(t *testing.T) {
	tests := []struct {
		name string
		d    Decomposition[id]
		dup  graph.Edge[id]
	}{
		{
			name: "chain step repeated as linker",
			d: Decomposition[id]{
				Chains:  chains([]id{"a", "b", "c"}),
				Linkers: edges("b", "c"),
			},
			dup: graph.E[id]("b", "c"),
		},
		{
			name: "two chains share a step",
			d:    Decomposition[id]{Chains: chains([]id{"a", "b"}, []id{"x", "a", "b"})},
			dup:  graph.E[id]("a", "b"),
		},
		{
			name: "linker listed twice",
			d:    Decomposition[id]{Linkers: edges("p", "q", "p", "q")},
			dup:  graph.E[id]("p", "q"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Recompose(tt.d)
			if !errors.Is(err, ErrDuplicateEdge) {
				t.Fatalf("Recompose() error = %v, want ErrDuplicateEdge", err)
			}
			var dupErr *DuplicateEdgeError[id]
			if !errors.As(err, &dupErr) {
				t.Fatalf("Recompose() error = %T, want *DuplicateEdgeError", err)
			}
			if dupErr.Edge != tt.dup {
				t.Errorf("duplicate edge = %v, want %v", dupErr.Edge, tt.dup)
			}
		})
	}
}

func TestRecomposeEmptyChain(t *testing.T) {
	_, err := Recompose(Decomposition[id]{Chains: []Chain[id]{{}}})
	if !errors.Is(err, ErrEmptyChain) {
		t.Errorf("Recompose() error = %v, want ErrEmptyChain", err)
	}
}

func TestOrder(t *testing.T) {
	tests := []struct {
		name      string
		edges     []graph.Edge[id]
		wantOrder []id
		wantCut   []graph.Edge[id]
	}{
		{
			name:      "ties broken by key",
			edges:     edges("b", "d", "a", "c", "c", "d"),
			wantOrder: []id{"a", "b", "c", "d"},
		},
		{
			name:      "cycle downstream of a source",
			edges:     edges("s", "y", "y", "x", "x", "y"),
			wantOrder: []id{"s", "y", "x"},
			wantCut:   edges("x", "y"),
		},
		{
			name:      "two detached cycles",
			edges:     edges("p", "q", "q", "p", "a", "b", "b", "a"),
			wantOrder: []id{"b", "a", "q", "p"},
			wantCut:   edges("a", "b", "p", "q"),
		},
		{
			name:      "self loop",
			edges:     edges("a", "a", "a", "b"),
			wantOrder: []id{"a", "b"},
			wantCut:   edges("a", "a"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, cut := Order(graph.New(tt.edges...))
			if diff := cmp.Diff(tt.wantOrder, order); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCut, cut); diff != "" {
				t.Errorf("cut mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func randomEdges(r *rand.Rand) []graph.Edge[id] {
	n := 1 + r.IntN(10)
	m := r.IntN(25)
	out := make([]graph.Edge[id], 0, m)
	for i := 0; i < m; i++ {
		out = append(out, graph.E(id(fmt.Sprintf("n%d", r.IntN(n))), id(fmt.Sprintf("n%d", r.IntN(n)))))
	}
	return out
}

func TestRoundTripProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(13, 17))
	for i := 0; i < 2000; i++ {
		es := randomEdges(r)
		d := Decompose(es)
		back, err := Recompose(d)
		if err != nil {
			t.Fatalf("case %d: Recompose(Decompose(%v)) error: %v", i, es, err)
		}
		if !graph.SetEqual(es, back) {
			t.Fatalf("case %d: %v decomposed to %+v recomposed to %v", i, es, d, back)
		}

		owner := make(map[id]int)
		for ci, c := range d.Chains {
			if len(c) < 2 {
				t.Fatalf("case %d: short chain %v", i, c)
			}
			for _, k := range c {
				if prev, ok := owner[k]; ok {
					t.Fatalf("case %d: node %v in chains %d and %d", i, k, prev, ci)
				}
				owner[k] = ci
			}
		}

		if want := graph.New(es...).Nodes(); len(want) > 0 {
			if diff := cmp.Diff(want, d.Nodes()); diff != "" {
				t.Fatalf("case %d: node coverage mismatch (-want +got):\n%s", i, diff)
			}
		}
	}
}

func TestDecomposeIsOrderIndependent(t *testing.T) {
	r := rand.New(rand.NewPCG(19, 23))
	for i := 0; i < 500; i++ {
		es := randomEdges(r)
		want := Decompose(es)
		shuffled := append([]graph.Edge[id](nil), es...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if diff := cmp.Diff(want, Decompose(shuffled)); diff != "" {
			t.Fatalf("case %d: Decompose not order independent (-want +got):\n%s", i, diff)
		}
	}
}

func TestChainsAreMaximal(t *testing.T) {
	r := rand.New(rand.NewPCG(29, 31))
	for i := 0; i < 500; i++ {
		es := randomEdges(r)
		d := Decompose(es)
		inChain := make(map[id]bool)
		for _, c := range d.Chains {
			for _, k := range c {
				inChain[k] = true
			}
		}
		_, cut := Order(graph.New(es...))
		isCut := make(map[graph.Edge[id]]bool)
		for _, e := range cut {
			isCut[e] = true
		}
		// No forward edge may join two nodes left outside every chain.
		for _, e := range graph.Dedupe(es) {
			if !isCut[e] && !inChain[e.From] && !inChain[e.To] {
				t.Fatalf("case %d: uncovered edge %v could form a chain in %+v", i, e, d)
			}
		}
	}
}

func TestDecomposeEmptyLayerIsOrderIndependent(t *testing.T) {
	x, bare, empty := node.Region("x"), node.Region("a"), node.InLayer("a", "")
	want := Decomposition[node.RegionLayer]{
		Chains:  []Chain[node.RegionLayer]{{x, bare}},
		Linkers: []graph.Edge[node.RegionLayer]{graph.E(x, empty)},
	}
	for _, in := range [][]graph.Edge[node.RegionLayer]{
		{graph.E(x, bare), graph.E(x, empty)},
		{graph.E(x, empty), graph.E(x, bare)},
	} {
		if diff := cmp.Diff(want, Decompose(in)); diff != "" {
			t.Errorf("Decompose(%v) mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestDecomposeLongPath(t *testing.T) {
	const n = 300
	keys := make([]id, n)
	pairs := make([]string, 0, 2*n)
	for i := range keys {
		keys[i] = id(fmt.Sprintf("n%03d", i))
		if i > 0 {
			pairs = append(pairs, string(keys[i-1]), string(keys[i]))
		}
	}
	// A side branch off the middle becomes its own chain.
	pairs = append(pairs, "n150", "side1", "side1", "side2")

	d := Decompose(edges(pairs...))
	want := Decomposition[id]{
		Chains:  chains(keys, []id{"side1", "side2"}),
		Linkers: edges("n150", "side1"),
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("Decompose mismatch (-want +got):\n%s", diff)
	}
}
