package tree

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

func sortedEdges(es []graph.Edge[id]) []graph.Edge[id] { return graph.Dedupe(es) }

func TestExpand(t *testing.T) {
	tests := []struct {
		name  string
		edges []graph.Edge[id]
		want  string
		kind  Kind
	}{
		{
			name: "two roots under blank head",
			edges: edges(
				"a", "b", "b", "c", "c", "d", "d", "e", "d", "k",
				"a", "f", "f", "g", "h", "i", "i", "j",
			),
			want: "(blank (a (b (c (d e k))) (f g)) (h (i j)))",
			kind: KindForest,
		},
		{
			name:  "single root is unwrapped",
			edges: edges("a", "b", "b", "c", "a", "d"),
			want:  "(a (b c) d)",
			kind:  KindSeq,
		},
		{
			name:  "auto cycle does not add a root",
			edges: edges("1", "2", "2", "3", "2", "2"),
			want:  "(1 (2 2 3))",
			kind:  KindSeq,
		},
		{
			name:  "re-convergence re-mentions the join",
			edges: edges("a", "b", "a", "c", "b", "d", "c", "d"),
			want:  "(a (b d) (c d))",
			kind:  KindSeq,
		},
		{
			name:  "pure cycle starts at smallest edge",
			edges: edges("c", "a", "b", "c", "a", "b"),
			want:  "(a (b (c a)))",
			kind:  KindSeq,
		},
		{
			name:  "lone self loop",
			edges: edges("x", "x"),
			want:  "(x x)",
			kind:  KindSeq,
		},
		{
			name:  "detached cycle gets its own tree",
			edges: edges("s", "t", "y", "x", "x", "y"),
			want:  "(blank (s t) (x (y x)))",
			kind:  KindForest,
		},
		{
			name: "empty",
			want: "(blank)",
			kind: KindForest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Expand(tt.edges)
			if got := v.String(); got != tt.want {
				t.Errorf("Expand() = %s, want %s", got, tt.want)
			}
			if v.Kind() != tt.kind {
				t.Errorf("Expand() kind = %v, want %v", v.Kind(), tt.kind)
			}

			back, err := Collapse(v)
			if err != nil {
				t.Fatalf("Collapse() error: %v", err)
			}
			if diff := cmp.Diff(sortedEdges(tt.edges), sortedEdges(back)); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			if len(back) != len(tt.edges) {
				t.Errorf("Collapse() returned %d edges, want %d", len(back), len(tt.edges))
			}
		})
	}
}

func TestExpandScenarioARoots(t *testing.T) {
	v := Expand(edges(
		"a", "b", "b", "c", "c", "d", "d", "e", "d", "k",
		"a", "f", "f", "g", "h", "i", "i", "j",
	))
	if !v.IsBlank() {
		t.Fatalf("expected a blank-headed forest, got %s", v)
	}
	var roots []id
	for _, tree := range v.Items() {
		h, _ := tree.Head()
		roots = append(roots, h)
	}
	if diff := cmp.Diff([]id{"a", "h"}, roots); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
}

func TestCollapseOrder(t *testing.T) {
	v := Seq[id]("a", Seq[id]("b", Leaf[id]("c")), Leaf[id]("d"))
	got, err := Collapse(v)
	if err != nil {
		t.Fatal(err)
	}
	want := edges("a", "b", "a", "d", "b", "c")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collapse() order mismatch (-want +got):\n%s", diff)
	}
}

func TestCollapseMalformed(t *testing.T) {
	tests := []struct {
		name string
		v    Value[id]
	}{
		{"sequence in head position", List(Seq[id]("a", Leaf[id]("b")), Leaf[id]("c"))},
		{"empty sequence", List[id]()},
		{"empty child sequence", Seq[id]("a", List[id]())},
		{"forest as child", Seq[id]("a", Forest(Leaf[id]("b")))},
		{"nested blank head", Forest(Forest(Seq[id]("a", Leaf[id]("b"))))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Collapse(tt.v)
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("Collapse() error = %v, want ErrMalformedInput", err)
			}
		})
	}
}

func TestCollapseLeafAndEmptyForest(t *testing.T) {
	for _, v := range []Value[id]{Leaf[id]("a"), Forest[id](), {}} {
		got, err := Collapse(v)
		if err != nil || len(got) != 0 {
			t.Errorf("Collapse(%s) = %v, %v; want no edges", v, got, err)
		}
	}
}

func randomEdges(r *rand.Rand) []graph.Edge[id] {
	n := 1 + r.IntN(8)
	m := r.IntN(16)
	seen := make(map[graph.Edge[id]]bool)
	var out []graph.Edge[id]
	for i := 0; i < m; i++ {
		e := graph.E(id(fmt.Sprintf("n%d", r.IntN(n))), id(fmt.Sprintf("n%d", r.IntN(n))))
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

func TestRoundTripProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 2000; i++ {
		es := randomEdges(r)
		v := Expand(es)
		back, err := Collapse(v)
		if err != nil {
			t.Fatalf("case %d: Collapse(%s) error: %v", i, v, err)
		}
		if !graph.SetEqual(es, back) || len(back) != len(es) {
			t.Fatalf("case %d: edges %v expanded to %s collapsed to %v", i, es, v, back)
		}

		want := graph.New(es...).Nodes()
		if diff := cmp.Diff(want, Nodes(v)); len(want) > 0 && diff != "" {
			t.Fatalf("case %d: node coverage mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestExpandIsOrderIndependent(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 500; i++ {
		es := randomEdges(r)
		want := Expand(es)
		shuffled := append([]graph.Edge[id](nil), es...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := Expand(shuffled); !got.Equal(want) {
			t.Fatalf("case %d: Expand not order independent: %s vs %s", i, want, got)
		}
	}
}

func TestForestRoundTripIsIdempotent(t *testing.T) {
	v := Expand(edges("a", "b", "b", "c", "x", "y"))
	es, err := Collapse(v)
	if err != nil {
		t.Fatal(err)
	}
	if again := Expand(es); !again.Equal(v) {
		t.Errorf("forest -> edges -> forest changed value: %s vs %s", v, again)
	}
}

func TestDeepPathDoesNotRecurse(t *testing.T) {
	const n = 50000
	es := make([]graph.Edge[id], 0, n)
	for i := 0; i < n; i++ {
		es = append(es, graph.E(id(fmt.Sprintf("%06d", i)), id(fmt.Sprintf("%06d", i+1))))
	}
	v := Expand(es)
	if d := Depth(v); d != n {
		t.Errorf("Depth() = %d, want %d", d, n)
	}
	back, err := Collapse(v)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != n {
		t.Errorf("Collapse() returned %d edges, want %d", len(back), n)
	}
}

func TestExpandEmptyLayerIsOrderIndependent(t *testing.T) {
	x, bare, empty := node.Region("x"), node.Region("a"), node.InLayer("a", "")
	v1 := Expand([]graph.Edge[node.RegionLayer]{graph.E(x, bare), graph.E(x, empty)})
	v2 := Expand([]graph.Edge[node.RegionLayer]{graph.E(x, empty), graph.E(x, bare)})
	if v1.String() != "(x a a@)" || v2.String() != v1.String() {
		t.Errorf("Expand = %s and %s, want (x a a@) for both", v1, v2)
	}
}
