package chain_test

import (
	"fmt"

	"github.com/matzehuels/neuronpath/pkg/chain"
	"github.com/matzehuels/neuronpath/pkg/graph"
	"github.com/matzehuels/neuronpath/pkg/node"
)

func ExampleDecompose() {
	d := chain.Decompose([]graph.Edge[node.ID]{
		graph.E[node.ID]("1", "3"),
		graph.E[node.ID]("1", "2"),
		graph.E[node.ID]("2", "4"),
	})
	fmt.Println("chains:", d.Chains)
	fmt.Println("linkers:", d.Linkers)
	// Output:
	// chains: [[1 2 4]]
	// linkers: [1->3]
}

func ExampleRecompose() {
	edges, err := chain.Recompose(chain.Decomposition[node.ID]{
		Chains:  []chain.Chain[node.ID]{{"a", "b", "c"}},
		Linkers: []graph.Edge[node.ID]{graph.E[node.ID]("a", "c")},
	})
	fmt.Println(edges, err)
	// Output: [a->b b->c a->c] <nil>
}
