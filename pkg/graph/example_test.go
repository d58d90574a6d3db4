package graph_test

import (
	"fmt"

	"github.com/matzehuels/neuronpath/pkg/graph"
	"github.com/matzehuels/neuronpath/pkg/node"
)

func ExampleGraph_Sources() {
	g := graph.New(
		graph.E[node.ID]("soma", "axon"),
		graph.E[node.ID]("axon", "terminal"),
		graph.E[node.ID]("dendrite", "soma"),
	)
	fmt.Println("Sources:", g.Sources())
	fmt.Println("Sinks:", g.Sinks())
	fmt.Println("In-degree of soma:", g.InDegree("soma"))
	// Output:
	// Sources: [dendrite]
	// Sinks: [terminal]
	// In-degree of soma: 1
}

func ExampleGraph_Roots() {
	// A pure cycle has no source; the smallest edge picks the start.
	g := graph.New(
		graph.E[node.ID]("c", "a"),
		graph.E[node.ID]("a", "b"),
		graph.E[node.ID]("b", "c"),
	)
	fmt.Println(g.Roots())
	// Output: [a]
}
