package rdflist_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/neuronpath/pkg/node"
	"github.com/matzehuels/neuronpath/pkg/rdflist"
	"github.com/matzehuels/neuronpath/pkg/tree"
)

func ExampleEncode() {
	v := tree.Seq(node.Region("UBERON:1"), tree.Leaf(node.InLayer("UBERON:2", "L5")))
	c, _ := rdflist.Encode(v, rdflist.Binder[node.RegionLayer](rdflist.RegionLayerBinder{}))
	fmt.Println(c)
	// Output: (UBERON:1 (UBERON:2 (ilxtr:hasLayer L5)))
}

func ExampleLinearize() {
	root, stmts, _ := rdflist.Linearize(rdflist.List(rdflist.Term("a"), rdflist.Term("b")))
	fmt.Println("root:", root)
	_ = rdflist.WriteStatements(os.Stdout, stmts)
	// Output:
	// root: _:b0
	// _:b0 rdf:first a .
	// _:b0 rdf:rest _:b1 .
	// _:b1 rdf:first b .
	// _:b1 rdf:rest rdf:nil .
}
