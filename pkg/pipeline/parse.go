package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/neuronpath/pkg/chain"
	"github.com/matzehuels/neuronpath/pkg/node"
	"github.com/matzehuels/neuronpath/pkg/rdflist"
	"github.com/matzehuels/neuronpath/pkg/tree"
)

// ParseForest reads a forest in s-expression form, e.g. "(a (b c) d)".
// Node atoms are parsed with [node.ParseRegionLayer].
func ParseForest(s string) (tree.Value[Key], error) {
	v, err := tree.Parse(s, node.ParseRegionLayer)
	return v, Classify(err)
}

// ParseEncoded reads a nested-list encoding. JSON arrays of strings are
// accepted, as is the s-expression form printed by [rdflist.Cell.String]
// when the input does not start with '['.
func ParseEncoded(data []byte) (rdflist.Cell, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, `"`) {
		var c rdflist.Cell
		if err := json.Unmarshal([]byte(trimmed), &c); err != nil {
			return rdflist.Cell{}, Classify(malformed(err))
		}
		return c, nil
	}
	c, err := rdflist.Parse(trimmed)
	return c, Classify(err)
}

// ParseDecomposition reads the JSON form of a chain decomposition:
//
//	{"chains": [["a", "b"]], "linkers": [{"from": "a", "to": "c"}]}
func ParseDecomposition(data []byte) (chain.Decomposition[Key], error) {
	var d chain.Decomposition[Key]
	if err := json.Unmarshal(data, &d); err != nil {
		return d, Classify(malformed(err))
	}
	return d, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", tree.ErrMalformedInput, err)
}
