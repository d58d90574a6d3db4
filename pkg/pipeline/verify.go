package pipeline

import (
	"github.com/matzehuels/neuronpath/pkg/chain"
	"github.com/matzehuels/neuronpath/pkg/errors"
	"github.com/matzehuels/neuronpath/pkg/graph"
	"github.com/matzehuels/neuronpath/pkg/rdflist"
	"github.com/matzehuels/neuronpath/pkg/tree"
)

// Verify checks that every artifact in res converts back to g:
//
//   - Collapse(Forest) has exactly the edges of g
//   - Decode(Encoded) equals Forest, up to dropped empty layers
//   - Recompose(Decomposition) has exactly the edges of g
//
// A failure is an INTERNAL_ERROR naming the stage.
func Verify(g *graph.Graph[Key], res *Result, opts Options) error {
	if err := VerifyForest(g, res.Forest); err != nil {
		return err
	}

	decoded, err := rdflist.Decode[Key](res.Encoded, opts.Binder())
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "verify encode")
	}
	if !decoded.Equal(dropEmptyLayers(res.Forest)) {
		return errors.New(errors.ErrCodeInternal, "verify encode: decoded %s, want %s", decoded, res.Forest)
	}

	return VerifyDecomposition(g, res.Decomposition)
}

// VerifyForest checks that v collapses to exactly the distinct edges of g.
func VerifyForest(g *graph.Graph[Key], v tree.Value[Key]) error {
	edges, err := tree.Collapse(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "verify expand")
	}
	want := g.Dedupe()
	if len(edges) != len(want) || !graph.SetEqual(want, edges) {
		return errors.New(errors.ErrCodeInternal, "verify expand: forest %s has %d edges, want %d", v, len(edges), len(want))
	}
	return nil
}

// VerifyDecomposition checks that d recomposes to exactly the distinct
// edges of g.
func VerifyDecomposition(g *graph.Graph[Key], d chain.Decomposition[Key]) error {
	edges, err := chain.Recompose(d)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "verify decompose")
	}
	want := g.Dedupe()
	if len(edges) != len(want) || !graph.SetEqual(want, edges) {
		return errors.New(errors.ErrCodeInternal, "verify decompose: recomposed %d edges, want %d", len(edges), len(want))
	}
	return nil
}

// dropEmptyLayers returns v with every present-but-empty layer removed,
// which is how a non-strict decode reads them back.
func dropEmptyLayers(v tree.Value[Key]) tree.Value[Key] {
	return tree.Map(v, func(k Key) Key {
		if k.HasLayer && k.Layer == "" {
			return Key{Region: k.Region}
		}
		return k
	})
}
