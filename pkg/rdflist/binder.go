package rdflist

import (
	"errors"
	"fmt"

	"github.com/matzehuels/neuronpath/pkg/node"
	"github.com/matzehuels/neuronpath/pkg/tree"
)

// DefaultLayerTerm links a region to its layer attachment.
const DefaultLayerTerm = "ilxtr:hasLayer"

var (
	// ErrReservedTerm is returned when a node would encode as a term the
	// format reserves for its own structure.
	ErrReservedTerm = fmt.Errorf("%w: reserved term used as node", tree.ErrMalformedInput)

	// ErrAmbiguousLayer is returned in strict mode for a composite node
	// whose layer is present but empty. Such a node would otherwise decode
	// as the same region without a layer.
	ErrAmbiguousLayer = errors.New("layer is present but empty")
)

// Binder maps node keys to and from cells. IsNode is the one-step
// lookahead used while decoding: it must tell a cell that encodes a single
// node apart from a list that continues the tree.
type Binder[K node.Key[K]] interface {
	EncodeNode(K) (Cell, error)
	IsNode(Cell) bool
	DecodeNode(Cell) (K, error)
}

// IDBinder encodes [node.ID] keys as plain terms.
type IDBinder struct{}

func (IDBinder) EncodeNode(k node.ID) (Cell, error) {
	switch k {
	case "":
		return Cell{}, fmt.Errorf("%w: %w", tree.ErrMalformedInput, node.ErrEmptyNode)
	case tree.BlankTerm:
		return Cell{}, fmt.Errorf("%w: %q", ErrReservedTerm, k)
	}
	return Term(string(k)), nil
}

func (IDBinder) IsNode(c Cell) bool {
	t, ok := c.Text()
	return ok && t != "" && t != tree.BlankTerm
}

func (b IDBinder) DecodeNode(c Cell) (node.ID, error) {
	if !b.IsNode(c) {
		return "", fmt.Errorf("%w: not a node: %s", tree.ErrMalformedInput, c)
	}
	t, _ := c.Text()
	return node.ID(t), nil
}

// RegionLayerBinder encodes [node.RegionLayer] keys. A region without a
// layer is a plain term. A layered region is a two-item list whose second
// item is the attachment, a list headed by the layer term:
//
//	UBERON:0001950
//	(UBERON:0001950 (ilxtr:hasLayer UBERON:0005394))
//
// A present but empty layer encodes as an attachment with no value and
// decodes as an absent layer unless Strict is set.
type RegionLayerBinder struct {
	// LayerTerm heads the attachment. Empty means DefaultLayerTerm.
	LayerTerm string
	// Strict rejects present-but-empty layers in both directions.
	Strict bool
}

func (b RegionLayerBinder) layerTerm() string {
	if b.LayerTerm == "" {
		return DefaultLayerTerm
	}
	return b.LayerTerm
}

func (b RegionLayerBinder) reserved(t string) bool {
	return t == tree.BlankTerm || t == b.layerTerm()
}

func (b RegionLayerBinder) EncodeNode(k node.RegionLayer) (Cell, error) {
	switch {
	case k.Region == "":
		return Cell{}, fmt.Errorf("%w: %w", tree.ErrMalformedInput, node.ErrEmptyNode)
	case b.reserved(k.Region):
		return Cell{}, fmt.Errorf("%w: %q", ErrReservedTerm, k.Region)
	case !k.HasLayer:
		return Term(k.Region), nil
	case k.Layer == "":
		if b.Strict {
			return Cell{}, fmt.Errorf("%w: %s", ErrAmbiguousLayer, k)
		}
		return List(Term(k.Region), List(Term(b.layerTerm()))), nil
	}
	return List(Term(k.Region), List(Term(b.layerTerm()), Term(k.Layer))), nil
}

func (b RegionLayerBinder) IsNode(c Cell) bool {
	if t, ok := c.Text(); ok {
		return t != "" && !b.reserved(t)
	}
	if c.Len() != 2 {
		return false
	}
	region, ok := c.At(0).Text()
	if !ok || region == "" || b.reserved(region) {
		return false
	}
	att := c.At(1)
	if att.IsTerm() || att.Len() < 1 || att.Len() > 2 || !att.At(0).Is(b.layerTerm()) {
		return false
	}
	return att.Len() == 1 || att.At(1).IsTerm()
}

func (b RegionLayerBinder) DecodeNode(c Cell) (node.RegionLayer, error) {
	if !b.IsNode(c) {
		return node.RegionLayer{}, fmt.Errorf("%w: not a node: %s", tree.ErrMalformedInput, c)
	}
	if t, ok := c.Text(); ok {
		return node.Region(t), nil
	}
	region, _ := c.At(0).Text()
	att := c.At(1)
	if att.Len() == 1 {
		if b.Strict {
			return node.RegionLayer{}, fmt.Errorf("%w: %s", ErrAmbiguousLayer, c)
		}
		return node.Region(region), nil
	}
	layer, _ := att.At(1).Text()
	return node.InLayer(region, layer), nil
}
