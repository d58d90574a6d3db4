// Package rdflist binds tree values to the generic nested-list encoding
// used when a path is embedded in a published ontology document.
//
// [Encode] and [Decode] convert between [tree.Value] and [Cell], a term or
// an ordered list of cells. How a node is written is delegated to a
// [Binder]: [IDBinder] writes a plain term, [RegionLayerBinder] writes a
// region and nests its layer one level down under a linking term:
//
//	(UBERON:1 (UBERON:2 (ilxtr:hasLayer L5)) UBERON:3)
//
// The encoding has no arity marker, so the decoder asks the binder whether
// each cell is a node before treating it as a nested sequence.
//
// [Linearize] and [Relink] convert a cell to and from first/rest linked
// statements with numbered blank nodes.
package rdflist
