// Package node defines the vertex identities used by the path codecs.
//
// # Overview
//
// The codecs in [tree] and [chain] never look inside a node. All they need
// is a value that can be used as a map key and compared against another
// value of the same type. The [Key] constraint captures exactly that:
//
//	type Key[K any] interface {
//	    comparable
//	    Compare(K) int
//	}
//
// Two implementations are provided:
//
//   - [ID]: a plain identifier such as a CURIE ("UBERON:0001896") or label
//   - [RegionLayer]: a composite (region, optional layer) pair used for
//     anatomical waypoints that name a layer inside a region
//
// # Ordering
//
// Compare must be a total order. Sibling order in a forest and tie-breaks in
// the chain decomposer follow it, which is what makes both outputs canonical
// for a given edge set.
//
// [RegionLayer] orders by region first and uses the layer only as a
// tie-break. An absent layer compares equal to an empty layer. Two keys that
// differ only in that respect are distinct map keys but sort together, so
// outputs involving both are not guaranteed to be order independent.
//
// # Hashing
//
// Every key type in this package implements [Canonical]. [ShortHash] turns
// the canonical text into a short, stable content hash used to deduplicate
// paths and to build cache keys.
//
// [tree]: github.com/matzehuels/neuronpath/pkg/tree
// [chain]: github.com/matzehuels/neuronpath/pkg/chain
package node
