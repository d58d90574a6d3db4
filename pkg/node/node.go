package node

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
	"strings"
)

// ErrEmptyNode is returned by [ParseID] and [ParseRegionLayer] for empty input.
var ErrEmptyNode = errors.New("node identifier must not be empty")

// LayerSeparator separates region and layer in the text form of a [RegionLayer].
const LayerSeparator = "@"

// shortHashLen is the number of hex characters kept by ShortHash.
const shortHashLen = 12

// Key is the constraint satisfied by every vertex identity. Keys must be
// usable as map keys and Compare must define a total order.
type Key[K any] interface {
	comparable
	Compare(K) int
}

// Canonical is implemented by keys with a stable text form.
type Canonical interface {
	Canonical() string
}

// Hashable is a [Key] that also has a canonical text form.
type Hashable[K any] interface {
	Key[K]
	Canonical
}

// ID is a plain node identifier.
type ID string

// Compare orders IDs lexicographically.
func (a ID) Compare(b ID) int { return strings.Compare(string(a), string(b)) }

// Canonical returns the identifier itself.
func (a ID) Canonical() string { return string(a) }

func (a ID) String() string { return string(a) }

// ParseID validates s and returns it as an ID.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyNode
	}
	return ID(s), nil
}

// RegionLayer is a composite key naming a region and, optionally, a layer
// within it. The zero value is not a valid key; Region must be set.
type RegionLayer struct {
	Region   string
	Layer    string
	HasLayer bool
}

// Region returns a key with no layer.
func Region(region string) RegionLayer { return RegionLayer{Region: region} }

// InLayer returns a key for layer inside region.
func InLayer(region, layer string) RegionLayer {
	return RegionLayer{Region: region, Layer: layer, HasLayer: true}
}

// Compare orders by region, then by layer. An absent layer sorts as if it
// were empty; [Total] separates the two.
func (a RegionLayer) Compare(b RegionLayer) int {
	if c := cmp.Compare(a.Region, b.Region); c != 0 {
		return c
	}
	return cmp.Compare(a.Layer, b.Layer)
}

// Canonical returns the text form: "region" or "region@layer".
func (a RegionLayer) Canonical() string {
	if !a.HasLayer {
		return a.Region
	}
	return a.Region + LayerSeparator + a.Layer
}

func (a RegionLayer) String() string { return a.Canonical() }

// MarshalText encodes the key in its canonical text form.
func (a RegionLayer) MarshalText() ([]byte, error) {
	if a.Region == "" {
		return nil, ErrEmptyNode
	}
	return []byte(a.Canonical()), nil
}

// UnmarshalText decodes the canonical text form.
func (a *RegionLayer) UnmarshalText(b []byte) error {
	k, err := ParseRegionLayer(string(b))
	if err != nil {
		return err
	}
	*a = k
	return nil
}

// ParseRegionLayer parses the text form produced by [RegionLayer.Canonical].
// The last separator splits region from layer, so "a@" yields an empty,
// present layer.
func ParseRegionLayer(s string) (RegionLayer, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RegionLayer{}, ErrEmptyNode
	}
	i := strings.LastIndex(s, LayerSeparator)
	if i < 0 {
		return Region(s), nil
	}
	if i == 0 {
		return RegionLayer{}, ErrEmptyNode
	}
	return InLayer(s[:i], s[i+len(LayerSeparator):]), nil
}

// ShortHash returns a short hex content hash of the key's canonical form.
func ShortHash(k Canonical) string {
	sum := sha256.Sum256([]byte(k.Canonical()))
	return hex.EncodeToString(sum[:])[:shortHashLen]
}

// Total is Compare made total over distinct keys: keys that Compare equal
// but differ are ordered by their canonical text when they have one. For
// [RegionLayer] this puts "a" before "a@".
func Total[K Key[K]](a, b K) int {
	if c := a.Compare(b); c != 0 || a == b {
		return c
	}
	ca, ok := any(a).(Canonical)
	if !ok {
		return 0
	}
	return strings.Compare(ca.Canonical(), any(b).(Canonical).Canonical())
}

// Sort sorts keys in place by [Total].
func Sort[K Key[K]](keys []K) {
	slices.SortFunc(keys, Total[K])
}

// Min returns the smallest key and false if keys is empty.
func Min[K Key[K]](keys []K) (K, bool) {
	var zero K
	if len(keys) == 0 {
		return zero, false
	}
	return slices.MinFunc(keys, Total[K]), true
}
