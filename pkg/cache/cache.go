// Package cache stores codec results keyed by a content hash of the input
// edge set.
//
// Four backends implement [Cache]: [FileCache] for the CLI, [RedisCache] and
// [MongoCache] for the shared HTTP service, and [NullCache] when caching is
// disabled. Keys come from a [Keyer] so that deployments can scope entries.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default TTLs for cached results.
const (
	// TTLResult is the lifetime of a forest or chain result. Results are
	// pure functions of their input so they only expire to bound storage.
	TTLResult = 30 * 24 * time.Hour
)

// Result kinds used in cache keys.
const (
	KindForest  = "forest"
	KindChains  = "chains"
	KindEncoded = "encoded"
)

// ResultKeyOpts are the options that change a cached result.
type ResultKeyOpts struct {
	Kind      string `json:"kind"`
	LayerTerm string `json:"layer_term,omitempty"`
	Strict    bool   `json:"strict,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// ResultKey returns the key for a codec result over the edge set
	// identified by graphHash.
	ResultKey(graphHash string, opts ResultKeyOpts) string
}

// DefaultKeyer is the unscoped [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the unscoped keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey returns "result:<kind>:<hash>" where hash covers graphHash and
// every option.
func (DefaultKeyer) ResultKey(graphHash string, opts ResultKeyOpts) string {
	return hashKey("result:"+opts.Kind, graphHash, opts)
}
