// Package pipeline runs the path codecs with caching, verification and
// instrumentation.
//
// This package is the single place where the CLI and the HTTP API turn a
// path into its forest, its nested-list encoding and its chain
// decomposition. By centralizing this logic, both entry points share cache
// keys, error codes and log lines.
//
// # Architecture
//
// A full run has four stages:
//
//  1. Expand: edges to the canonical nested forest ([tree.Expand])
//  2. Encode: forest to the nested-list encoding ([rdflist.Encode])
//  3. Decompose: edges to chains and linkers ([chain.Decompose])
//  4. Render: optional node-link drawings of the decomposition
//
// Expand, Encode and Decompose results are cached under a content hash of
// the deduplicated edge set, so reordering or repeating edges in the input
// does not miss the cache. Concurrent requests for the same key are
// collapsed with singleflight.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, path, pipeline.Options{Verify: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Forest)
//
// The inverse operations ([Runner.Collapse], [Runner.Decode] and
// [Runner.Recompose]) are not cached since their input is already the
// artifact.
package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/neuronpath/pkg/chain"
	"github.com/matzehuels/neuronpath/pkg/errors"
	pio "github.com/matzehuels/neuronpath/pkg/io"
	"github.com/matzehuels/neuronpath/pkg/node"
	"github.com/matzehuels/neuronpath/pkg/rdflist"
	"github.com/matzehuels/neuronpath/pkg/render"
	"github.com/matzehuels/neuronpath/pkg/tree"
)

// Key is the node type handled by the pipeline.
type Key = node.RegionLayer

// Edge is an edge between pipeline keys.
type Edge = pio.Edge

// Path is a named path as read by package io.
type Path = pio.Path

// Operation names reported to hooks and logs.
const (
	OpExpand    = "expand"
	OpCollapse  = "collapse"
	OpEncode    = "encode"
	OpDecode    = "decode"
	OpDecompose = "decompose"
	OpRecompose = "recompose"
	OpRender    = "render"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// LayerTerm is the attachment predicate for layered nodes. Empty
	// means [rdflist.DefaultLayerTerm].
	LayerTerm string `json:"layer_term,omitempty"`

	// Strict rejects present-but-empty layers instead of dropping them.
	Strict bool `json:"strict,omitempty"`

	// Verify checks every stage by running its inverse.
	Verify bool `json:"verify,omitempty"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Formats selects node-link renderings. Empty skips rendering.
	Formats []string `json:"formats,omitempty"`

	// LeftToRight lays out rendered chains horizontally.
	LeftToRight bool `json:"left_to_right,omitempty"`
}

// Validate checks the layer term and render formats.
func (o Options) Validate() error {
	if o.LayerTerm != "" {
		if err := errors.ValidateTerm(o.LayerTerm); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
		}
	}
	if err := render.ValidateFormats(o.Formats); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid options")
	}
	return nil
}

// Binder returns the node binder selected by the options.
func (o Options) Binder() rdflist.RegionLayerBinder {
	return rdflist.RegionLayerBinder{LayerTerm: o.LayerTerm, Strict: o.Strict}
}

// layerTerm returns the effective layer term for cache keys.
func (o Options) layerTerm() string {
	if o.LayerTerm == "" {
		return rdflist.DefaultLayerTerm
	}
	return o.LayerTerm
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Name is the path name.
	Name string

	// GraphHash is the content hash of the deduplicated edge set.
	GraphHash string

	// Forest is the canonical nested forest.
	Forest tree.Value[Key]

	// Encoded is the nested-list encoding of Forest.
	Encoded rdflist.Cell

	// Decomposition is the chain cover with its linkers.
	Decomposition chain.Decomposition[Key]

	// Artifacts contains rendered drawings keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount      int           `json:"nodes"`
	EdgeCount      int           `json:"edges"`
	DuplicateEdges int           `json:"duplicate_edges,omitempty"`
	Depth          int           `json:"depth"`
	ChainCount     int           `json:"chains"`
	LinkerCount    int           `json:"linkers"`
	ExpandTime     time.Duration `json:"expand_ns"`
	EncodeTime     time.Duration `json:"encode_ns"`
	DecomposeTime  time.Duration `json:"decompose_ns"`
	RenderTime     time.Duration `json:"render_ns,omitempty"`
	VerifyTime     time.Duration `json:"verify_ns,omitempty"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ExpandHit    bool `json:"expand"`
	EncodeHit    bool `json:"encode"`
	DecomposeHit bool `json:"decompose"`
}

type resultJSON struct {
	Name          string                   `json:"name"`
	GraphHash     string                   `json:"graph_hash"`
	Forest        string                   `json:"forest"`
	Encoded       rdflist.Cell             `json:"encoded"`
	Decomposition chain.Decomposition[Key] `json:"decomposition"`
	Stats         Stats                    `json:"stats"`
	Cache         CacheInfo                `json:"cache"`
}

// MarshalJSON writes the forest as an s-expression. Artifacts are not
// serialized.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Name:          r.Name,
		GraphHash:     r.GraphHash,
		Forest:        r.Forest.String(),
		Encoded:       r.Encoded,
		Decomposition: r.Decomposition,
		Stats:         r.Stats,
		Cache:         r.CacheInfo,
	})
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (r *Result) UnmarshalJSON(b []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	forest, err := ParseForest(raw.Forest)
	if err != nil {
		return fmt.Errorf("forest: %w", err)
	}
	*r = Result{
		Name:          raw.Name,
		GraphHash:     raw.GraphHash,
		Forest:        forest,
		Encoded:       raw.Encoded,
		Decomposition: raw.Decomposition,
		Stats:         raw.Stats,
		CacheInfo:     raw.Cache,
	}
	return nil
}
