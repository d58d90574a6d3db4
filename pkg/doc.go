// Package pkg provides the libraries behind neuronpath.
//
// # Overview
//
// A connectivity path is a small directed graph: anatomical regions (and
// layers within them) joined by edges, with branches, merges and the
// occasional cycle. Published documents store such a path in two shapes,
// and neuronpath converts between them and the plain edge list:
//
//  1. a nested tree, written as an s-expression such as (a (b@L5 c) c)
//  2. a cover of simple chains plus the linker edges no chain walks
//
// Both conversions are lossless: collapsing a tree or recomposing a chain
// cover gives back the original edge set.
//
// # Architecture
//
//	edge list (JSON, TOML or CSV)
//	         ↓
//	    [io] package (path sets)
//	         ↓
//	    [graph] package (edges, roots, canonical hash)
//	         ↓                        ↓
//	    [tree] package           [chain] package
//	         ↓                        ↓
//	    [rdflist] package        [render/nodelink] package
//	         ↓                        ↓
//	nested-list encoding       DOT, SVG, PNG
//
// [pipeline] runs these steps with caching and verification and is shared
// by the CLI and the HTTP API.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/neuronpath/pkg/chain"
//	    "github.com/matzehuels/neuronpath/pkg/graph"
//	    "github.com/matzehuels/neuronpath/pkg/node"
//	    "github.com/matzehuels/neuronpath/pkg/rdflist"
//	    "github.com/matzehuels/neuronpath/pkg/tree"
//	)
//
//	a, b, c := node.Region("a"), node.InLayer("b", "L5"), node.Region("c")
//	edges := []graph.Edge[node.RegionLayer]{graph.E(a, b), graph.E(b, c), graph.E(a, c)}
//
//	// 1. Nested tree
//	v := tree.Expand(edges) // (a (b@L5 c) c)
//
//	// 2. Nested-list encoding with the layer predicate
//	cell, _ := rdflist.Encode(v, rdflist.RegionLayerBinder{})
//
//	// 3. Chains and linkers
//	d := chain.Decompose(edges) // chains [[a b@L5 c]], linkers [a->c]
//
// # Main Packages
//
// ## Core
//
// [node] - Vertex identities. [node.ID] for plain terms and
// [node.RegionLayer] for a region with an optional layer.
//
// [graph] - Edge lists with sources, sinks, degrees and the synthetic start
// used for entirely cyclic paths.
//
// [tree] - Expand edges into the canonical nested tree and collapse it back.
//
// [chain] - Decompose edges into maximal simple chains and linkers, and
// recompose them.
//
// [rdflist] - Bind trees to generic nested lists of terms, and lists to
// first/rest statements.
//
// ## Infrastructure
//
// [pipeline] - Runner shared by the CLI and the API: hash-keyed caching,
// verification, batch processing and observability hooks.
//
// [cache] - Result caches: file (CLI), Redis and MongoDB (shared), null.
//
// [io] - Path set files in JSON, TOML and CSV.
//
// [config] - TOML configuration.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for codec, cache and HTTP events; [observability/prom]
// implements them with Prometheus.
//
// [render] - Output format handling; [render/nodelink] draws paths with
// Graphviz.
//
// # Testing
//
//	go test ./...                                    # All tests
//	go test ./pkg/chain/...                          # Specific package
//	go test -run Example ./pkg/...                   # Examples only
//	NEURONPATH_TEST_REDIS=localhost:6379 go test ./pkg/cache/  # Live backends
//
// [node]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/node
// [node.ID]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/node#ID
// [node.RegionLayer]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/node#RegionLayer
// [graph]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/graph
// [tree]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/tree
// [chain]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/chain
// [rdflist]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/rdflist
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/io
// [config]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/observability/prom
// [render]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/neuronpath/pkg/render/nodelink
package pkg
