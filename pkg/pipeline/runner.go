package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/neuronpath/pkg/cache"
	"github.com/matzehuels/neuronpath/pkg/chain"
	"github.com/matzehuels/neuronpath/pkg/graph"
	"github.com/matzehuels/neuronpath/pkg/observability"
	"github.com/matzehuels/neuronpath/pkg/rdflist"
	"github.com/matzehuels/neuronpath/pkg/render"
	"github.com/matzehuels/neuronpath/pkg/render/nodelink"
	"github.com/matzehuels/neuronpath/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long results stay cached. Zero keeps them forever.
	TTL time.Duration

	// OnBatchProgress, when set, is called by ProcessBatch each time a
	// path finishes. Calls may come from several goroutines.
	OnBatchProgress func(done, total int)

	group singleflight.Group
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLResult,
	}
}

// Execute runs expand, encode, decompose and the optional render stage on
// one path.
func (r *Runner) Execute(ctx context.Context, p Path, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := r.Logger.With("path", p.Name)

	g, dup := DistinctGraph(p)
	if dup > 0 {
		logger.Warn("dropped duplicate edges", "count", dup)
	}

	result := &Result{
		Name:      p.Name,
		GraphHash: graph.Hash(g),
		Artifacts: make(map[string][]byte),
	}
	result.Stats.NodeCount = len(g.Nodes())
	result.Stats.EdgeCount = g.Len()
	result.Stats.DuplicateEdges = dup

	// Stage 1: Expand
	start := time.Now()
	forest, hit, err := r.ExpandWithCacheInfo(ctx, p.Name, g, opts)
	if err != nil {
		return nil, err
	}
	result.Forest = forest
	result.Stats.ExpandTime = time.Since(start)
	result.Stats.Depth = tree.Depth(forest)
	result.CacheInfo.ExpandHit = hit

	logger.Info("expanded path",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"depth", result.Stats.Depth,
		"duration", result.Stats.ExpandTime)

	// Stage 2: Encode
	start = time.Now()
	encoded, hit, err := r.EncodeWithCacheInfo(ctx, p.Name, result.GraphHash, forest, opts)
	if err != nil {
		return nil, err
	}
	result.Encoded = encoded
	result.Stats.EncodeTime = time.Since(start)
	result.CacheInfo.EncodeHit = hit

	logger.Debug("encoded forest", "duration", result.Stats.EncodeTime)

	// Stage 3: Decompose
	start = time.Now()
	d, hit, err := r.DecomposeWithCacheInfo(ctx, p.Name, g, opts)
	if err != nil {
		return nil, err
	}
	result.Decomposition = d
	result.Stats.DecomposeTime = time.Since(start)
	result.Stats.ChainCount = len(d.Chains)
	result.Stats.LinkerCount = len(d.Linkers)
	result.CacheInfo.DecomposeHit = hit

	logger.Info("decomposed path",
		"chains", len(d.Chains),
		"linkers", len(d.Linkers),
		"duration", result.Stats.DecomposeTime)

	// Stage 4: Render
	if len(opts.Formats) > 0 {
		start = time.Now()
		artifacts, err := r.Render(ctx, p.Name, g.Edges(), &d, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(start)
		logger.Info("rendered outputs", "formats", opts.Formats, "duration", result.Stats.RenderTime)
	}

	if opts.Verify {
		start = time.Now()
		if err := Verify(g, result, opts); err != nil {
			return nil, err
		}
		result.Stats.VerifyTime = time.Since(start)
		logger.Debug("verified round trips", "duration", result.Stats.VerifyTime)
	}

	return result, nil
}

// ExpandWithCacheInfo expands g with caching and returns cache hit info.
func (r *Runner) ExpandWithCacheInfo(ctx context.Context, name string, g *graph.Graph[Key], opts Options) (tree.Value[Key], bool, error) {
	key := r.Keyer.ResultKey(graph.Hash(g), cache.ResultKeyOpts{Kind: cache.KindForest})
	return cached(ctx, r, cache.KindForest, key, opts.Refresh,
		func(data []byte) (tree.Value[Key], error) { return ParseForest(string(data)) },
		func() (tree.Value[Key], []byte, error) {
			v, err := instrument(ctx, OpExpand, name, func() (tree.Value[Key], int, error) {
				return tree.ExpandGraph(g), g.Len(), nil
			})
			return v, []byte(v.String()), err
		})
}

// Expand is a convenience wrapper that calls ExpandWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Expand(ctx context.Context, p Path, opts Options) (tree.Value[Key], error) {
	g, _ := DistinctGraph(p)
	v, _, err := r.ExpandWithCacheInfo(ctx, p.Name, g, opts)
	return v, err
}

// EncodeWithCacheInfo encodes a forest with caching. graphHash identifies
// the edge set the forest was expanded from.
func (r *Runner) EncodeWithCacheInfo(ctx context.Context, name, graphHash string, v tree.Value[Key], opts Options) (rdflist.Cell, bool, error) {
	key := r.Keyer.ResultKey(graphHash, cache.ResultKeyOpts{
		Kind:      cache.KindEncoded,
		LayerTerm: opts.layerTerm(),
		Strict:    opts.Strict,
	})
	return cached(ctx, r, cache.KindEncoded, key, opts.Refresh,
		func(data []byte) (rdflist.Cell, error) {
			var c rdflist.Cell
			err := json.Unmarshal(data, &c)
			return c, err
		},
		func() (rdflist.Cell, []byte, error) {
			c, err := instrument(ctx, OpEncode, name, func() (rdflist.Cell, int, error) {
				c, err := rdflist.Encode[Key](v, opts.Binder())
				return c, len(tree.Nodes(v)), err
			})
			if err != nil {
				return c, nil, err
			}
			data, err := json.Marshal(c)
			return c, data, err
		})
}

// DecomposeWithCacheInfo decomposes g with caching and returns cache hit
// info.
func (r *Runner) DecomposeWithCacheInfo(ctx context.Context, name string, g *graph.Graph[Key], opts Options) (chain.Decomposition[Key], bool, error) {
	key := r.Keyer.ResultKey(graph.Hash(g), cache.ResultKeyOpts{Kind: cache.KindChains})
	return cached(ctx, r, cache.KindChains, key, opts.Refresh,
		func(data []byte) (chain.Decomposition[Key], error) {
			var d chain.Decomposition[Key]
			err := json.Unmarshal(data, &d)
			return d, err
		},
		func() (chain.Decomposition[Key], []byte, error) {
			d, err := instrument(ctx, OpDecompose, name, func() (chain.Decomposition[Key], int, error) {
				return chain.DecomposeGraph(g), g.Len(), nil
			})
			if err != nil {
				return d, nil, err
			}
			data, err := json.Marshal(d)
			return d, data, err
		})
}

// Decompose is a convenience wrapper that calls DecomposeWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Decompose(ctx context.Context, p Path, opts Options) (chain.Decomposition[Key], error) {
	g, _ := DistinctGraph(p)
	d, _, err := r.DecomposeWithCacheInfo(ctx, p.Name, g, opts)
	return d, err
}

// Collapse converts a forest back into edges.
func (r *Runner) Collapse(ctx context.Context, name string, v tree.Value[Key]) ([]Edge, error) {
	return instrument(ctx, OpCollapse, name, func() ([]Edge, int, error) {
		edges, err := tree.Collapse(v)
		return edges, len(edges), err
	})
}

// Decode converts a nested-list encoding back into a forest.
func (r *Runner) Decode(ctx context.Context, name string, c rdflist.Cell, opts Options) (tree.Value[Key], error) {
	return instrument(ctx, OpDecode, name, func() (tree.Value[Key], int, error) {
		v, err := rdflist.Decode[Key](c, opts.Binder())
		return v, len(tree.Nodes(v)), err
	})
}

// Recompose converts a decomposition back into edges.
func (r *Runner) Recompose(ctx context.Context, name string, d chain.Decomposition[Key]) ([]Edge, error) {
	return instrument(ctx, OpRecompose, name, func() ([]Edge, int, error) {
		edges, err := chain.Recompose(d)
		return edges, len(edges), err
	})
}

// Render draws the path in every requested format. d may be nil for a
// plain drawing.
func (r *Runner) Render(ctx context.Context, name string, edges []Edge, d *chain.Decomposition[Key], opts Options) (map[string][]byte, error) {
	if err := render.ValidateFormats(opts.Formats); err != nil {
		return nil, Classify(err)
	}
	dot := nodelink.ToDOT(edges, nodelink.Options[Key]{Chains: d, Title: name, LeftToRight: opts.LeftToRight})
	return instrument(ctx, OpRender, name, func() (map[string][]byte, int, error) {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, err := nodelink.Render(ctx, dot, format)
			if err != nil {
				return nil, 0, fmt.Errorf("render %s: %w", format, err)
			}
			artifacts[format] = data
		}
		return artifacts, len(edges), nil
	})
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cached returns the decoded cache entry for key, or computes, stores and
// returns a fresh value. Concurrent misses on one key compute once.
func cached[T any](ctx context.Context, r *Runner, kind, key string, refresh bool,
	decode func([]byte) (T, error), compute func() (T, []byte, error)) (T, bool, error) {
	hooks := observability.Cache()

	if !refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Warn("cache read failed", "kind", kind, "error", err)
		case hit:
			if v, err := decode(data); err == nil {
				hooks.OnCacheHit(ctx, kind)
				return v, true, nil
			}
			// If deserialization fails, fall through to recompute
			r.Logger.Debug("discarding unreadable cache entry", "kind", kind, "key", key)
		}
		hooks.OnCacheMiss(ctx, kind)
	}

	type entry struct {
		v    T
		data []byte
	}
	res, err, _ := r.group.Do(key, func() (any, error) {
		v, data, err := compute()
		if err != nil {
			return nil, err
		}
		return entry{v, data}, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	e := res.(entry)

	if err := r.Cache.Set(ctx, key, e.data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "kind", kind, "error", err)
	} else {
		hooks.OnCacheSet(ctx, kind, len(e.data))
	}
	return e.v, false, nil
}

// DistinctGraph returns the graph of p's distinct edges and the number of
// duplicates dropped.
func DistinctGraph(p Path) (*graph.Graph[Key], int) {
	g := p.Graph()
	distinct := g.Dedupe()
	if len(distinct) == g.Len() {
		return g, 0
	}
	return graph.New(distinct...), g.Len() - len(distinct)
}

// instrument reports fn to the codec hooks and classifies its error. fn
// returns its result and the number of edges it handled.
func instrument[T any](ctx context.Context, op, name string, fn func() (T, int, error)) (T, error) {
	hooks := observability.Codec()
	hooks.OnOperationStart(ctx, op, name)
	start := time.Now()
	v, size, err := fn()
	if err != nil {
		err = Classify(err)
	}
	hooks.OnOperationComplete(ctx, op, name, size, time.Since(start), err)
	return v, err
}
