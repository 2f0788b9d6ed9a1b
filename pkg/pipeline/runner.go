package pipeline

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/dot"
	flowerrors "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/graph"
	"github.com/matzehuels/flowgrid/pkg/layout"
	"github.com/matzehuels/flowgrid/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options, as long as the cache is safe for
// concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the cache entry lifetime when positive.
	TTL time.Duration
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
	}
}

// Execute computes the layout of doc and exports it in opts.Format.
func (r *Runner) Execute(ctx context.Context, doc graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	result := &Result{}

	layoutStart := time.Now()
	l, hash, layoutHit, err := r.computeLayout(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.GraphHash = hash
	result.Stats.NodeCount = len(l.Nodes)
	result.Stats.EdgeCount = len(l.Edges)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"ranks", l.Stats.Ranks,
		"crossings", l.Stats.Crossings,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	exportStart := time.Now()
	artifact, exportHit, err := r.ExportWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Debug("exported layout",
		"format", opts.Format,
		"bytes", len(artifact),
		"duration", result.Stats.ExportTime)

	return result, nil
}

// Decode parses a graph document.
func (r *Runner) Decode(ctx context.Context, data []byte, format graph.Format, filename string) (graph.Graph, error) {
	hooks := observability.Pipeline()
	hooks.OnDecodeStart(ctx, string(format))
	start := time.Now()

	doc, err := graph.Decode(data, format, filename)
	if err != nil {
		code := flowerrors.ErrCodeInvalidInput
		if errors.Is(err, graph.ErrUnsupportedFormat) {
			code = flowerrors.ErrCodeInvalidFormat
		}
		err = flowerrors.Wrap(code, err, "decode graph")
	}
	hooks.OnDecodeComplete(ctx, string(format), len(doc.Nodes), time.Since(start), err)
	return doc, err
}

// ReadFile reads and decodes a graph document, picking the format from the
// file extension.
func (r *Runner) ReadFile(ctx context.Context, path string) (graph.Graph, error) {
	if err := flowerrors.ValidatePath(path); err != nil {
		return graph.Graph{}, err
	}
	format, err := graph.FormatFromPath(path)
	if err != nil {
		return graph.Graph{}, flowerrors.Wrap(flowerrors.ErrCodeInvalidFormat, err, "read %s", path)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return graph.Graph{}, flowerrors.New(flowerrors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	if err != nil {
		return graph.Graph{}, flowerrors.Wrap(flowerrors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return r.Decode(ctx, data, format, path)
}

// ComputeLayoutWithCacheInfo computes the layout of doc with caching and
// returns whether it came from the cache.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, doc graph.Graph, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)
	l, _, hit, err := r.computeLayout(ctx, doc, opts)
	return l, hit, err
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo
// and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, doc graph.Graph, opts Options) (graph.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, doc, opts)
	return l, err
}

func (r *Runner) computeLayout(ctx context.Context, doc graph.Graph, opts Options) (graph.Layout, string, bool, error) {
	lopts, err := opts.ResolveLayout(doc)
	if err != nil {
		return graph.Layout{}, "", false, err
	}

	g, err := graph.ToDAG(doc)
	if err != nil {
		return graph.Layout{}, "", false, classify(err, "build graph")
	}

	// Hash the normalized graph so equivalent documents share entries.
	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return graph.Layout{}, "", false, classify(err, "serialize graph")
	}
	graphHash := cache.Hash(graphData)
	cacheKey := r.Keyer.LayoutKey(graphHash, LayoutKeyOpts(lopts))

	if !opts.Refresh {
		if l, ok := r.cachedLayout(ctx, cacheKey); ok {
			return l, graphHash, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount(), g.EdgeCount())
	res, err := layout.Compute(g, lopts)
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, 0, 0, err)
		return graph.Layout{}, "", false, classify(err, "layout")
	}
	hooks.OnLayoutComplete(ctx, res.Stats.Ranks, res.Stats.Crossings, res.Stats.Duration, nil)

	l := graph.NewLayout(g, res, lopts)
	l.ID = uuid.NewString()

	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, graphHash, false, nil
}

func (r *Runner) cachedLayout(ctx context.Context, key string) (graph.Layout, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return graph.Layout{}, false
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "key", key, "err", err)
		observability.Cache().OnCacheMiss(ctx, "layout")
		return graph.Layout{}, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return l, true
}

// ExportWithCacheInfo serializes a layout in opts.Format with caching and
// returns whether it came from the cache.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, classify(err, "serialize layout")
	}
	if opts.Format == FormatJSON {
		return layoutData, false, nil
	}

	cacheKey := r.Keyer.ArtifactKey(cache.Hash(layoutData), opts.ArtifactKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, opts.Format)
	start := time.Now()

	src := dot.FromLayout(l, dot.Options{Detailed: opts.Detailed})
	if err := dot.Validate(ctx, src); err != nil {
		hooks.OnExportComplete(ctx, opts.Format, 0, time.Since(start), err)
		return nil, false, flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "export dot")
	}
	data := []byte(src)
	hooks.OnExportComplete(ctx, opts.Format, len(data), time.Since(start), nil)

	if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLArtifact)); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
