package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/holgraph/holgraph/pkg/cache"
	"github.com/holgraph/holgraph/pkg/depgraph"
	"github.com/holgraph/holgraph/pkg/depgraph/transform"
	"github.com/holgraph/holgraph/pkg/render"
	"github.com/holgraph/holgraph/pkg/render/dot"
	"github.com/holgraph/holgraph/pkg/scan"
)

// Runner executes the pipeline with render caching.
//
// The Runner is stateless except for the cache and logger - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. If c is nil, a NullCache is used (caching
// disabled). If logger is nil, log.Default() is used.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Generate runs the scan → resolve → build → serialize pipeline.
//
// The DOT document is always regenerated; it is cheap and its content hash is
// what keys the render cache.
func (r *Runner) Generate(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	// Stage 1: Scan
	scanStart := time.Now()
	files, err := scan.Discover(opts.Root, opts.Suffixes, opts.filterRe)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", opts.Root, err)
	}
	pairs := make([]depgraph.Pair, 0, len(files))
	filter := opts.depFilter()
	for _, file := range files {
		deps, err := scan.ReadDependencies(file, opts.Extensions, filter)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		pairs = append(pairs, depgraph.Pair{
			Path: scan.StripExtensions(file, opts.Extensions),
			Deps: deps,
		})
	}

	result := &Result{Files: len(files)}
	result.Stats.ScanTime = time.Since(scanStart)
	logger.Info("scanned artifacts",
		"files", len(files),
		"duration", result.Stats.ScanTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Resolve names
	paths := depgraph.CollectPaths(pairs)
	labels, collisions := opts.Naming.Resolve(paths)
	if len(collisions) > 0 {
		logger.Warn("non-unique file names", "names", collisions)
	}
	result.Labels = labels
	result.Collisions = collisions

	// Stage 3: Build (and optionally reduce)
	buildStart := time.Now()
	g, err := depgraph.Build(pairs, labels)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	if opts.DebugPrintFiles {
		dumpFiles(logger, g)
	}
	if opts.Reduce {
		before := g.EdgeCount()
		transform.RemoveTransitive(g)
		logger.Info("removed transitive dependencies",
			"edges_before", before,
			"edges_after", g.EdgeCount())
	}
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	logger.Info("built dependency graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.BuildTime)

	// Stage 4: Serialize
	result.DOT = dot.Marshal(g, dot.Options{Seed: *opts.Seed})

	return result, nil
}

// Render rasterizes a DOT document into the requested formats, using the
// cache where possible. The returned bool reports whether every artifact
// came from the cache. The "dot" format passes the document through as-is
// and is never cached.
func (r *Runner) Render(ctx context.Context, dotSrc string, formats []string) (map[string][]byte, bool, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, false, err
	}

	docHash := cache.Hash([]byte(dotSrc))
	artifacts := make(map[string][]byte, len(formats))
	allCached := true

	for _, format := range formats {
		if format == FormatDOT {
			artifacts[format] = []byte(dotSrc)
			continue
		}

		key := cache.Key("artifact", docHash, format)
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
			continue
		}
		allCached = false

		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			data, err = render.SVG(ctx, dotSrc)
		case FormatPNG:
			data, err = render.PNG(ctx, dotSrc)
		}
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}

	return artifacts, allCached, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// dumpFiles writes every artifact path and its merged dependency list to the
// logger. Print bypasses level filtering, so the dump shows whenever the flag
// asked for it.
func dumpFiles(logger *log.Logger, g *depgraph.Graph) {
	for _, n := range g.Nodes() {
		logger.Print(g.Path(n.ID))
		for _, dep := range n.Dependencies() {
			logger.Printf("  - %s", g.Path(dep))
		}
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
