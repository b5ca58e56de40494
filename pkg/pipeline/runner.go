package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gwmap/gwmap/pkg/cache"
	"github.com/gwmap/gwmap/pkg/graph"
	gwio "github.com/gwmap/gwmap/pkg/io"
	"github.com/gwmap/gwmap/pkg/render"
	"github.com/gwmap/gwmap/pkg/resource"
	"github.com/gwmap/gwmap/pkg/topology"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	// Stage 1: Load
	loadStart := time.Now()
	snap, err := resource.LoadDir(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	r.Logger.Info("loaded resources",
		"gateways", len(snap.Gateways),
		"routes", len(snap.Routes),
		"backends", len(snap.Backends),
		"skipped", snap.SkippedTotal(),
		"duration", loadTime)

	result, err := r.executeStages(ctx, snap, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// ExecuteSnapshot runs the build → render stages on an already loaded
// snapshot. The API server uses this for requests that carry records
// inline instead of referencing a directory.
func (r *Runner) ExecuteSnapshot(ctx context.Context, snap *resource.Snapshot, opts Options) (*Result, error) {
	if err := opts.ValidateForSnapshot(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	return r.executeStages(ctx, snap, opts)
}

// executeStages runs the build and render stages shared by Execute and
// ExecuteSnapshot. Options must already be validated.
func (r *Runner) executeStages(ctx context.Context, snap *resource.Snapshot, opts Options) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Hash the snapshot for cache keys; the hash covers every resource,
	// so any change to the input invalidates downstream entries.
	snapData, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("hash snapshot: %w", err)
	}
	snapshotHash := cache.Hash(snapData)

	// Stage 2: Build
	buildStart := time.Now()
	g, summary, buildHit, err := r.BuildWithCacheInfo(ctx, snap, snapshotHash, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = g
	result.Summary = summary
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.BuildHit = buildHit

	if graphData, err := gwio.Marshal(g); err == nil {
		result.TopologyHash = cache.Hash(graphData)
	}

	r.Logger.Info("built topology",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"findings", summary.Findings(),
		"duration", result.Stats.BuildTime)

	// Resolve the diagram mode
	result.Mode = r.ResolveMode(g, opts)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, result.TopologyHash, result.Mode, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered diagrams",
		"formats", opts.Formats,
		"mode", result.Mode,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// topologyEntry is the cached value for a built topology.
type topologyEntry struct {
	Graph   json.RawMessage   `json:"graph"`
	Summary *topology.Summary `json:"summary"`
}

// BuildWithCacheInfo builds the topology with caching and returns cache hit info.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, snap *resource.Snapshot, snapshotHash string, opts Options) (*graph.Graph, *topology.Summary, bool, error) {
	cacheKey := r.Keyer.TopologyKey(snapshotHash, opts.TopologyKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var entry topologyEntry
			if err := json.Unmarshal(data, &entry); err == nil && entry.Summary != nil {
				if g, err := gwio.ReadJSON(bytes.NewReader(entry.Graph)); err == nil {
					return g, entry.Summary, true, nil // Cache hit
				}
			}
			// Corrupt entries fall through to rebuild
		}
	}

	// Build
	g, summary, err := topology.Build(snap, topology.Options{IncludeGrants: opts.ShowGrants})
	if err != nil {
		return nil, nil, false, err
	}

	// Cache the result
	if graphData, err := gwio.Marshal(g); err == nil {
		entry := topologyEntry{Graph: graphData, Summary: summary}
		if data, err := json.Marshal(entry); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLTopology)
		}
	}

	return g, summary, false, nil // Cache miss
}

// Build is a convenience wrapper that builds without consulting the cache.
func (r *Runner) Build(snap *resource.Snapshot, opts Options) (*graph.Graph, *topology.Summary, error) {
	return topology.Build(snap, topology.Options{IncludeGrants: opts.ShowGrants})
}

// ResolveMode resolves the diagram mode for a built topology.
// Explicit modes pass through; auto selects by gateway count.
func (r *Runner) ResolveMode(g *graph.Graph, opts Options) render.Mode {
	switch opts.Mode {
	case ModeDetailed:
		return render.ModeDetailed
	case ModeOverview:
		return render.ModeOverview
	default:
		return render.SelectMode(len(g.NodesByType(graph.TypeGateway)), opts.Threshold)
	}
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, topologyHash string, mode render.Mode, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()

	// Try to get all formats from cache
	allCached := !opts.Refresh
	artifacts := make(map[string][]byte)

	if allCached {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.DiagramKey(topologyHash, opts.DiagramKeyOpts(format, mode))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	// Render all formats
	rendered, err := renderArtifacts(ctx, g, mode, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.DiagramKey(topologyHash, opts.DiagramKeyOpts(format, mode))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLDiagram)
	}

	return rendered, false, nil // Cache miss
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
