package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/etiket/pkg/cache"
	"github.com/matzehuels/etiket/pkg/codeimage"
	"github.com/matzehuels/etiket/pkg/label"
	"github.com/matzehuels/etiket/pkg/label/defect"
	"github.com/matzehuels/etiket/pkg/observability"
)

// artifactKeyType labels rendered sheets in cache hooks.
const artifactKeyType = "artifact"

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
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

// Execute runs the complete assemble → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		BatchID:   uuid.New(),
		Artifacts: make(map[string][]byte),
	}
	logger := r.Logger.With("batch", result.BatchID.String()[:8])

	hooks := observability.Pipeline()

	// Stage 1: Assemble
	assembleStart := time.Now()
	hooks.OnAssembleStart(ctx, len(opts.SelectedRows()))
	batch, err := r.Assemble(ctx, opts)
	if err != nil {
		hooks.OnAssembleComplete(ctx, 0, 0, time.Since(assembleStart), err)
		return nil, fmt.Errorf("assemble: %w", err)
	}
	hooks.OnAssembleComplete(ctx, batch.Len(), len(batch.Defects), time.Since(assembleStart), nil)
	result.Batch = batch
	result.Stats.AssembleTime = time.Since(assembleStart)
	result.Stats.Labels = batch.Len()
	result.Stats.Defects = len(batch.Defects)

	logger.Info("assembled labels",
		"labels", batch.Len(),
		"defects", len(batch.Defects),
		"duration", result.Stats.AssembleTime)

	// Stage 2: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, hash, renderHit, err := r.RenderWithCacheInfo(ctx, batch, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.ContentHash = hash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Assemble builds the labels for the selected rows.
func (r *Runner) Assemble(ctx context.Context, opts Options) (*label.Batch, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	resolver, err := codeimage.New(codeimage.Options{
		Kind:    opts.Resolver,
		URLBase: opts.URLBase,
		Cache:   r.Cache,
		Keyer:   r.Keyer,
		Logger:  r.Logger,
	})
	if err != nil {
		return nil, err
	}

	asm := label.NewAssembler(
		label.WithResolver(resolver),
		label.WithConcurrency(opts.Concurrency),
	)
	return asm.Assemble(ctx, opts.SelectedRows(), *opts.Template)
}

// RenderWithCacheInfo generates artifacts with caching and returns the
// content hash used for the cache keys and whether every artifact was cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, b *label.Batch, opts Options) (map[string][]byte, string, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}

	hash, err := cache.HashJSON(struct {
		Template any `json:"template"`
		Rows     any `json:"rows"`
	}{opts.Template, opts.SelectedRows()})
	if err != nil {
		return nil, "", false, fmt.Errorf("hash inputs for cache key: %w", err)
	}

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte)
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(uniq(opts.Formats)) {
			observability.Cache().OnCacheHit(ctx, artifactKeyType)
			return artifacts, hash, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, artifactKeyType)
	}

	rendered, err := Render(ctx, b, opts)
	if err != nil {
		return nil, hash, false, err
	}

	// Resolver failures may be transient; keep them out of the cache.
	if defect.Count(b.Defects)[defect.KindResolution] > 0 {
		return rendered, hash, false, nil
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("artifact cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, artifactKeyType, len(data))
	}

	return rendered, hash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func uniq(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
