package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sceneplan/sceneplan/pkg/cache"
	"github.com/sceneplan/sceneplan/pkg/geometry"
	"github.com/sceneplan/sceneplan/pkg/plan"
	"github.com/sceneplan/sceneplan/pkg/render"
	"github.com/sceneplan/sceneplan/pkg/track"
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
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete plan → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, requests []plan.Request, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{Artifacts: make(map[string][]byte)}
	result.Stats.RequestCount = len(requests)

	planStart := time.Now()
	p, planHit, err := r.PlanWithCacheInfo(ctx, requests, opts)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	result.Plan = p
	result.Stats.PlanTime = time.Since(planStart)
	result.Stats.PlacedCount = len(p.Placed())
	result.Stats.FailedCount = len(p.Failed())
	result.CacheInfo.PlanHit = planHit

	if planData, err := plan.MarshalPlan(p); err == nil {
		result.PlanHash = cache.Hash(planData)
	}

	r.Logger.Info("planned layout",
		"requests", len(requests),
		"placed", result.Stats.PlacedCount,
		"failed", result.Stats.FailedCount,
		"duration", result.Stats.PlanTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// PlanWithCacheInfo runs the planner with caching and returns cache hit info.
func (r *Runner) PlanWithCacheInfo(ctx context.Context, requests []plan.Request, opts Options) (*plan.Plan, bool, error) {
	if err := opts.ValidateForPlan(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	reqData, err := plan.MarshalRequests(requests)
	if err != nil {
		return nil, false, fmt.Errorf("serialize requests for cache key: %w", err)
	}
	cacheKey := r.Keyer.PlanKey(cache.Hash(reqData), opts.PlanKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := plan.UnmarshalPlan(data); err == nil {
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}

	canvas, err := geometry.NewCanvas(opts.CanvasWidth, opts.CanvasHeight)
	if err != nil {
		return nil, false, err
	}
	planner := plan.New(canvas,
		plan.WithMargin(opts.Margin),
		plan.WithDefaultStrategy(opts.Strategy),
		plan.WithGridSize(opts.GridRows, opts.GridCols),
		plan.WithLogger(opts.Logger))
	p, err := planner.Plan(requests)
	if err != nil {
		return nil, false, err
	}

	if data, err := plan.MarshalPlan(p); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, TTLPlan)
	}

	return p, false, nil // Cache miss
}

// Plan is a convenience wrapper that discards the cache hit info.
func (r *Runner) Plan(ctx context.Context, requests []plan.Request, opts Options) (*plan.Plan, error) {
	p, _, err := r.PlanWithCacheInfo(ctx, requests, opts)
	return p, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p *plan.Plan, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	planData, err := plan.MarshalPlan(p)
	if err != nil {
		return nil, false, fmt.Errorf("serialize plan for cache key: %w", err)
	}
	planHash := cache.Hash(planData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(planHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	rendered, err := r.renderFormats(ctx, p, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(planHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, p *plan.Plan, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, p, opts)
	return artifacts, err
}

// renderFormats draws every requested format from the plan.
func (r *Runner) renderFormats(ctx context.Context, p *plan.Plan, opts Options) (map[string][]byte, error) {
	tr, err := TrackerFromPlan(p)
	if err != nil {
		return nil, fmt.Errorf("rebuild tracker: %w", err)
	}

	var svgOpts []render.SVGOption
	if opts.Snapshot {
		svgOpts = append(svgOpts, render.WithTime(opts.SnapshotTime))
	}
	if opts.ShowGrid {
		svgOpts = append(svgOpts, render.WithGrid())
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.RenderSVG(tr, svgOpts...)
		case FormatPNG:
			data, err = render.RenderPNG(tr, svgOpts...)
		case FormatDOT:
			data = []byte(render.ConflictDOT(p))
		case FormatJSON:
			data, err = plan.MarshalPlan(p)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// TrackerFromPlan reconstructs a spatio-temporal index from a plan's
// placed entries so cached or stored plans can be rendered and queried
// without replanning.
func TrackerFromPlan(p *plan.Plan) (*track.Tracker, error) {
	canvas, err := geometry.NewCanvas(p.CanvasWidth, p.CanvasHeight)
	if err != nil {
		return nil, err
	}
	tr := track.NewTracker(canvas)
	for _, e := range p.Placed() {
		box, err := geometry.FromCenter(e.X, e.Y, e.Width, e.Height)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if err := tr.Register(e.ID, e.Kind, box, e.Window, p.Margin); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
	}
	return tr, nil
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
