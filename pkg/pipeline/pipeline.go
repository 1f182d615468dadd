// Package pipeline provides the plan → render pipeline shared by the
// CLI and the HTTP API.
//
// The pipeline consists of two stages:
//
//  1. Plan: run the layout planner over a request batch
//  2. Render: generate output artifacts (SVG, PNG, DOT, JSON)
//
// Each stage result is cached by content hash, so repeating a run with
// the same batch and parameters is a pure cache read.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sceneplan/sceneplan/pkg/cache"
	"github.com/sceneplan/sceneplan/pkg/place"
	"github.com/sceneplan/sceneplan/pkg/plan"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultCanvasWidth is the default frame width in scene units.
	DefaultCanvasWidth = 14.2

	// DefaultCanvasHeight is the default frame height in scene units.
	DefaultCanvasHeight = 8.0

	// DefaultMargin is the default clearance between placed objects.
	DefaultMargin = 0.1
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// Cache TTLs per stage.
const (
	TTLPlan     = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Plan options
	CanvasWidth  float64    `json:"canvas_width,omitempty"`
	CanvasHeight float64    `json:"canvas_height,omitempty"`
	Margin       float64    `json:"margin,omitempty"`
	Strategy     place.Name `json:"strategy,omitempty"`
	GridRows     int        `json:"grid_rows,omitempty"`
	GridCols     int        `json:"grid_cols,omitempty"`
	Refresh      bool       `json:"refresh,omitempty"`

	// Render options
	Formats      []string `json:"formats,omitempty"`
	SnapshotTime float64  `json:"snapshot_time,omitempty"`
	Snapshot     bool     `json:"snapshot,omitempty"` // restrict artifacts to SnapshotTime
	ShowGrid     bool     `json:"show_grid,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Plan is the computed layout plan.
	Plan *plan.Plan

	// PlanHash is the content hash of the plan payload.
	PlanHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RequestCount int
	PlacedCount  int
	FailedCount  int
	PlanTime     time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PlanHit   bool // Whether the plan came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForPlan(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForPlan checks and defaults the planning options.
func (o *Options) ValidateForPlan() error {
	if o.CanvasWidth == 0 {
		o.CanvasWidth = DefaultCanvasWidth
	}
	if o.CanvasHeight == 0 {
		o.CanvasHeight = DefaultCanvasHeight
	}
	if o.CanvasWidth < 0 || o.CanvasHeight < 0 {
		return fmt.Errorf("canvas dimensions must be positive")
	}
	if o.Margin < 0 {
		return fmt.Errorf("margin must not be negative")
	}
	if o.Strategy == "" {
		o.Strategy = place.NameRegionPreferential
	}
	if _, err := place.ForName(o.Strategy); err != nil {
		return err
	}
	if o.GridRows < 0 || o.GridCols < 0 {
		return fmt.Errorf("grid dimensions must not be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRender checks and defaults the render options.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// PlanKeyOpts returns cache key options for the plan stage.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	return cache.PlanKeyOpts{
		CanvasWidth:  o.CanvasWidth,
		CanvasHeight: o.CanvasHeight,
		Margin:       o.Margin,
		Strategy:     string(o.Strategy),
		GridRows:     o.GridRows,
		GridCols:     o.GridCols,
	}
}

// ArtifactKeyOpts returns cache key options for one artifact format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:   format,
		ShowGrid: o.ShowGrid,
	}
	if o.Snapshot {
		opts.SnapshotTime = o.SnapshotTime
	}
	return opts
}
