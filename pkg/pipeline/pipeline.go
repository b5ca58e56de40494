// Package pipeline provides the core analysis pipeline for gwmap.
//
// This package implements the complete load → build → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read Gateway API resource records from a snapshot directory
//  2. Build: Resolve references and assemble the topology graph
//  3. Render: Generate diagrams in various formats (Mermaid, DOT, SVG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Dir:     "./cluster-snapshot",
//	    Formats: []string{"mermaid"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	diagram := result.Artifacts["mermaid"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gwmap/gwmap/pkg/cache"
	"github.com/gwmap/gwmap/pkg/errors"
	"github.com/gwmap/gwmap/pkg/graph"
	"github.com/gwmap/gwmap/pkg/render"
	"github.com/gwmap/gwmap/pkg/topology"
)

// Format constants for output formats.
const (
	FormatMermaid = "mermaid"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
	FormatJSON    = "json"
)

// Mode constants for diagram mode selection.
const (
	ModeAuto     = "auto"
	ModeDetailed = "detailed"
	ModeOverview = "overview"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatMermaid: true,
	FormatDOT:     true,
	FormatSVG:     true,
	FormatJSON:    true,
}

// ValidModes is the set of supported diagram modes.
var ValidModes = map[string]bool{
	ModeAuto:     true,
	ModeDetailed: true,
	ModeOverview: true,
}

// Options contains all configuration for the analysis pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Dir string `json:"dir"`

	// Build options
	ShowGrants bool `json:"show_grants,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Mode      string   `json:"mode,omitempty"`
	Threshold int      `json:"threshold,omitempty"`
	Focus     string   `json:"focus,omitempty"` // namespace/name of a gateway, empty renders all

	// Refresh bypasses the cache and recomputes everything.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this pipeline execution. It is stamped
	// per run and never cached, so the same topology served from cache
	// still gets a distinct ID.
	RunID string

	// Graph is the built topology graph.
	Graph *graph.Graph

	// TopologyHash is the content hash of the graph.
	TopologyHash string

	// Summary describes resolution findings for this run.
	Summary *topology.Summary

	// Mode is the resolved diagram mode (auto never survives resolution).
	Mode render.Mode

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the topology came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: mermaid, dot, svg, json)", format)
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

// ValidateMode checks that a mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidMode, "invalid mode: %q (must be one of: auto, detailed, overview)", mode)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Dir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "dir is required")
	}
	if err := errors.ValidatePath(o.Dir); err != nil {
		return err
	}
	if o.Focus != "" {
		if err := errors.ValidateFocus(o.Focus); err != nil {
			return err
		}
	}

	o.SetRenderDefaults()

	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if o.Threshold < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "threshold cannot be negative")
	}

	o.validated = true
	return nil
}

// ValidateForSnapshot checks and defaults everything except the load
// options. Used when the snapshot arrives pre-loaded (the API server)
// and no directory is involved.
func (o *Options) ValidateForSnapshot() error {
	if o.validated {
		return nil
	}

	if o.Focus != "" {
		if err := errors.ValidateFocus(o.Focus); err != nil {
			return err
		}
	}

	o.SetRenderDefaults()

	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if o.Threshold < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "threshold cannot be negative")
	}

	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatMermaid}
	}
	if o.Mode == "" {
		o.Mode = ModeAuto
	}
	if o.Threshold == 0 {
		o.Threshold = render.DefaultDetailThreshold
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// TopologyKeyOpts returns cache key options for topology building.
func (o *Options) TopologyKeyOpts() cache.TopologyKeyOpts {
	return cache.TopologyKeyOpts{
		IncludeGrants: o.ShowGrants,
	}
}

// DiagramKeyOpts returns cache key options for diagram rendering.
// The resolved mode is part of the key so auto runs share cache entries
// with explicit runs that resolve to the same mode.
func (o *Options) DiagramKeyOpts(format string, mode render.Mode) cache.DiagramKeyOpts {
	return cache.DiagramKeyOpts{
		Format:    format,
		Mode:      string(mode),
		Focus:     o.Focus,
		Threshold: o.Threshold,
	}
}
