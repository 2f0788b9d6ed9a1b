// Package pipeline runs the decode → layout → export pipeline for flowgrid.
//
// The CLI and the API server both go through a [Runner], so they share
// option defaults, caching and error classification.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	doc, err := runner.ReadFile(ctx, "flow.yaml")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, doc, pipeline.Options{Format: pipeline.FormatDOT})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Artifact)
//
// # Option Precedence
//
// Layout options are resolved in this order, later wins:
//
//  1. [layout.DefaultOptions]
//  2. Options.Layout (the CLI fills this from the config file)
//  3. the "options" block of the graph document
//  4. Options.Overrides (CLI flags, API request options)
//
// # Errors
//
// Every error a Runner returns is a *errors.Error from pkg/errors carrying a
// machine-readable code (CYCLE_DETECTED, UNKNOWN_REFERENCE, ...), with the
// library error kept as its cause.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowgrid/pkg/cache"
	flowerrors "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/graph"
	"github.com/matzehuels/flowgrid/pkg/layout"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// DefaultFormat is the default output format.
const DefaultFormat = FormatJSON

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatJSON, FormatDOT}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Format selects the exported artifact: "json" or "dot".
	Format string `json:"format,omitempty"`

	// Layout is the base layout configuration. A zero value means
	// layout.DefaultOptions().
	Layout layout.Options `json:"-"`

	// Overrides are applied after the graph document's own options.
	Overrides map[string]any `json:"options,omitempty"`

	// Detailed adds rank, column and metadata to DOT labels.
	Detailed bool `json:"detailed,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Logger receives progress; nil uses the runner's logger.
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the computed layout.
	Layout graph.Layout

	// GraphHash is the content hash of the normalized graph.
	GraphHash string

	// Artifact is the exported layout in Options.Format.
	Artifact []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LayoutTime time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	ExportHit bool
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults fills a zero spacing configuration with the defaults.
func (o *Options) SetLayoutDefaults() {
	if o.Layout.RankSep == 0 && o.Layout.NodeSep == 0 {
		def := layout.DefaultOptions()
		o.Layout.RankSep = def.RankSep
		o.Layout.NodeSep = def.NodeSep
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetExportDefaults sets the default output format.
func (o *Options) SetExportDefaults() {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
}

// ValidateForExport sets defaults and checks the output format.
func (o *Options) ValidateForExport() error {
	o.SetExportDefaults()
	return flowerrors.ValidateFormat(o.Format, ValidFormats...)
}

// ResolveLayout applies the graph document's options and then the
// overrides to the base layout configuration, and validates the result.
func (o *Options) ResolveLayout(doc graph.Graph) (layout.Options, error) {
	o.SetLayoutDefaults()

	resolved, err := o.Layout.Merge(doc.Options)
	if err != nil {
		return layout.Options{}, flowerrors.Wrap(flowerrors.ErrCodeInvalidOptions, err, "graph options")
	}
	resolved, err = resolved.Merge(o.Overrides)
	if err != nil {
		return layout.Options{}, flowerrors.Wrap(flowerrors.ErrCodeInvalidOptions, err, "options")
	}

	for _, d := range []struct {
		name string
		v    float64
	}{
		{"rank_sep", resolved.RankSep},
		{"node_sep", resolved.NodeSep},
		{"margin_x", resolved.MarginX},
		{"margin_y", resolved.MarginY},
	} {
		if err := flowerrors.ValidateDimension(d.name, d.v); err != nil {
			return layout.Options{}, err
		}
	}

	resolved.Logger = o.Logger
	return resolved, nil
}

// LayoutKeyOpts returns cache key options for resolved layout options.
func LayoutKeyOpts(opts layout.Options) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		RankSep: opts.RankSep,
		NodeSep: opts.NodeSep,
		MarginX: opts.MarginX,
		MarginY: opts.MarginY,
		Strict:  opts.Strict,
	}
}

// ArtifactKeyOpts returns cache key options for artifact export.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   o.Format,
		Detailed: o.Detailed && o.Format == FormatDOT,
	}
}
