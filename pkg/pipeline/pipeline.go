// Package pipeline runs pedigree layouts end to end.
//
// This package ties the engine packages together so the CLI and any other
// entry point behave the same way:
//
//  1. Depth: assign every individual a generation
//  2. Align: place individuals into generation rows and refine positions
//  3. Scale: fit the layout into a plot of the requested size
//
// A [Runner] adds caching, logging and observability hooks around those
// stages and can lay out many independent pedigrees concurrently.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Layout(ctx, pipeline.Request{
//	    Pedigree: p,
//	    Hints:    h, // may be nil
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Layout.Nid, res.Scaling.BoxSize)
//
// Lay out several families at once:
//
//	results, errs := runner.Batch(ctx, requests, 4)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedigree/pkg/align"
	"github.com/matzehuels/pedigree/pkg/cache"
	perrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/hints"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/scale"
)

// Default values shared by the CLI and the library.
const (
	// DefaultWidth is the preferred drawing width in slot units.
	DefaultWidth = 10.0

	// DefaultChildWeight is the exponent that relaxes the pull on large
	// sibships.
	DefaultChildWeight = 1.5

	// DefaultSpouseWeight is the penalty on spouse distance.
	DefaultSpouseWeight = 2.0

	// DefaultPlotWidth is the default plot width in plot units.
	DefaultPlotWidth = 800.0

	// DefaultPlotHeight is the default plot height in plot units.
	DefaultPlotHeight = 600.0

	// DefaultSymbolSize draws the largest symbol that fits.
	DefaultSymbolSize = 1.0

	// DefaultConcurrency is the batch worker count when none is given.
	DefaultConcurrency = 4
)

// Options contains all configuration for a layout run.
// The zero value is the default configuration once [Options.SetDefaults]
// has run, so boolean options are phrased as opt-outs.
type Options struct {
	// Unpacked centres children during the merge instead of refining
	// positions with the quadratic program.
	Unpacked bool `json:"unpacked,omitempty" toml:"unpacked"`

	// SeparateSpouses keeps every spouse at their own depth instead of
	// moving couples onto one row.
	SeparateSpouses bool `json:"separate_spouses,omitempty" toml:"separate_spouses"`

	// Refinement weights
	Width        float64 `json:"width,omitempty" toml:"width"`
	ChildWeight  float64 `json:"child_weight,omitempty" toml:"child_weight"`
	SpouseWeight float64 `json:"spouse_weight,omitempty" toml:"spouse_weight"`

	// Scaling options
	PlotWidth   float64 `json:"plot_width,omitempty" toml:"plot_width"`
	PlotHeight  float64 `json:"plot_height,omitempty" toml:"plot_height"`
	SymbolSize  float64 `json:"symbol_size,omitempty" toml:"symbol_size"`
	LabelHeight float64 `json:"label_height,omitempty" toml:"label_height"`

	// Refresh skips the cache lookup but still stores the new result.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`
}

// SetDefaults fills every unset field. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.ChildWeight == 0 {
		o.ChildWeight = DefaultChildWeight
	}
	if o.SpouseWeight == 0 {
		o.SpouseWeight = DefaultSpouseWeight
	}
	if o.PlotWidth == 0 {
		o.PlotWidth = DefaultPlotWidth
	}
	if o.PlotHeight == 0 {
		o.PlotHeight = DefaultPlotHeight
	}
	if o.SymbolSize == 0 {
		o.SymbolSize = DefaultSymbolSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the option ranges. Call [Options.SetDefaults] first.
func (o *Options) Validate() error {
	switch {
	case !(o.Width > 0):
		return perrors.New(perrors.ErrCodeInvalidInput, "width must be positive, got %g", o.Width)
	case o.ChildWeight < 0:
		return perrors.New(perrors.ErrCodeInvalidInput, "child weight must not be negative, got %g", o.ChildWeight)
	case !(o.SpouseWeight > 0):
		return perrors.New(perrors.ErrCodeInvalidInput, "spouse weight must be positive, got %g", o.SpouseWeight)
	case !(o.PlotWidth > 0) || !(o.PlotHeight > 0):
		return perrors.New(perrors.ErrCodeInvalidCanvasSize,
			"plot size must be positive, got %gx%g", o.PlotWidth, o.PlotHeight)
	case !(o.SymbolSize > 0):
		return perrors.New(perrors.ErrCodeInvalidCanvasSize, "symbol size must be positive, got %g", o.SymbolSize)
	case o.LabelHeight < 0:
		return perrors.New(perrors.ErrCodeInvalidCanvasSize, "label height must not be negative, got %g", o.LabelHeight)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and then validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// IsPacked reports whether subtrees are packed and refined.
func (o *Options) IsPacked() bool { return !o.Unpacked }

// ShouldAlignSpouses reports whether spouses share a generation row.
func (o *Options) ShouldAlignSpouses() bool { return !o.SeparateSpouses }

// AlignOptions returns the alignment configuration.
func (o *Options) AlignOptions() align.Options {
	return align.Options{
		Packed:       o.IsPacked(),
		AlignSpouses: o.ShouldAlignSpouses(),
		Spacing: align.SpacingOptions{
			Width:  o.Width,
			Child:  o.ChildWeight,
			Spouse: o.SpouseWeight,
		},
	}
}

// ScaleOptions returns the scaling configuration.
func (o *Options) ScaleOptions() scale.Options {
	return scale.Options{SymbolSize: o.SymbolSize, LabelHeight: o.LabelHeight}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Packed:       o.IsPacked(),
		AlignSpouses: o.ShouldAlignSpouses(),
		Width:        o.Width,
		ChildWeight:  o.ChildWeight,
		SpouseWeight: o.SpouseWeight,
		PlotWidth:    o.PlotWidth,
		PlotHeight:   o.PlotHeight,
		SymbolSize:   o.SymbolSize,
		LabelHeight:  o.LabelHeight,
	}
}

// Request is one pedigree to lay out.
type Request struct {
	// Name labels the request in logs and batch output.
	Name string

	Pedigree *pedigree.Pedigree
	Hints    *hints.Hints // nil for default hints
	Options  Options
}

// Result contains the outputs of a layout run.
type Result struct {
	// ID identifies this run. It is fresh even when the layout came from
	// the cache.
	ID string `json:"-"`

	// PedigreeHash is the content hash of the pedigree and hints.
	PedigreeHash string `json:"pedigree_hash"`

	Layout  *align.Layout `json:"layout"`
	Scaling scale.Params  `json:"scaling"`
	Stats   Stats         `json:"stats"`

	// CacheInfo records whether the layout came from the cache.
	CacheInfo CacheInfo `json:"-"`
}

// Depth returns the generation depth of every individual.
func (r *Result) Depth() []int { return r.Layout.Depth }

// Stats contains layout statistics.
type Stats struct {
	Individuals int           `json:"individuals"`
	Generations int           `json:"generations"`
	Slots       int           `json:"slots"`
	Duration    time.Duration `json:"duration"` // time to produce this result
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	LayoutHit bool
}
