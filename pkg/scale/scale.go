package scale

import (
	"math"

	"github.com/matzehuels/pedigree/pkg/align"
	perrors "github.com/matzehuels/pedigree/pkg/errors"
)

// Options tunes the symbol size.
type Options struct {
	// SymbolSize multiplies the largest symbol that fits. Values below 1
	// draw smaller symbols.
	SymbolSize float64 `json:"symbol_size" toml:"symbol_size"`

	// LabelHeight is the vertical room reserved under each symbol for
	// labels, in plot units.
	LabelHeight float64 `json:"label_height" toml:"label_height"`
}

// DefaultOptions returns symbol size 1 with no label room.
func DefaultOptions() Options {
	return Options{SymbolSize: 1}
}

// Params are the drawing dimensions of one layout.
type Params struct {
	BoxWidth    float64 `json:"box_width"`  // symbol width in slot units
	BoxHeight   float64 `json:"box_height"` // symbol height in generation units
	LegHeight   float64 `json:"leg_height"` // drop from sibship line to symbol
	HScale      float64 `json:"hscale"`     // plot units per slot unit
	VScale      float64 `json:"vscale"`     // plot units per generation
	BoxSize     float64 `json:"box_size"`   // symbol side in plot units
	LabelHeight float64 `json:"label_height"`
}

// Compute fits l into a plot of width w and height h.
//
// The symbol side is the smallest of four limits: the room left in a
// generation row after labels, the room when half a symbol separates
// consecutive rows, 5% of the plot width, and the width share of one slot.
func Compute(l *align.Layout, w, h float64, opts Options) (Params, error) {
	if l == nil || l.Slots() == 0 {
		return Params{}, perrors.New(perrors.ErrCodeInvalidInput, "layout has no placed individuals")
	}
	if !(w > 0) || !(h > 0) {
		return Params{}, perrors.New(perrors.ErrCodeInvalidCanvasSize,
			"plot size %gx%g must be positive", w, h)
	}
	if !(opts.SymbolSize > 0) {
		return Params{}, perrors.New(perrors.ErrCodeInvalidCanvasSize,
			"symbol size %g must be positive", opts.SymbolSize)
	}
	if opts.LabelHeight < 0 {
		return Params{}, perrors.New(perrors.ErrCodeInvalidCanvasSize,
			"label height %g must not be negative", opts.LabelHeight)
	}

	xrange := span(l)
	maxlev := float64(l.Levels())

	ht1 := h/maxlev - opts.LabelHeight
	if ht1 <= 0 {
		return Params{}, perrors.New(perrors.ErrCodeInvalidCanvasSize,
			"labels of height %g leave no room in %g rows of a %g high plot",
			opts.LabelHeight, maxlev, h)
	}
	ht2 := h / (maxlev + (maxlev-1)/2)
	wd1 := 0.05 * w
	wd2 := 0.8 * w / (0.8 + xrange)
	boxsize := opts.SymbolSize * min(ht1, ht2, wd1, wd2)

	hscale := (w - boxsize) / max(xrange, 1)
	vscale := (h - (opts.LabelHeight + boxsize)) / max(1, maxlev-1)
	if !(hscale > 0) || !(vscale > 0) {
		return Params{}, perrors.New(perrors.ErrCodeInvalidCanvasSize,
			"plot size %gx%g is too small for %g generations", w, h, maxlev)
	}

	boxh := boxsize / vscale
	return Params{
		BoxWidth:    boxsize / hscale,
		BoxHeight:   boxh,
		LegHeight:   min(0.25, 1.5*boxh),
		HScale:      hscale,
		VScale:      vscale,
		BoxSize:     boxsize,
		LabelHeight: opts.LabelHeight,
	}, nil
}

// span returns the horizontal extent of the placed slots.
func span(l *align.Layout) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for lev, n := range l.N {
		for _, x := range l.Pos[lev][:n] {
			lo = min(lo, x)
			hi = max(hi, x)
		}
	}
	return hi - lo
}
