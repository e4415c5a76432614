package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/pedigree/pkg/align"
	"github.com/matzehuels/pedigree/pkg/cache"
	"github.com/matzehuels/pedigree/pkg/hints"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/pedigree/depth"
	"github.com/matzehuels/pedigree/pkg/scale"
)

// GenerateLayout aligns and scales one pedigree without caching.
// opts must have defaults applied.
func GenerateLayout(p *pedigree.Pedigree, h *hints.Hints, opts Options) (*Result, error) {
	start := time.Now()

	l, err := align.Align(p, h, opts.AlignOptions())
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}

	res := &Result{
		Layout: l,
		Stats: Stats{
			Individuals: p.Len(),
			Generations: l.Levels(),
			Slots:       l.Slots(),
		},
	}
	if l.Slots() > 0 {
		params, err := scale.Compute(l, opts.PlotWidth, opts.PlotHeight, opts.ScaleOptions())
		if err != nil {
			return nil, fmt.Errorf("scale: %w", err)
		}
		res.Scaling = params
	}
	res.Stats.Duration = time.Since(start)
	return res, nil
}

// GenerateDepth assigns generation depths without caching.
func GenerateDepth(p *pedigree.Pedigree, alignSpouses bool) ([]int, error) {
	return depth.ForPedigree(p, depth.Options{AlignSpouses: alignSpouses})
}

// PedigreeHash is the content hash of a pedigree together with its hints.
func PedigreeHash(p *pedigree.Pedigree, h *hints.Hints) (string, error) {
	return cache.HashJSON(struct {
		Pedigree *pedigree.Pedigree `json:"pedigree"`
		Hints    *hints.Hints       `json:"hints,omitempty"`
	}{p, h})
}
