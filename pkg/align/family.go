package align

import (
	"cmp"
	"slices"

	perrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/hints"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/pedigree/depth"
)

// Family is the read-only context shared by the recursive layout calls.
type Family struct {
	Father []int
	Mother []int
	Sex    []pedigree.Sex
	Level  []int // generation depth per individual
	Order  []int // hint sort key per individual
	Packed bool

	levels int
}

// NewFamily prepares the layout context for p with the given depths and
// hints. Every individual must have either both parents or none recorded.
func NewFamily(p *pedigree.Pedigree, level []int, h hints.Hints, packed bool) (*Family, error) {
	n := p.Len()
	if len(level) != n {
		return nil, perrors.New(perrors.ErrCodeInvalidInput,
			"depth array has %d entries for %d individuals", len(level), n)
	}
	if len(h.Order) != n {
		return nil, perrors.New(perrors.ErrCodeInvalidHintShape,
			"wrong length for order component: got %d, want %d", len(h.Order), n)
	}
	for i := range n {
		if level[i] < 0 {
			return nil, perrors.New(perrors.ErrCodeInvalidInput,
				"individual %d has negative depth %d", i, level[i]).WithIndex(i)
		}
		if (p.Father[i] == pedigree.NoParent) != (p.Mother[i] == pedigree.NoParent) {
			return nil, perrors.New(perrors.ErrCodeInvalidParentReference,
				"individual %d has only one recorded parent", i).WithIndex(i)
		}
	}
	return &Family{
		Father: p.Father,
		Mother: p.Mother,
		Sex:    p.Sex,
		Level:  level,
		Order:  h.Order,
		Packed: packed,
		levels: depth.Generations(level),
	}, nil
}

// Levels returns the number of generation rows of the drawing.
func (f *Family) Levels() int { return f.levels }

// children returns the common children of a and b in ascending order.
func (f *Family) children(a, b int) []int {
	var out []int
	for i := range f.Father {
		fa, mo := f.Father[i], f.Mother[i]
		if (fa == a && mo == b) || (fa == b && mo == a) {
			out = append(out, i)
		}
	}
	return out
}

// byOrder returns xs sorted by hint order, ties kept in input order.
func (f *Family) byOrder(xs []int) []int {
	out := slices.Clone(xs)
	slices.SortStableFunc(out, func(a, b int) int {
		return cmp.Compare(f.Order[a], f.Order[b])
	})
	return out
}
