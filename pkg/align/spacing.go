package align

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/pedigree/pkg/qp"
)

// SpacingOptions weights the position refinement.
type SpacingOptions struct {
	// Width is the preferred drawing width in slot units. It is raised to
	// fit the widest generation.
	Width float64 `json:"width" toml:"width"`

	// Child controls how strongly children are pulled under their parents.
	// A family with k children contributes one penalty per child scaled by
	// k^(-Child/2), so large sibships are held less tightly.
	Child float64 `json:"child" toml:"child"`

	// Spouse is the penalty weight on the distance between spouses.
	Spouse float64 `json:"spouse" toml:"spouse"`
}

// DefaultSpacing returns width 10 with child weight 1.5 and spouse
// weight 2.
func DefaultSpacing() SpacingOptions {
	return SpacingOptions{Width: 10, Child: 1.5, Spouse: 2}
}

// anchorPenalty keeps the widest row from sliding sideways.
const anchorPenalty = 1e-5

// ridge is added to the diagonal so the objective is strictly convex.
const ridge = 1e-8

// Refine replaces the positions of l with the solution of a quadratic
// program. Every slot is one variable. The objective penalizes the distance
// between spouses and between each child and the midpoint of its parents.
// The constraints keep neighbouring slots at least one unit apart and every
// row inside [0, width-1].
//
// A failure leaves l unchanged.
func Refine(l *Layout, opts SpacingOptions) error {
	levels := l.Levels()
	n := l.Slots()
	if n == 0 {
		return nil
	}
	width := max(opts.Width, float64(slices.Max(l.N))+0.01)

	offset := make([]int, levels)
	for lev := 1; lev < levels; lev++ {
		offset[lev] = offset[lev-1] + l.N[lev-1]
	}
	id := func(lev, slot int) int { return offset[lev] + slot }

	// Penalty rows.
	var rows [][]float64
	newRow := func() []float64 {
		r := make([]float64, n)
		rows = append(rows, r)
		return r
	}

	sw := math.Sqrt(opts.Spouse)
	for lev := range levels {
		for j, s := range l.Spouse[lev] {
			if s == 0 || j+1 >= l.N[lev] {
				continue
			}
			r := newRow()
			r[id(lev, j)] = sw
			r[id(lev, j+1)] = -sw
		}
	}

	for lev := 0; lev+1 < levels; lev++ {
		fams := familiesAt(l.Fam[lev+1])
		for _, fam := range fams {
			var kids []int
			for j, v := range l.Fam[lev+1] {
				if v == fam {
					kids = append(kids, j)
				}
			}
			k := float64(len(kids))
			penalty := math.Sqrt(math.Pow(k, -opts.Child))
			for _, kid := range kids {
				r := newRow()
				r[id(lev+1, kid)] = -penalty
				if left := fam - 1; left < l.N[lev] {
					r[id(lev, left)] += penalty / 2
				}
				if right := fam; right < l.N[lev] {
					r[id(lev, right)] += penalty / 2
				}
			}
		}
	}

	widest := slices.Index(l.N, slices.Max(l.N))
	newRow()[id(widest, 0)] = anchorPenalty

	P := mat.NewDense(len(rows), n, nil)
	for i, r := range rows {
		P.SetRow(i, r)
	}
	var D mat.SymDense
	D.SymOuterK(1, P.T())
	for i := range n {
		D.SetSym(i, i, D.At(i, i)+ridge)
	}

	// Constraint columns: ordering within each row, then the row bounds.
	var cols [][]float64
	var b []float64
	for lev := range levels {
		nn := l.N[lev]
		if nn == 0 {
			continue
		}
		for j := 0; j+1 < nn; j++ {
			c := make([]float64, n)
			c[id(lev, j)], c[id(lev, j+1)] = -1, 1
			cols = append(cols, c)
			b = append(b, space)
		}
		first := make([]float64, n)
		first[id(lev, 0)] = 1
		last := make([]float64, n)
		last[id(lev, nn-1)] = -1
		cols = append(cols, first, last)
		b = append(b, 0, 1-width)
	}
	A := mat.NewDense(n, len(cols), nil)
	for j, c := range cols {
		A.SetCol(j, c)
	}

	res, err := qp.Solve(qp.Problem{D: &D, Dvec: make([]float64, n), A: A, B: b})
	if err != nil {
		return err
	}
	for lev := range levels {
		for j := range l.N[lev] {
			l.Pos[lev][j] = res.Solution[id(lev, j)]
		}
		snapRow(l.Pos[lev], width)
	}
	return nil
}

// snapRow removes the solver's rounding error from a refined row so that
// neighbours are at least one unit apart and the row stays in
// [0, width-1].
func snapRow(pos []float64, width float64) {
	if len(pos) == 0 {
		return
	}
	pos[0] = max(pos[0], 0)
	for j := 1; j < len(pos); j++ {
		pos[j] = max(pos[j], pos[j-1]+space)
	}
	last := len(pos) - 1
	pos[last] = min(pos[last], width-1)
	for j := last - 1; j >= 0; j-- {
		pos[j] = min(pos[j], pos[j+1]-space)
	}
}

// familiesAt lists the distinct non-zero family pointers of a row in order
// of first appearance.
func familiesAt(fam []int) []int {
	var out []int
	for _, f := range fam {
		if f != 0 && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
