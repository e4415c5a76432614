package align

import (
	"slices"

	"github.com/matzehuels/pedigree/pkg/hints"
)

// space is the unit gap between adjacent subtrees.
const space = 1.0

// Side records which partner of a marriage is drawn on the left.
type Side int

const (
	// SideUndecided leaves the choice to the layout.
	SideUndecided Side = iota
	// SideHusbandLeft draws the husband on the left.
	SideHusbandLeft
	// SideWifeLeft draws the wife on the left.
	SideWifeLeft
)

// Marriage is one pending entry of the marriage accumulator.
type Marriage struct {
	Husband int
	Wife    int
	Side    Side
	Anchor  hints.Anchor
}

// SpouseList is the ordered accumulator of marriages not yet drawn.
type SpouseList []Marriage

// Without returns a copy of sl with the entries at the given positions
// removed.
func (sl SpouseList) Without(rows []int) SpouseList {
	out := make(SpouseList, 0, len(sl))
	for k, m := range sl {
		if !slices.Contains(rows, k) {
			out = append(out, m)
		}
	}
	return out
}

// Arrays is the per-generation slot layout of a partial drawing. Row lev of
// every slice describes the slots at generation lev; all rows at one level
// have length N[lev].
type Arrays struct {
	N      []int       // slots per level
	Nid    [][]int     // individual handle per slot
	Pos    [][]float64 // horizontal position per slot
	Fam    [][]int     // 1-based left-parent slot in the level above, 0 for none
	Spouse [][]bool    // slot is married to its right neighbour

	// SpouseList holds the marriages still waiting to be drawn after this
	// block was laid out.
	SpouseList SpouseList
}

// NewArrays returns empty arrays with the given number of levels.
func NewArrays(levels int) Arrays {
	return Arrays{
		N:      make([]int, levels),
		Nid:    make([][]int, levels),
		Pos:    make([][]float64, levels),
		Fam:    make([][]int, levels),
		Spouse: make([][]bool, levels),
	}
}

// Levels returns the number of generation rows.
func (a Arrays) Levels() int { return len(a.N) }

// Has reports whether individual id occupies a slot at level lev.
func (a Arrays) Has(lev, id int) bool {
	return lev >= 0 && lev < len(a.Nid) && slices.Contains(a.Nid[lev], id)
}

// Clone returns a deep copy of a.
func (a Arrays) Clone() Arrays {
	out := NewArrays(a.Levels())
	copy(out.N, a.N)
	for lev := range a.Levels() {
		out.Nid[lev] = slices.Clone(a.Nid[lev])
		out.Pos[lev] = slices.Clone(a.Pos[lev])
		out.Fam[lev] = slices.Clone(a.Fam[lev])
		out.Spouse[lev] = slices.Clone(a.Spouse[lev])
	}
	out.SpouseList = slices.Clone(a.SpouseList)
	return out
}

// setRow replaces level lev with the given slots.
func (a *Arrays) setRow(lev int, nid []int, pos []float64, fam []int, spouse []bool) {
	a.N[lev] = len(nid)
	a.Nid[lev] = nid
	a.Pos[lev] = pos
	a.Fam[lev] = fam
	a.Spouse[lev] = spouse
}

// Merge places x2 to the right of x1 and returns the combined arrays. Neither
// input is modified.
//
// At each level, when the last slot of x1 holds the same individual as the
// first slot of x2 the two slots collapse into one: the larger family
// pointer wins and a marriage flag on either side is kept. In unpacked mode
// the collapsed slot is averaged between the two positions when both have
// parents.
//
// In packed mode x2 is shifted level by level to start one unit right of
// x1's last slot. In unpacked mode a single slide is applied to every level,
// the smallest that keeps x2 clear of x1 everywhere.
//
// Non-zero family pointers of x2 at level lev+1 are shifted by the number of
// slots x1 contributes at level lev, so they keep addressing the same
// parents. The marriages drawn by the result are those drawn by either
// input, so the marriages still pending are those pending in both.
func Merge(x1, x2 Arrays, packed bool) Arrays {
	levels := max(x1.Levels(), x2.Levels())
	out := NewArrays(levels)

	fam2 := make([][]int, levels)
	for lev := range x2.Levels() {
		fam2[lev] = slices.Clone(x2.Fam[lev])
	}

	slide := 0.0
	if !packed {
		for lev := range levels {
			n1, n2 := rowLen(x1, lev), rowLen(x2, lev)
			if n1 == 0 || n2 == 0 {
				continue
			}
			temp := x1.Pos[lev][n1-1] - x2.Pos[lev][0]
			if x1.Nid[lev][n1-1] != x2.Nid[lev][0] {
				temp += space
			}
			slide = max(slide, temp)
		}
	}

	for lev := range levels {
		n1, n2 := rowLen(x1, lev), rowLen(x2, lev)
		var (
			nid    []int
			pos    []float64
			fam    []int
			spouse []bool
		)
		if n1 > 0 {
			nid = slices.Clone(x1.Nid[lev])
			pos = slices.Clone(x1.Pos[lev])
			fam = slices.Clone(x1.Fam[lev])
			spouse = slices.Clone(x1.Spouse[lev])
		}
		if n2 == 0 {
			out.setRow(lev, nid, pos, fam, spouse)
			continue
		}

		overlap := 0
		if n1 > 0 && nid[n1-1] == x2.Nid[lev][0] {
			overlap = 1
			f1 := fam[n1-1]
			fam[n1-1] = max(f1, fam2[lev][0])
			spouse[n1-1] = spouse[n1-1] || x2.Spouse[lev][0]
			if !packed && fam2[lev][0] > 0 {
				if f1 > 0 {
					pos[n1-1] = (x2.Pos[lev][0] + pos[n1-1] + slide) / 2
				} else {
					pos[n1-1] = x2.Pos[lev][0] + slide
				}
			}
		}

		if packed {
			slide = 0
			if n1 > 0 {
				slide = pos[n1-1] + space - float64(overlap)
			}
		}

		for j := overlap; j < n2; j++ {
			nid = append(nid, x2.Nid[lev][j])
			pos = append(pos, x2.Pos[lev][j]+slide)
			fam = append(fam, fam2[lev][j])
			spouse = append(spouse, x2.Spouse[lev][j])
		}
		out.setRow(lev, nid, pos, fam, spouse)

		if lev+1 < levels {
			for j, f := range fam2[lev+1] {
				if f != 0 {
					fam2[lev+1][j] = f + n1 - overlap
				}
			}
		}
	}

	out.SpouseList = pending(x1.SpouseList, x2.SpouseList)
	return out
}

func rowLen(a Arrays, lev int) int {
	if lev >= a.Levels() {
		return 0
	}
	return a.N[lev]
}

// pending returns the marriages of a that are also in b, in a's order.
func pending(a, b SpouseList) SpouseList {
	out := make(SpouseList, 0, min(len(a), len(b)))
	for _, m := range a {
		if slices.Contains(b, m) {
			out = append(out, m)
		}
	}
	return out
}
