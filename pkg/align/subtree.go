package align

import (
	"slices"

	perrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/pedigree"
)

// Subtree lays out individual x, every pending spouse of x found in sl, and
// the descendants of those marriages. The marriages it draws are removed
// from the accumulator; the remainder is returned in the result's
// SpouseList.
func Subtree(x int, f *Family, sl SpouseList) (Arrays, error) {
	return f.subtree(x, sl, 0)
}

// Siblings lays out the subtrees of xs side by side in hint order.
//
// A sibling whose own block has a single slot at the siblings' level and
// who is already present at that level of the accumulated result is not
// merged again. This happens when inbreeding has placed the sibling through
// a marriage and the sibling has nothing further to contribute.
func Siblings(xs []int, f *Family, sl SpouseList) (Arrays, error) {
	return f.siblings(xs, sl, 0)
}

func (f *Family) subtree(x int, sl SpouseList, nest int) (Arrays, error) {
	if nest > f.levels {
		return Arrays{}, perrors.New(perrors.ErrCodeAlignmentTooDeep,
			"subtree nesting exceeds %d generations at individual %d", f.levels, x).WithIndex(x)
	}
	if x < 0 || x >= len(f.Level) {
		return Arrays{}, perrors.New(perrors.ErrCodeInvalidParentReference,
			"individual %d out of range [0,%d)", x, len(f.Level))
	}
	lev := f.Level[x]
	if lev >= f.levels {
		return Arrays{}, perrors.New(perrors.ErrCodeAlignmentTooDeep,
			"individual %d at depth %d is below the last generation", x, lev).WithIndex(x)
	}

	spouses, rows := f.spousesOf(x, sl)
	sl = sl.Without(rows)
	nspouse := len(spouses.left) + len(spouses.right)

	// Own row: left spouses, x, right spouses.
	nid := make([]int, 0, nspouse+1)
	nid = append(nid, spouses.left...)
	nid = append(nid, x)
	nid = append(nid, spouses.right...)
	pos := make([]float64, nspouse+1)
	for j := range pos {
		pos[j] = float64(j)
	}
	married := make([]bool, nspouse+1)
	for j := range nspouse {
		married[j] = true
	}

	var (
		rval   Arrays
		nokids = true
	)
	for i, sp := range slices.Concat(spouses.left, spouses.right) {
		kids := f.children(x, sp)
		if len(kids) == 0 {
			continue
		}
		if lev+1 >= f.levels {
			return Arrays{}, perrors.New(perrors.ErrCodeAlignmentTooDeep,
				"children of %d and %d fall below the last generation", x, sp).WithIndex(x, sp)
		}

		block, err := f.siblings(kids, sl, nest+1)
		if err != nil {
			return Arrays{}, err
		}
		sl = block.SpouseList

		// Point the children at this couple. A child can show up twice when
		// two siblings marry, so match every slot holding one of the kids.
		var kidSum float64
		var kidCount int
		for j, id := range block.Nid[lev+1] {
			if slices.Contains(kids, id) {
				block.Fam[lev+1][j] = i + 1
				kidSum += block.Pos[lev+1][j]
				kidCount++
			}
		}

		if !f.Packed && kidCount > 0 {
			kidMean := kidSum / float64(kidCount)
			parMean := (pos[i] + pos[i+1]) / 2
			if kidMean > parMean {
				for j := i; j <= nspouse; j++ {
					pos[j] += kidMean - parMean
				}
			} else {
				shift := parMean - kidMean
				for j := lev + 1; j < block.Levels(); j++ {
					for k := range block.Pos[j] {
						block.Pos[j][k] += shift
					}
				}
			}
		}

		if nokids {
			rval, nokids = block, false
		} else {
			rval = Merge(rval, block, f.Packed)
		}
	}

	if nokids {
		rval = NewArrays(f.levels)
	}
	rval.setRow(lev, nid, pos, make([]int, nspouse+1), married)
	rval.SpouseList = sl
	return rval, nil
}

func (f *Family) siblings(xs []int, sl SpouseList, nest int) (Arrays, error) {
	if len(xs) == 0 {
		out := NewArrays(f.levels)
		out.SpouseList = sl
		return out, nil
	}
	xs = f.byOrder(xs)

	rval, err := f.subtree(xs[0], sl, nest)
	if err != nil {
		return Arrays{}, err
	}
	sl = rval.SpouseList

	mylev := f.Level[xs[0]]
	for _, x := range xs[1:] {
		next, err := f.subtree(x, sl, nest)
		if err != nil {
			return Arrays{}, err
		}
		sl = next.SpouseList
		if next.N[mylev] > 1 || !rval.Has(mylev, x) {
			rval = Merge(rval, next, f.Packed)
		}
	}
	rval.SpouseList = sl
	return rval, nil
}

type spouseSplit struct {
	left, right []int
}

// spousesOf picks the pending marriages of x that x's subtree may draw and
// splits the partners into those drawn left and right of x. It also
// returns the accumulator rows consumed.
//
// A man draws marriages anchored to him or unanchored; a woman draws
// marriages anchored to her or unanchored. Partners from a deeper
// generation are left for their own subtree. Partners without a hinted
// side are split evenly, with an odd one out going right of a man and left
// of a woman.
func (f *Family) spousesOf(x int, sl SpouseList) (spouseSplit, []int) {
	sex := f.Sex[x]
	lev := f.Level[x]

	var rows []int
	var partner []int
	var side []Side
	for k, m := range sl {
		var p int
		switch {
		case sex == pedigree.Male && m.Husband == x &&
			(int(m.Anchor) == int(m.Side) || m.Anchor == 0):
			p = m.Wife
		case sex == pedigree.Female && m.Wife == x &&
			(int(m.Anchor) != int(m.Side) || m.Anchor == 0):
			p = m.Husband
		default:
			continue
		}
		if f.Level[p] > lev {
			continue
		}
		rows = append(rows, k)
		partner = append(partner, p)
		side = append(side, m.Side)
	}

	var split spouseSplit
	leftSide, rightSide := SideWifeLeft, SideHusbandLeft
	if sex == pedigree.Female {
		leftSide, rightSide = SideHusbandLeft, SideWifeLeft
	}
	var undecided []int
	for k, p := range partner {
		switch side[k] {
		case leftSide:
			split.left = append(split.left, p)
		case rightSide:
			split.right = append(split.right, p)
		default:
			undecided = append(undecided, p)
		}
	}

	if len(undecided) > 0 {
		extra := 0
		if sex == pedigree.Female {
			extra = 1
		}
		nleft := (len(partner)+extra)/2 - len(split.left)
		nleft = max(0, min(nleft, len(undecided)))
		split.left = append(split.left, undecided[:nleft]...)
		split.right = append(append([]int(nil), undecided[nleft:]...), split.right...)
	}
	return split, rows
}
