package align

import (
	"fmt"
	"slices"

	perrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/hints"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/pedigree/depth"
)

// Spouse matrix values.
const (
	NotMarried     = 0 // slot is not married to its right neighbour
	Married        = 1 // ordinary marriage
	Consanguineous = 2 // spouses share an ancestor
)

// Options controls the alignment.
type Options struct {
	// Packed places subtrees side by side with unit gaps and then refines
	// positions with [Refine]. Unpacked layouts centre children under their
	// parents during the merge and are not refined.
	Packed bool `json:"packed" toml:"packed"`

	// AlignSpouses draws married couples on the same generation row.
	AlignSpouses bool `json:"align_spouses" toml:"align_spouses"`

	// Spacing configures the position refinement of packed layouts.
	Spacing SpacingOptions `json:"spacing" toml:"spacing"`
}

// DefaultOptions returns a packed, spouse-aligned configuration with the
// default spacing weights.
func DefaultOptions() Options {
	return Options{Packed: true, AlignSpouses: true, Spacing: DefaultSpacing()}
}

// Layout is a finished pedigree drawing arrangement.
type Layout struct {
	N   []int       `json:"n"`
	Nid [][]int     `json:"nid"`
	Pos [][]float64 `json:"pos"`
	Fam [][]int     `json:"fam"`

	// Spouse[lev][slot] is NotMarried, Married or Consanguineous for the
	// link between slot and slot+1.
	Spouse [][]int `json:"spouse"`

	// Twins[lev][slot] is the twin relation code linking slot and slot+1,
	// or 0. Nil when the pedigree records no twins.
	Twins [][]int `json:"twins,omitempty"`

	// Depth is the generation depth used for each individual.
	Depth []int `json:"depth"`
}

// Levels returns the number of generation rows.
func (l *Layout) Levels() int { return len(l.N) }

// Slots returns the total number of placed slots.
func (l *Layout) Slots() int {
	total := 0
	for _, n := range l.N {
		total += n
	}
	return total
}

// Align lays out p. When h is nil default hints are used; otherwise h is
// validated against the pedigree first.
func Align(p *pedigree.Pedigree, h *hints.Hints, opts Options) (*Layout, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := p.Len()

	var hv hints.Hints
	if h == nil {
		hv = hints.Default(n)
		hv.Order = groupTwins(p, hv.Order)
	} else {
		var err error
		if hv, err = hints.Check(*h, p.Sex); err != nil {
			return nil, err
		}
	}

	level, err := depth.ForPedigree(p, depth.Options{AlignSpouses: opts.AlignSpouses})
	if err != nil {
		return nil, err
	}
	f, err := NewFamily(p, level, hv, opts.Packed)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return &Layout{Depth: level}, nil
	}

	sl := seedSpouses(p, hv)
	roots := founders(p, f, sl)

	var arr Arrays
	for k, x := range roots {
		block, err := f.subtree(x, sl, 0)
		if err != nil {
			return nil, err
		}
		sl = block.SpouseList
		if k == 0 {
			arr = block
		} else {
			arr = Merge(arr, block, opts.Packed)
		}
	}
	if arr, err = f.drawPending(p.Len(), arr, sl); err != nil {
		return nil, err
	}

	l := finish(p, arr, level)
	if opts.Packed {
		if err := Refine(l, opts.Spacing); err != nil {
			return nil, fmt.Errorf("refine positions: %w", err)
		}
	}
	return l, nil
}

// seedSpouses builds the initial marriage accumulator: hinted marriages
// first, then explicit spouse relations, then every couple with a common
// child. Later duplicates of a husband/wife pair are dropped.
func seedSpouses(p *pedigree.Pedigree, h hints.Hints) SpouseList {
	var sl SpouseList
	for _, sp := range h.Spouse {
		side := SideWifeLeft
		if p.Sex[sp.Left] == pedigree.Male {
			side = SideHusbandLeft
		}
		sl = append(sl, Marriage{
			Husband: sp.Husband(p.Sex),
			Wife:    sp.Wife(p.Sex),
			Side:    side,
			Anchor:  sp.Anchor,
		})
	}
	for _, r := range p.Relations {
		if r.Code != pedigree.SpouseRelation {
			continue
		}
		husband, wife := r.ID1, r.ID2
		if p.Sex[husband] != pedigree.Male {
			husband, wife = wife, husband
		}
		sl = append(sl, Marriage{Husband: husband, Wife: wife})
	}
	for _, c := range p.Couples() {
		sl = append(sl, Marriage{Husband: c.Father, Wife: c.Mother})
	}

	type pair struct{ h, w int }
	seen := make(map[pair]bool, len(sl))
	out := sl[:0]
	for _, m := range sl {
		k := pair{m.Husband, m.Wife}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}

// founders returns the roots of the layout in hint order. Roots are the
// wives of couples in which neither spouse has parents, except that a
// founder with several such marriages is the root for all of them. Founders
// without any marriage are drawn on their own.
func founders(p *pedigree.Pedigree, f *Family, sl SpouseList) []int {
	var moms, dads []int
	for _, m := range sl {
		if p.Father[m.Husband] == pedigree.NoParent && p.Father[m.Wife] == pedigree.NoParent {
			moms = append(moms, m.Wife)
			dads = append(dads, m.Husband)
		}
	}
	dupMom, dupDad := duplicated(moms), duplicated(dads)

	var roots []int
	add := func(x int) {
		if !slices.Contains(roots, x) {
			roots = append(roots, x)
		}
	}
	for _, x := range dupMom {
		add(x)
	}
	for _, x := range dupDad {
		add(x)
	}
	for k, w := range moms {
		if !slices.Contains(dupDad, dads[k]) {
			add(w)
		}
	}

	married := make([]bool, p.Len())
	for _, m := range sl {
		married[m.Husband], married[m.Wife] = true, true
	}
	for i := range p.Len() {
		if p.IsFounder(i) && !married[i] {
			add(i)
		}
	}
	return f.byOrder(roots)
}

// drawPending lays out the marriages the root pass could not reach. This
// happens when spouse alignment pushes one partner below the other: the
// shallower partner's subtree leaves the marriage to the deeper one, who
// may not be a root. Each such marriage is drawn from the deeper partner
// with the other partner repeated on its right. Individuals that are still
// missing afterwards fail the layout.
func (f *Family) drawPending(n int, arr Arrays, sl SpouseList) (Arrays, error) {
	sl = slices.Clone(sl)
	for {
		missing := arr.missing(n)
		if len(missing) == 0 {
			return arr, nil
		}
		k := slices.IndexFunc(sl, func(m Marriage) bool {
			return slices.Contains(missing, m.Husband) || slices.Contains(missing, m.Wife) ||
				slices.ContainsFunc(f.children(m.Husband, m.Wife), func(c int) bool {
					return slices.Contains(missing, c)
				})
		})
		if k < 0 {
			return Arrays{}, perrors.New(perrors.ErrCodeIncompleteLayout,
				"individuals %v could not be placed", missing).WithIndex(missing...)
		}

		x, side := sl[k].Wife, SideWifeLeft
		if f.Level[sl[k].Husband] > f.Level[sl[k].Wife] {
			x, side = sl[k].Husband, SideHusbandLeft
		}
		sl[k].Side, sl[k].Anchor = side, 0

		block, err := f.subtree(x, sl, 0)
		if err != nil {
			return Arrays{}, err
		}
		sl = block.SpouseList
		arr = Merge(arr, block, f.Packed)
		arr.SpouseList = sl
	}
}

// missing returns the individuals in [0,n) that occupy no slot.
func (a Arrays) missing(n int) []int {
	placed := make([]bool, n)
	for lev := range a.Levels() {
		for _, id := range a.Nid[lev] {
			if id >= 0 && id < n {
				placed[id] = true
			}
		}
	}
	var out []int
	for i, ok := range placed {
		if !ok {
			out = append(out, i)
		}
	}
	return out
}

// groupTwins returns order with every twin set sharing the smallest key of
// its members, so sibling sorting keeps twins next to each other.
func groupTwins(p *pedigree.Pedigree, order []int) []int {
	root := make([]int, p.Len())
	for i := range root {
		root[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if root[i] != i {
			root[i] = find(root[i])
		}
		return root[i]
	}
	grouped := false
	for _, r := range p.Relations {
		if r.Code.IsTwin() {
			root[find(r.ID1)] = find(r.ID2)
			grouped = true
		}
	}
	if !grouped {
		return order
	}

	key := make(map[int]int)
	for i := range root {
		g := find(i)
		if k, ok := key[g]; !ok || order[i] < k {
			key[g] = order[i]
		}
	}
	out := make([]int, len(order))
	for i := range out {
		out[i] = key[find(i)]
	}
	return out
}

// duplicated returns the values that occur more than once in xs, in order
// of their second occurrence.
func duplicated(xs []int) []int {
	var out []int
	seen := make(map[int]int)
	for _, x := range xs {
		seen[x]++
		if seen[x] == 2 {
			out = append(out, x)
		}
	}
	return out
}

// finish converts merged arrays into a layout with spouse and twin marks.
func finish(p *pedigree.Pedigree, a Arrays, level []int) *Layout {
	levels := a.Levels()
	l := &Layout{
		N:      slices.Clone(a.N),
		Nid:    make([][]int, levels),
		Pos:    make([][]float64, levels),
		Fam:    make([][]int, levels),
		Spouse: make([][]int, levels),
		Depth:  level,
	}
	for lev := range levels {
		l.Nid[lev] = slices.Clone(a.Nid[lev])
		l.Pos[lev] = slices.Clone(a.Pos[lev])
		l.Fam[lev] = slices.Clone(a.Fam[lev])
		l.Spouse[lev] = make([]int, a.N[lev])
		for j, married := range a.Spouse[lev] {
			if !married || j+1 >= a.N[lev] {
				continue
			}
			l.Spouse[lev][j] = Married
			if p.SharesAncestor(a.Nid[lev][j], a.Nid[lev][j+1]) {
				l.Spouse[lev][j] = Consanguineous
			}
		}
	}
	l.Twins = twins(p, l)
	return l
}

// twins marks twin relations between neighbouring slots that hang under
// their parents.
func twins(p *pedigree.Pedigree, l *Layout) [][]int {
	if !slices.ContainsFunc(p.Relations, func(r pedigree.Relation) bool { return r.Code.IsTwin() }) {
		return nil
	}

	out := make([][]int, l.Levels())
	for lev := range out {
		out[lev] = make([]int, l.N[lev])
	}
	for _, r := range p.Relations {
		if !r.Code.IsTwin() {
			continue
		}
		l1, s1, ok1 := l.connected(r.ID1)
		l2, s2, ok2 := l.connected(r.ID2)
		if !ok1 || !ok2 || l1 != l2 || abs(s1-s2) != 1 {
			continue
		}
		out[l1][min(s1, s2)] = int(r.Code)
	}
	return out
}

// connected finds the slot where id is drawn under its parents.
func (l *Layout) connected(id int) (int, int, bool) {
	for lev := range l.Levels() {
		for j, x := range l.Nid[lev] {
			if x == id && l.Fam[lev][j] > 0 {
				return lev, j, true
			}
		}
	}
	return 0, 0, false
}

// Find returns every (level, slot) at which individual id is drawn.
func (l *Layout) Find(id int) [][2]int {
	var out [][2]int
	for lev := range l.Levels() {
		for j, x := range l.Nid[lev] {
			if x == id {
				out = append(out, [2]int{lev, j})
			}
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
