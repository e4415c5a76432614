// Package depth assigns generation depths to the individuals of a pedigree.
//
// # Algorithm
//
// Founders sit at depth 0. Every other individual sits one generation below
// the deeper of their two parents:
//
//	depth[i] = max(depth[father[i]], depth[mother[i]]) + 1
//
// [Compute] evaluates this by repeated relaxation over the whole population
// until no depth changes, which is a longest-path computation on the
// parent→child graph. A pedigree in which someone is their own ancestor never
// converges; after n passes the relaxation gives up and reports
// [perrors.ErrCodeCyclicPedigree] with the individuals still moving.
//
// # Spouse Alignment
//
// With [Options.AlignSpouses], couples that parent a common child are drawn
// on the same row. The shallower spouse is moved down to the deeper spouse's
// depth and the descendants are re-relaxed. See [Options] for the tie-break.
package depth

import (
	"slices"

	perrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/pedigree"
)

// Options controls depth assignment.
type Options struct {
	// AlignSpouses moves spouses to a shared generation.
	//
	// Misaligned couples are visited in order of the shallower spouse's
	// depth, ties broken by the couple's first appearance in the pedigree.
	// Each couple is aligned at most once, so long marriage chains that
	// re-misalign an earlier couple leave it as is. A couple in which one
	// spouse descends from the other is never aligned.
	AlignSpouses bool
}

// Compute returns the generation depth of every individual.
//
// father and mother hold parent handles or [pedigree.NoParent]; a missing
// parent does not constrain the child. The result is freshly allocated and
// the inputs are not modified.
//
// Compute fails with [perrors.ErrCodeInvalidParentReference] when a parent
// handle is out of range and with [perrors.ErrCodeCyclicPedigree] when the
// parent links contain a cycle.
func Compute(father, mother []int, opts Options) ([]int, error) {
	n := len(father)
	if len(mother) != n {
		return nil, perrors.New(perrors.ErrCodeInvalidInput,
			"father and mother arrays differ in length (%d vs %d)", n, len(mother))
	}
	for i := range n {
		for _, par := range [2]int{father[i], mother[i]} {
			if par != pedigree.NoParent && (par < 0 || par >= n) {
				return nil, perrors.New(perrors.ErrCodeInvalidParentReference,
					"individual %d: parent index %d out of range [0,%d)", i, par, n).WithIndex(i)
			}
		}
	}

	depth := make([]int, n)
	if err := relax(father, mother, depth); err != nil {
		return nil, err
	}
	if opts.AlignSpouses {
		if err := alignSpouses(father, mother, depth); err != nil {
			return nil, err
		}
	}
	return depth, nil
}

// ForPedigree is a convenience wrapper around [Compute].
func ForPedigree(p *pedigree.Pedigree, opts Options) ([]int, error) {
	return Compute(p.Father, p.Mother, opts)
}

// relax pushes depths down until every child sits below its parents.
// Depths only ever increase, so the loop may start from any assignment.
func relax(father, mother, depth []int) error {
	n := len(depth)
	var moving []int
	for pass := 0; pass <= n; pass++ {
		moving = moving[:0]
		for i := range n {
			d := depth[i]
			if f := father[i]; f != pedigree.NoParent && depth[f]+1 > d {
				d = depth[f] + 1
			}
			if m := mother[i]; m != pedigree.NoParent && depth[m]+1 > d {
				d = depth[m] + 1
			}
			if d != depth[i] {
				depth[i] = d
				moving = append(moving, i)
			}
		}
		if len(moving) == 0 {
			return nil
		}
	}
	return perrors.New(perrors.ErrCodeCyclicPedigree,
		"impossible pedigree: someone is their own ancestor (individuals %v)", moving).
		WithIndex(moving...)
}

func alignSpouses(father, mother, depth []int) error {
	type couple struct{ dad, mom int }
	var couples []couple
	seen := make(map[couple]bool)
	for i := range father {
		c := couple{father[i], mother[i]}
		if c.dad == pedigree.NoParent || c.mom == pedigree.NoParent || seen[c] {
			continue
		}
		seen[c] = true
		couples = append(couples, c)
	}

	done := make([]bool, len(couples))
	for {
		who := -1
		for k, c := range couples {
			if done[k] || depth[c.dad] == depth[c.mom] {
				continue
			}
			if who < 0 || min(depth[c.dad], depth[c.mom]) < min(depth[couples[who].dad], depth[couples[who].mom]) {
				who = k
			}
		}
		if who < 0 {
			break
		}
		done[who] = true

		c := couples[who]
		shallow, deep := c.dad, c.mom
		if depth[shallow] > depth[deep] {
			shallow, deep = deep, shallow
		}
		if isAncestor(father, mother, shallow, deep) {
			continue
		}
		depth[shallow] = depth[deep]
		if err := relax(father, mother, depth); err != nil {
			return err
		}
	}

	if len(depth) == 0 {
		return nil
	}
	if lo := slices.Min(depth); lo > 0 {
		for i := range depth {
			depth[i] -= lo
		}
	}
	return nil
}

// isAncestor reports whether a is an ancestor of b.
func isAncestor(father, mother []int, a, b int) bool {
	seen := make([]bool, len(father))
	stack := []int{b}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, par := range [2]int{father[cur], mother[cur]} {
			if par == pedigree.NoParent || seen[par] {
				continue
			}
			if par == a {
				return true
			}
			seen[par] = true
			stack = append(stack, par)
		}
	}
	return false
}

// Generations returns the number of generation rows, max(depth)+1, or 0
// for an empty pedigree.
func Generations(depth []int) int {
	if len(depth) == 0 {
		return 0
	}
	return slices.Max(depth) + 1
}

// Rows groups individual handles by depth. Row k lists, in ascending
// order, every individual at depth k.
func Rows(depth []int) [][]int {
	rows := make([][]int, Generations(depth))
	for i, d := range depth {
		rows[d] = append(rows[d], i)
	}
	return rows
}
