package pedigree

import perrors "github.com/matzehuels/pedigree/pkg/errors"

// NoParent is the handle used for a parent that is not in the pedigree.
const NoParent = -1

// Pedigree is an arena of individuals with aligned per-individual slices.
// Index i of every slice describes the same individual.
//
// The zero value is an empty, valid pedigree. Use [New] to build one with
// validation, or fill the fields directly and call [Pedigree.Validate].
type Pedigree struct {
	IDs       []string   `json:"ids"`                 // Opaque identifiers (informational only)
	Father    []int      `json:"father"`              // Father handle or NoParent
	Mother    []int      `json:"mother"`              // Mother handle or NoParent
	Sex       []Sex      `json:"sex"`                 // Recorded sex
	Relations []Relation `json:"relations,omitempty"` // Twins and explicit marriages
}

// Couple is a father/mother pair that parents at least one child.
type Couple struct {
	Father int
	Mother int
}

// New builds a pedigree from aligned slices and validates it.
// The slices are used as-is; callers must not modify them afterwards.
func New(ids []string, father, mother []int, sex []Sex, rels ...Relation) (*Pedigree, error) {
	p := &Pedigree{IDs: ids, Father: father, Mother: mother, Sex: sex, Relations: rels}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Len returns the number of individuals.
func (p *Pedigree) Len() int { return len(p.Father) }

// Validate checks the arena for structural and semantic consistency:
//   - all per-individual slices have the same length
//   - parent handles are NoParent or in range, and nobody is their own parent
//   - fathers are male and mothers are female
//   - every sex is valid
//   - relation handles are in range, distinct, and use a defined code
//
// Ancestor cycles longer than one step are not checked here; the depth
// assigner reports them as [perrors.ErrCodeCyclicPedigree].
func (p *Pedigree) Validate() error {
	n := len(p.Father)
	if len(p.Mother) != n || len(p.Sex) != n || (p.IDs != nil && len(p.IDs) != n) {
		return perrors.New(perrors.ErrCodeInvalidInput,
			"misaligned pedigree arrays: %d fathers, %d mothers, %d sexes, %d ids",
			n, len(p.Mother), len(p.Sex), len(p.IDs))
	}

	for i := range n {
		if !p.Sex[i].Valid() {
			return perrors.New(perrors.ErrCodeInvalidSex, "individual %d has no valid sex", i).WithIndex(i)
		}
	}

	for i := range n {
		f, m := p.Father[i], p.Mother[i]
		if !p.validParent(f) {
			return perrors.New(perrors.ErrCodeInvalidParentReference,
				"individual %d: father index %d out of range [0,%d)", i, f, n).WithIndex(i)
		}
		if !p.validParent(m) {
			return perrors.New(perrors.ErrCodeInvalidParentReference,
				"individual %d: mother index %d out of range [0,%d)", i, m, n).WithIndex(i)
		}
		if f == i || m == i {
			return perrors.New(perrors.ErrCodeCyclicPedigree,
				"individual %d is recorded as their own parent", i).WithIndex(i)
		}
		if f != NoParent && p.Sex[f] != Male {
			return perrors.New(perrors.ErrCodeInvalidParentSex,
				"individual %d: father %d is not male", i, f).WithIndex(i, f)
		}
		if m != NoParent && p.Sex[m] != Female {
			return perrors.New(perrors.ErrCodeInvalidParentSex,
				"individual %d: mother %d is not female", i, m).WithIndex(i, m)
		}
	}

	for k, r := range p.Relations {
		if r.ID1 < 0 || r.ID1 >= n || r.ID2 < 0 || r.ID2 >= n {
			return perrors.New(perrors.ErrCodeInvalidRelation,
				"relation %d references individuals %d,%d outside [0,%d)", k, r.ID1, r.ID2, n)
		}
		if r.ID1 == r.ID2 {
			return perrors.New(perrors.ErrCodeInvalidRelation,
				"relation %d links individual %d to themselves", k, r.ID1).WithIndex(r.ID1)
		}
		if !r.Code.Valid() {
			return perrors.New(perrors.ErrCodeInvalidRelation,
				"relation %d has invalid code %d", k, int(r.Code)).WithIndex(r.ID1, r.ID2)
		}
		if r.Code == SpouseRelation && p.Sex[r.ID1] == p.Sex[r.ID2] {
			return perrors.New(perrors.ErrCodeInvalidSpousePairing,
				"relation %d: marriage is not male/female", k).WithIndex(r.ID1, r.ID2)
		}
	}
	return nil
}

func (p *Pedigree) validParent(idx int) bool {
	return idx == NoParent || (idx >= 0 && idx < len(p.Father))
}

// ID returns the identifier of individual i, or an empty string when the
// pedigree carries no identifiers.
func (p *Pedigree) ID(i int) string {
	if i < 0 || i >= len(p.IDs) {
		return ""
	}
	return p.IDs[i]
}

// IndexOf returns a lookup from identifier to handle. When identifiers are
// duplicated, the first occurrence wins.
func (p *Pedigree) IndexOf() map[string]int {
	idx := make(map[string]int, len(p.IDs))
	for i, id := range p.IDs {
		if _, ok := idx[id]; !ok {
			idx[id] = i
		}
	}
	return idx
}

// IsFounder reports whether individual i has no recorded parents.
func (p *Pedigree) IsFounder(i int) bool {
	return p.Father[i] == NoParent && p.Mother[i] == NoParent
}

// Founders returns the handles of all founders in ascending order.
func (p *Pedigree) Founders() []int {
	var out []int
	for i := range p.Father {
		if p.IsFounder(i) {
			out = append(out, i)
		}
	}
	return out
}

// Children returns the handles of the children of a and b (in either
// parental role), in ascending order.
func (p *Pedigree) Children(a, b int) []int {
	var out []int
	for i := range p.Father {
		f, m := p.Father[i], p.Mother[i]
		if (f == a && m == b) || (f == b && m == a) {
			out = append(out, i)
		}
	}
	return out
}

// Couples returns every distinct father/mother pair that shares a child,
// ordered by the first child that introduces it.
func (p *Pedigree) Couples() []Couple {
	var out []Couple
	seen := make(map[Couple]bool)
	for i := range p.Father {
		f, m := p.Father[i], p.Mother[i]
		if f == NoParent || m == NoParent {
			continue
		}
		c := Couple{Father: f, Mother: m}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Ancestors returns a membership mask of all ancestors of i (excluding i).
// The walk is iterative and tolerates cycles.
func (p *Pedigree) Ancestors(i int) []bool {
	mask := make([]bool, len(p.Father))
	stack := []int{i}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, par := range [2]int{p.Father[cur], p.Mother[cur]} {
			if par != NoParent && !mask[par] {
				mask[par] = true
				stack = append(stack, par)
			}
		}
	}
	return mask
}

// SharesAncestor reports whether a and b have at least one common ancestor,
// or one is an ancestor of the other.
func (p *Pedigree) SharesAncestor(a, b int) bool {
	ma, mb := p.Ancestors(a), p.Ancestors(b)
	if ma[b] || mb[a] {
		return true
	}
	for k := range ma {
		if ma[k] && mb[k] {
			return true
		}
	}
	return false
}
