// Package hints validates the optional display hints that steer a pedigree
// layout.
//
// Hints come in two parts. Order assigns every individual a sort key; among
// siblings, and among founders at the top level, lower keys are placed
// further left. Spouse lists explicit marriages together with the side each
// partner is drawn on and, optionally, which partner's family the couple
// is anchored to.
//
// [Check] is a pure gate: it never rewrites hints, it only rejects hints
// that would make the alignment engine produce nonsense.
package hints

import (
	perrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/pedigree"
)

// Anchor selects whose family a hinted marriage is drawn with.
type Anchor int

const (
	// AnchorNone lets either partner's subtree place the couple.
	AnchorNone Anchor = iota
	// AnchorLeft draws the couple with the left partner's family.
	AnchorLeft
	// AnchorRight draws the couple with the right partner's family.
	AnchorRight
)

// SpousePair is an explicit marriage drawn with Left to the left of Right.
type SpousePair struct {
	Left   int    `json:"left" toml:"left"`
	Right  int    `json:"right" toml:"right"`
	Anchor Anchor `json:"anchor,omitempty" toml:"anchor"`
}

// Hints steers the left-to-right order of a layout.
type Hints struct {
	Order  []int        `json:"order" toml:"order"`
	Spouse []SpousePair `json:"spouse,omitempty" toml:"spouse"`
}

// Default returns hints for n individuals that keep input order and
// declare no marriages.
func Default(n int) Hints {
	order := make([]int, n)
	for i := range order {
		order[i] = i + 1
	}
	return Hints{Order: order}
}

// Check validates h against the sexes of the population and returns it
// unchanged when valid. Rules are applied in order:
//
//  1. Order has exactly one entry per individual ([perrors.ErrCodeInvalidHintShape])
//  2. spouse indices are in range ([perrors.ErrCodeInvalidSpouseIndex])
//  3. every spouse pair is one male and one female ([perrors.ErrCodeInvalidSpousePairing])
//  4. every anchor is 0, 1 or 2 ([perrors.ErrCodeInvalidHintShape])
func Check(h Hints, sex []pedigree.Sex) (Hints, error) {
	n := len(sex)
	if h.Order == nil {
		return Hints{}, perrors.New(perrors.ErrCodeInvalidHintShape, "hints have no order component")
	}
	if len(h.Order) != n {
		return Hints{}, perrors.New(perrors.ErrCodeInvalidHintShape,
			"wrong length for order component: got %d, want %d", len(h.Order), n)
	}

	for k, sp := range h.Spouse {
		if sp.Left < 0 || sp.Left >= n || sp.Right < 0 || sp.Right >= n {
			return Hints{}, perrors.New(perrors.ErrCodeInvalidSpouseIndex,
				"spouse hint %d: invalid index (%d, %d) for %d individuals", k, sp.Left, sp.Right, n)
		}
	}
	for k, sp := range h.Spouse {
		a, b := sex[sp.Left], sex[sp.Right]
		if !a.Valid() || !b.Valid() || a == b {
			return Hints{}, perrors.New(perrors.ErrCodeInvalidSpousePairing,
				"spouse hint %d: marriage is not male/female", k).WithIndex(sp.Left, sp.Right)
		}
	}
	for k, sp := range h.Spouse {
		if sp.Anchor < AnchorNone || sp.Anchor > AnchorRight {
			return Hints{}, perrors.New(perrors.ErrCodeInvalidHintShape,
				"spouse hint %d: invalid anchor %d", k, int(sp.Anchor))
		}
	}
	return h, nil
}

// Husband returns the male partner of sp.
func (sp SpousePair) Husband(sex []pedigree.Sex) int {
	if sex[sp.Left] == pedigree.Male {
		return sp.Left
	}
	return sp.Right
}

// Wife returns the female partner of sp.
func (sp SpousePair) Wife(sex []pedigree.Sex) int {
	if sex[sp.Left] == pedigree.Male {
		return sp.Right
	}
	return sp.Left
}
