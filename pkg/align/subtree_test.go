package align

import (
	"slices"
	"testing"

	perrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/hints"
	"github.com/matzehuels/pedigree/pkg/pedigree"
)

func mustFamily(t *testing.T, p *pedigree.Pedigree, level []int, packed bool) *Family {
	t.Helper()
	f, err := NewFamily(p, level, hints.Default(p.Len()), packed)
	if err != nil {
		t.Fatalf("NewFamily() error: %v", err)
	}
	return f
}

func TestSubtree_Couple(t *testing.T) {
	p := mustPedigree(t,
		[]int{none, none, 0, 0},
		[]int{none, none, 1, 1},
		[]pedigree.Sex{M, F, M, F},
	)
	f := mustFamily(t, p, []int{0, 0, 1, 1}, false)
	sl := SpouseList{{Husband: 0, Wife: 1}}

	got, err := Subtree(1, f, sl)
	if err != nil {
		t.Fatalf("Subtree() error: %v", err)
	}
	if !slices.Equal(got.Nid[0], []int{0, 1}) {
		t.Errorf("Nid[0] = %v, want [0 1]", got.Nid[0])
	}
	if !slices.Equal(got.Spouse[0], []bool{true, false}) {
		t.Errorf("Spouse[0] = %v, want [true false]", got.Spouse[0])
	}
	if !slices.Equal(got.Nid[1], []int{2, 3}) || !slices.Equal(got.Fam[1], []int{1, 1}) {
		t.Errorf("children row = %v fam %v, want [2 3] fam [1 1]", got.Nid[1], got.Fam[1])
	}
	if len(got.SpouseList) != 0 {
		t.Errorf("SpouseList = %v, want marriage consumed", got.SpouseList)
	}
	if len(sl) != 1 {
		t.Error("Subtree() modified the caller's accumulator")
	}

	// unpacked: children centred under the couple
	parMean := (got.Pos[0][0] + got.Pos[0][1]) / 2
	kidMean := (got.Pos[1][0] + got.Pos[1][1]) / 2
	if parMean != kidMean {
		t.Errorf("parents centred at %g, children at %g", parMean, kidMean)
	}
}

func TestSubtree_NoSpouse(t *testing.T) {
	p := mustPedigree(t, []int{none, none}, []int{none, none}, []pedigree.Sex{M, F})
	f := mustFamily(t, p, []int{0, 0}, true)

	got, err := Subtree(0, f, nil)
	if err != nil {
		t.Fatalf("Subtree() error: %v", err)
	}
	if !slices.Equal(got.N, []int{1}) || got.Nid[0][0] != 0 {
		t.Errorf("Subtree() = %+v, want single slot", got)
	}
}

func TestSubtree_AnchoredHint(t *testing.T) {
	// The hinted marriage 0+1 is anchored to the wife, so the husband's
	// subtree must leave it for her.
	p := mustPedigree(t, []int{none, none}, []int{none, none}, []pedigree.Sex{M, F})
	f := mustFamily(t, p, []int{0, 0}, true)
	sl := SpouseList{{Husband: 0, Wife: 1, Side: SideHusbandLeft, Anchor: hints.AnchorRight}}

	his, err := Subtree(0, f, sl)
	if err != nil {
		t.Fatalf("Subtree(husband) error: %v", err)
	}
	if his.N[0] != 1 || len(his.SpouseList) != 1 {
		t.Errorf("husband drew an anchored marriage: %+v", his)
	}

	hers, err := Subtree(1, f, sl)
	if err != nil {
		t.Fatalf("Subtree(wife) error: %v", err)
	}
	if !slices.Equal(hers.Nid[0], []int{0, 1}) {
		t.Errorf("wife's row = %v, want [0 1]", hers.Nid[0])
	}
}

func TestSubtree_DeeperSpouseLeftAlone(t *testing.T) {
	// Without spouse alignment founder 3 sits above her husband 2; her own
	// subtree must not pull him up.
	p := mustPedigree(t,
		[]int{none, none, 0, none, 2},
		[]int{none, none, 1, none, 3},
		[]pedigree.Sex{M, F, M, F, F},
	)
	f := mustFamily(t, p, []int{0, 0, 1, 0, 2}, true)
	sl := SpouseList{{Husband: 2, Wife: 3}}

	got, err := Subtree(3, f, sl)
	if err != nil {
		t.Fatalf("Subtree() error: %v", err)
	}
	if got.N[0] != 1 || len(got.SpouseList) != 1 {
		t.Errorf("Subtree(3) = %+v, want lone slot with marriage pending", got)
	}
}

func TestSiblings_Order(t *testing.T) {
	p := mustPedigree(t,
		[]int{none, none, 0, 0, 0},
		[]int{none, none, 1, 1, 1},
		[]pedigree.Sex{M, F, M, M, F},
	)
	f, err := NewFamily(p, []int{0, 0, 1, 1, 1}, hints.Hints{Order: []int{1, 2, 2, 1, 2}}, true)
	if err != nil {
		t.Fatalf("NewFamily() error: %v", err)
	}
	got, err := Siblings([]int{2, 3, 4}, f, nil)
	if err != nil {
		t.Fatalf("Siblings() error: %v", err)
	}
	// 3 has the lowest key; 2 and 4 tie and keep input order.
	if want := []int{3, 2, 4}; !slices.Equal(got.Nid[1], want) {
		t.Errorf("Nid[1] = %v, want %v", got.Nid[1], want)
	}
	if want := []float64{0, 1, 2}; !slices.Equal(got.Pos[1], want) {
		t.Errorf("Pos[1] = %v, want %v", got.Pos[1], want)
	}
}

func TestSubtree_TooDeep(t *testing.T) {
	// Three generations squeezed into one by a bogus depth array.
	p := mustPedigree(t,
		[]int{none, none, 0, none, 2},
		[]int{none, none, 1, none, 3},
		[]pedigree.Sex{M, F, M, F, M},
	)
	f := mustFamily(t, p, []int{0, 0, 0, 0, 0}, true)
	sl := SpouseList{{Husband: 0, Wife: 1}, {Husband: 2, Wife: 3}}

	_, err := Subtree(1, f, sl)
	if !perrors.Is(err, perrors.ErrCodeAlignmentTooDeep) {
		t.Errorf("Subtree() error = %v, want ALIGNMENT_TOO_DEEP", err)
	}
}

func TestNewFamily_Errors(t *testing.T) {
	p := mustPedigree(t, []int{none, none}, []int{none, none}, []pedigree.Sex{M, F})
	tests := []struct {
		name  string
		level []int
		h     hints.Hints
		code  perrors.Code
	}{
		{"short depth", []int{0}, hints.Default(2), perrors.ErrCodeInvalidInput},
		{"negative depth", []int{0, -1}, hints.Default(2), perrors.ErrCodeInvalidInput},
		{"short order", []int{0, 0}, hints.Hints{Order: []int{1}}, perrors.ErrCodeInvalidHintShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFamily(p, tt.level, tt.h, true)
			if !perrors.Is(err, tt.code) {
				t.Errorf("NewFamily() error = %v, want %s", err, tt.code)
			}
		})
	}
}
