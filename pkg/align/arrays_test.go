package align

import (
	"reflect"
	"slices"
	"testing"
)

// row builds a single-level block from handles with positions 0..n-1.
func row(ids ...int) Arrays {
	a := NewArrays(1)
	pos := make([]float64, len(ids))
	for i := range pos {
		pos[i] = float64(i)
	}
	a.setRow(0, ids, pos, make([]int, len(ids)), make([]bool, len(ids)))
	return a
}

func TestMerge_Singletons(t *testing.T) {
	got := Merge(row(0), row(1), true)

	if got.N[0] != 2 {
		t.Fatalf("N[0] = %d, want 2", got.N[0])
	}
	if !slices.Equal(got.Nid[0], []int{0, 1}) {
		t.Errorf("Nid[0] = %v, want [0 1]", got.Nid[0])
	}
	if d := got.Pos[0][1] - got.Pos[0][0]; d != space {
		t.Errorf("second position offset = %g, want %g", d, space)
	}
}

func TestMerge_Overlap(t *testing.T) {
	for _, packed := range []bool{true, false} {
		got := Merge(row(0, 1), row(1, 2), packed)
		if got.N[0] != 3 {
			t.Errorf("packed=%v: N[0] = %d, want 3", packed, got.N[0])
		}
		if !slices.Equal(got.Nid[0], []int{0, 1, 2}) {
			t.Errorf("packed=%v: Nid[0] = %v, want [0 1 2]", packed, got.Nid[0])
		}
		if !slices.IsSorted(got.Pos[0]) {
			t.Errorf("packed=%v: positions not increasing: %v", packed, got.Pos[0])
		}
	}
}

func TestMerge_OverlapKeepsFamilyAndMarriage(t *testing.T) {
	x1 := row(0, 1)
	x2 := row(1, 2)
	x2.Fam[0][0] = 4
	x2.Spouse[0][0] = true

	got := Merge(x1, x2, true)
	if got.Fam[0][1] != 4 {
		t.Errorf("collapsed Fam = %d, want 4", got.Fam[0][1])
	}
	if !got.Spouse[0][1] {
		t.Error("collapsed slot lost its marriage flag")
	}
}

// twoGen builds a couple (a, b) over a single child k with family pointer 1.
func twoGen(a, b, k int) Arrays {
	x := NewArrays(2)
	x.setRow(0, []int{a, b}, []float64{0, 1}, []int{0, 0}, []bool{true, false})
	x.setRow(1, []int{k}, []float64{0.5}, []int{1}, []bool{false})
	return x
}

func TestMerge_FamilyPointerShift(t *testing.T) {
	tests := []struct {
		name    string
		x1, x2  Arrays
		wantFam []int
	}{
		{
			name:    "disjoint",
			x1:      twoGen(0, 1, 4),
			x2:      twoGen(2, 3, 5),
			wantFam: []int{1, 3}, // shifted by the two left slots
		},
		{
			name:    "shared parent",
			x1:      twoGen(0, 1, 4),
			x2:      twoGen(1, 3, 5),
			wantFam: []int{1, 2}, // shifted by one, the shared slot collapses
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.x1, tt.x2, true)
			if !slices.Equal(got.Fam[1], tt.wantFam) {
				t.Errorf("Fam[1] = %v, want %v", got.Fam[1], tt.wantFam)
			}
			// every pointer must address the child's parents
			for j, f := range got.Fam[1] {
				left, right := got.Nid[0][f-1], got.Nid[0][f]
				kid := got.Nid[1][j]
				parents := map[int][2]int{4: {0, 1}, 5: {tt.x2.Nid[0][0], tt.x2.Nid[0][1]}}
				if p := parents[kid]; p != [2]int{left, right} {
					t.Errorf("child %d points at %d,%d, want %v", kid, left, right, p)
				}
			}
		})
	}
}

func TestMerge_ZeroPointersStayZero(t *testing.T) {
	x2 := twoGen(2, 3, 5)
	x2.Fam[1][0] = 0
	got := Merge(twoGen(0, 1, 4), x2, true)
	if got.Fam[1][1] != 0 {
		t.Errorf("Fam[1][1] = %d, want 0", got.Fam[1][1])
	}
}

func TestMerge_UnpackedSingleSlide(t *testing.T) {
	x1 := NewArrays(2)
	x1.setRow(0, []int{0, 1}, []float64{0, 1}, []int{0, 0}, []bool{true, false})
	x1.setRow(1, []int{2}, []float64{0.5}, []int{1}, []bool{false})
	x2 := NewArrays(2)
	x2.setRow(0, []int{3}, []float64{0}, []int{0}, []bool{false})
	x2.setRow(1, []int{4, 5}, []float64{0, 1}, []int{0, 0}, []bool{false, false})

	got := Merge(x1, x2, false)

	// level 0 needs a slide of 2 and level 1 of 1.5; the larger wins.
	if want := []float64{0, 1, 2}; !slices.Equal(got.Pos[0], want) {
		t.Errorf("Pos[0] = %v, want %v", got.Pos[0], want)
	}
	if want := []float64{0.5, 2, 3}; !slices.Equal(got.Pos[1], want) {
		t.Errorf("Pos[1] = %v, want %v", got.Pos[1], want)
	}
}

func TestMerge_EmptyLevels(t *testing.T) {
	x1 := NewArrays(2)
	x1.setRow(1, []int{0}, []float64{0}, []int{0}, []bool{false})
	x2 := NewArrays(2)
	x2.setRow(0, []int{1}, []float64{0}, []int{0}, []bool{false})

	got := Merge(x1, x2, true)
	if !slices.Equal(got.N, []int{1, 1}) {
		t.Errorf("N = %v, want [1 1]", got.N)
	}
	if got.Pos[0][0] != 0 {
		t.Errorf("Pos[0][0] = %g, want 0 (nothing to clear on the left)", got.Pos[0][0])
	}
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	x1, x2 := twoGen(0, 1, 4), twoGen(1, 3, 5)
	c1, c2 := x1.Clone(), x2.Clone()

	_ = Merge(x1, x2, true)
	_ = Merge(x1, x2, false)

	if !reflect.DeepEqual(x1, c1) || !reflect.DeepEqual(x2, c2) {
		t.Error("Merge modified its inputs")
	}
}

func TestMerge_PendingMarriages(t *testing.T) {
	a := Marriage{Husband: 0, Wife: 1}
	b := Marriage{Husband: 2, Wife: 3}
	c := Marriage{Husband: 4, Wife: 5}

	x1, x2 := row(0), row(1)
	x1.SpouseList = SpouseList{a, b, c}
	x2.SpouseList = SpouseList{a, c}

	got := Merge(x1, x2, true).SpouseList
	if want := (SpouseList{a, c}); !slices.Equal(got, want) {
		t.Errorf("SpouseList = %v, want %v", got, want)
	}
}

func TestMerge_DrawnMarriagesCombine(t *testing.T) {
	a := Marriage{Husband: 0, Wife: 1}
	b := Marriage{Husband: 2, Wife: 3}
	c := Marriage{Husband: 4, Wife: 5}

	// Both blocks start from the same accumulator; x1 draws a, x2 draws b.
	x1, x2 := row(0), row(1)
	x1.SpouseList = SpouseList{b, c}
	x2.SpouseList = SpouseList{a, c}

	got := Merge(x1, x2, true).SpouseList
	if want := (SpouseList{c}); !slices.Equal(got, want) {
		t.Errorf("SpouseList = %v, want only the marriage neither block drew", got)
	}
}

func TestSpouseListWithout(t *testing.T) {
	sl := SpouseList{{Husband: 0, Wife: 1}, {Husband: 2, Wife: 3}, {Husband: 4, Wife: 5}}
	got := sl.Without([]int{0, 2})
	if want := (SpouseList{{Husband: 2, Wife: 3}}); !slices.Equal(got, want) {
		t.Errorf("Without() = %v, want %v", got, want)
	}
	if len(sl) != 3 {
		t.Error("Without() modified the receiver")
	}
}
