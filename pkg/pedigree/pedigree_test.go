package pedigree

import (
	"slices"
	"testing"

	perrors "github.com/matzehuels/pedigree/pkg/errors"
)

// threeGen returns grandparents 0+1, their son 2, his wife 3 and their
// daughters 4 and 5.
func threeGen() *Pedigree {
	return &Pedigree{
		IDs:    []string{"gf", "gm", "dad", "mom", "d1", "d2"},
		Father: []int{NoParent, NoParent, 0, NoParent, 2, 2},
		Mother: []int{NoParent, NoParent, 1, NoParent, 3, 3},
		Sex:    []Sex{Male, Female, Male, Female, Female, Female},
	}
}

func TestNew(t *testing.T) {
	p, err := New([]string{"a", "b", "c"},
		[]int{NoParent, NoParent, 0},
		[]int{NoParent, NoParent, 1},
		[]Sex{Male, Female, Male})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3", p.Len())
	}
	if p.ID(2) != "c" || p.ID(7) != "" {
		t.Errorf("ID() lookups wrong: %q %q", p.ID(2), p.ID(7))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Pedigree)
		code   perrors.Code
	}{
		{"valid", func(p *Pedigree) {}, ""},
		{"misaligned", func(p *Pedigree) { p.Sex = p.Sex[:2] }, perrors.ErrCodeInvalidInput},
		{"bad sex", func(p *Pedigree) { p.Sex[3] = 0 }, perrors.ErrCodeInvalidSex},
		{"father out of range", func(p *Pedigree) { p.Father[4] = 9 }, perrors.ErrCodeInvalidParentReference},
		{"mother negative", func(p *Pedigree) { p.Mother[4] = -2 }, perrors.ErrCodeInvalidParentReference},
		{"own parent", func(p *Pedigree) { p.Father[2] = 2 }, perrors.ErrCodeCyclicPedigree},
		{"female father", func(p *Pedigree) { p.Father[4] = 1 }, perrors.ErrCodeInvalidParentSex},
		{"male mother", func(p *Pedigree) { p.Mother[4] = 0 }, perrors.ErrCodeInvalidParentSex},
		{"relation out of range", func(p *Pedigree) {
			p.Relations = []Relation{{ID1: 4, ID2: 10, Code: MZTwin}}
		}, perrors.ErrCodeInvalidRelation},
		{"relation self link", func(p *Pedigree) {
			p.Relations = []Relation{{ID1: 4, ID2: 4, Code: MZTwin}}
		}, perrors.ErrCodeInvalidRelation},
		{"relation bad code", func(p *Pedigree) {
			p.Relations = []Relation{{ID1: 4, ID2: 5, Code: 7}}
		}, perrors.ErrCodeInvalidRelation},
		{"same-sex marriage", func(p *Pedigree) {
			p.Relations = []Relation{{ID1: 4, ID2: 5, Code: SpouseRelation}}
		}, perrors.ErrCodeInvalidSpousePairing},
		{"twins", func(p *Pedigree) {
			p.Relations = []Relation{{ID1: 4, ID2: 5, Code: DZTwin}}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := threeGen()
			tt.mutate(p)
			err := p.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if !perrors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidate_ZeroValue(t *testing.T) {
	var p Pedigree
	if err := p.Validate(); err != nil {
		t.Errorf("zero Pedigree.Validate() = %v, want nil", err)
	}
}

func TestFoundersAndChildren(t *testing.T) {
	p := threeGen()

	if got, want := p.Founders(), []int{0, 1, 3}; !slices.Equal(got, want) {
		t.Errorf("Founders() = %v, want %v", got, want)
	}
	if got, want := p.Children(2, 3), []int{4, 5}; !slices.Equal(got, want) {
		t.Errorf("Children(2,3) = %v, want %v", got, want)
	}
	if got, want := p.Children(3, 2), []int{4, 5}; !slices.Equal(got, want) {
		t.Errorf("Children(3,2) = %v, want %v", got, want)
	}
	if got := p.Children(0, 3); len(got) != 0 {
		t.Errorf("Children(0,3) = %v, want none", got)
	}
}

func TestCouples(t *testing.T) {
	p := threeGen()
	want := []Couple{{Father: 0, Mother: 1}, {Father: 2, Mother: 3}}
	if got := p.Couples(); !slices.Equal(got, want) {
		t.Errorf("Couples() = %v, want %v", got, want)
	}
}

func TestAncestors(t *testing.T) {
	p := threeGen()
	mask := p.Ancestors(4)
	var got []int
	for i, ok := range mask {
		if ok {
			got = append(got, i)
		}
	}
	if want := []int{0, 1, 2, 3}; !slices.Equal(got, want) {
		t.Errorf("Ancestors(4) = %v, want %v", got, want)
	}
	if slices.Contains(p.Ancestors(0), true) {
		t.Error("founder has ancestors")
	}
}

func TestSharesAncestor(t *testing.T) {
	p := threeGen()
	tests := []struct {
		a, b int
		want bool
	}{
		{4, 5, true},  // siblings
		{2, 4, true},  // father and daughter
		{2, 3, false}, // married-in spouse
		{0, 1, false}, // founders
	}
	for _, tt := range tests {
		if got := p.SharesAncestor(tt.a, tt.b); got != tt.want {
			t.Errorf("SharesAncestor(%d,%d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIndexOf(t *testing.T) {
	p := threeGen()
	p.IDs[5] = "d1"
	idx := p.IndexOf()
	if idx["d1"] != 4 {
		t.Errorf("IndexOf()[d1] = %d, want first occurrence 4", idx["d1"])
	}
	if idx["mom"] != 3 {
		t.Errorf("IndexOf()[mom] = %d, want 3", idx["mom"])
	}
}

func TestParseSex(t *testing.T) {
	tests := []struct {
		in      string
		want    Sex
		wantErr bool
	}{
		{"male", Male, false},
		{" M ", Male, false},
		{"1", Male, false},
		{"Female", Female, false},
		{"f", Female, false},
		{"2", Female, false},
		{"unknown", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSexText(t *testing.T) {
	b, err := Female.MarshalText()
	if err != nil || string(b) != "female" {
		t.Fatalf("MarshalText() = %q, %v", b, err)
	}
	var s Sex
	if err := s.UnmarshalText([]byte("m")); err != nil || s != Male {
		t.Errorf("UnmarshalText(m) = %v, %v", s, err)
	}
	if _, err := Sex(0).MarshalText(); !perrors.Is(err, perrors.ErrCodeInvalidSex) {
		t.Errorf("MarshalText(0) error = %v, want INVALID_SEX", err)
	}
}

func TestRelationCode(t *testing.T) {
	for _, c := range []RelationCode{MZTwin, DZTwin, UnknownTwin} {
		if !c.IsTwin() || !c.Valid() {
			t.Errorf("%v should be a valid twin code", c)
		}
	}
	if SpouseRelation.IsTwin() || !SpouseRelation.Valid() {
		t.Error("SpouseRelation classification wrong")
	}
	if RelationCode(0).Valid() || RelationCode(5).Valid() {
		t.Error("out-of-range codes reported valid")
	}
	r := Relation{ID1: 3, ID2: 7, Code: MZTwin}
	if !r.Involves(7, 3) || r.Involves(3, 3) {
		t.Error("Relation.Involves wrong")
	}
}
