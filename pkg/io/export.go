package io

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/pedigree/pkg/align"
	"github.com/matzehuels/pedigree/pkg/hints"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/scale"
)

var anchorToString = map[hints.Anchor]string{
	hints.AnchorLeft:  "left",
	hints.AnchorRight: "right",
}

var spouseToString = map[int]string{
	align.Married:        "married",
	align.Consanguineous: "consanguineous",
}

type document struct {
	Individuals []individual `json:"individuals" toml:"individual"`
	Relations   []relation   `json:"relations,omitempty" toml:"relation"`
	Hints       *hintsDoc    `json:"hints,omitempty" toml:"hints"`
}

type individual struct {
	ID     string       `json:"id" toml:"id"`
	Father string       `json:"father,omitempty" toml:"father"`
	Mother string       `json:"mother,omitempty" toml:"mother"`
	Sex    pedigree.Sex `json:"sex" toml:"sex"`
}

type relation struct {
	ID1  string `json:"id1" toml:"id1"`
	ID2  string `json:"id2" toml:"id2"`
	Code string `json:"code" toml:"code"`
}

type hintsDoc struct {
	Order  []string     `json:"order,omitempty" toml:"order"`
	Spouse []spouseHint `json:"spouse,omitempty" toml:"spouse"`
}

type spouseHint struct {
	Left   string `json:"left" toml:"left"`
	Right  string `json:"right" toml:"right"`
	Anchor string `json:"anchor,omitempty" toml:"anchor"`
}

// WriteJSON encodes p, and h when non-nil, in the format read by
// [ReadJSON]. Individuals without identifiers are written as "1", "2" and
// so on.
func WriteJSON(w io.Writer, p *pedigree.Pedigree, h *hints.Hints) error {
	id := labeller(p)
	ref := func(i int) string {
		if i == pedigree.NoParent {
			return ""
		}
		return id(i)
	}

	doc := document{Individuals: make([]individual, p.Len())}
	for i := range p.Len() {
		doc.Individuals[i] = individual{ID: id(i), Father: ref(p.Father[i]), Mother: ref(p.Mother[i]), Sex: p.Sex[i]}
	}
	for _, r := range p.Relations {
		doc.Relations = append(doc.Relations, relation{ID1: id(r.ID1), ID2: id(r.ID2), Code: r.Code.String()})
	}
	if h != nil {
		hd := &hintsDoc{Order: orderedIDs(h.Order, id)}
		for _, sp := range h.Spouse {
			hd.Spouse = append(hd.Spouse, spouseHint{Left: id(sp.Left), Right: id(sp.Right), Anchor: anchorToString[sp.Anchor]})
		}
		doc.Hints = hd
	}
	return encode(w, doc)
}

// orderedIDs lists identifiers by ascending order key, ties in handle order.
func orderedIDs(order []int, id func(int) string) []string {
	idx := make([]int, len(order))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(order[a], order[b]) })
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = id(i)
	}
	return out
}

// LayoutDocument is the exported form of a finished layout.
type LayoutDocument struct {
	Generations []Generation   `json:"generations"`
	Depth       map[string]int `json:"depth"`
	Scaling     *scale.Params  `json:"scaling,omitempty"`
}

// Generation is one row of the drawing.
type Generation struct {
	Level int    `json:"level"`
	Slots []Slot `json:"slots"`
}

// Slot is one drawn symbol. Family is the 1-based slot of the right-hand
// parent in the row above, or 0 when the symbol hangs free. Spouse and Twin
// describe the link to the next slot on the right.
type Slot struct {
	ID     string  `json:"id"`
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Family int     `json:"family,omitempty"`
	Spouse string  `json:"spouse,omitempty"`
	Twin   string  `json:"twin,omitempty"`
}

// NewLayoutDocument labels every slot of l with the identifiers of p.
func NewLayoutDocument(p *pedigree.Pedigree, l *align.Layout, params *scale.Params) LayoutDocument {
	id := labeller(p)
	doc := LayoutDocument{
		Generations: make([]Generation, l.Levels()),
		Depth:       make(map[string]int, len(l.Depth)),
		Scaling:     params,
	}
	for i, d := range l.Depth {
		doc.Depth[id(i)] = d
	}
	for lev := range l.Levels() {
		g := Generation{Level: lev, Slots: make([]Slot, l.N[lev])}
		for j := range l.N[lev] {
			s := Slot{
				ID:     id(l.Nid[lev][j]),
				Index:  l.Nid[lev][j],
				X:      l.Pos[lev][j],
				Family: l.Fam[lev][j],
				Spouse: spouseToString[l.Spouse[lev][j]],
			}
			if l.Twins != nil && l.Twins[lev][j] != 0 {
				s.Twin = pedigree.RelationCode(l.Twins[lev][j]).String()
			}
			g.Slots[j] = s
		}
		doc.Generations[lev] = g
	}
	return doc
}

// WriteLayoutJSON writes l as an indented [LayoutDocument]. params may be
// nil when the layout has not been scaled.
func WriteLayoutJSON(w io.Writer, p *pedigree.Pedigree, l *align.Layout, params *scale.Params) error {
	return encode(w, NewLayoutDocument(p, l, params))
}

// ExportLayout writes l to a JSON file at path.
// This is a convenience wrapper around [WriteLayoutJSON] for file-based output.
func ExportLayout(path string, p *pedigree.Pedigree, l *align.Layout, params *scale.Params) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteLayoutJSON(f, p, l, params); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func labeller(p *pedigree.Pedigree) func(int) string {
	return func(i int) string {
		if id := p.ID(i); id != "" {
			return id
		}
		return fmt.Sprint(i + 1)
	}
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
