package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	perrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/hints"
	"github.com/matzehuels/pedigree/pkg/pedigree"
)

// Data is a decoded pedigree file.
type Data struct {
	Pedigree *pedigree.Pedigree
	Hints    *hints.Hints // nil when the file carries no hints
}

var relationFromString = map[string]pedigree.RelationCode{
	"mz-twin": pedigree.MZTwin,
	"dz-twin": pedigree.DZTwin,
	"twin":    pedigree.UnknownTwin,
	"spouse":  pedigree.SpouseRelation,
}

var anchorFromString = map[string]hints.Anchor{
	"":      hints.AnchorNone,
	"none":  hints.AnchorNone,
	"left":  hints.AnchorLeft,
	"right": hints.AnchorRight,
}

// ReadJSON decodes a JSON pedigree from r.
//
// ReadJSON returns an error if the JSON is malformed, an identifier is
// empty or repeated, a parent, relation or hint names an unknown
// identifier, or the resolved pedigree fails [pedigree.Pedigree.Validate].
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Data, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode json")
	}
	return doc.resolve()
}

// ReadTOML decodes a TOML pedigree from r. It fails on the same conditions
// as [ReadJSON] and additionally on keys the format does not define.
func ReadTOML(r io.Reader) (*Data, error) {
	var doc document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode toml")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "unknown key %q", undec[0].String())
	}
	return doc.resolve()
}

// ReadFile reads the pedigree file at path. The format is chosen by
// extension: .json or .toml.
func ReadFile(path string) (*Data, error) {
	var read func(io.Reader) (*Data, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		read = ReadJSON
	case ".toml":
		read = ReadTOML
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidFormat,
			"unsupported pedigree file extension %q (want .json or .toml)", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// resolve turns identifiers into handles and validates the result.
func (doc *document) resolve() (*Data, error) {
	n := len(doc.Individuals)
	p := &pedigree.Pedigree{
		IDs:    make([]string, n),
		Father: make([]int, n),
		Mother: make([]int, n),
		Sex:    make([]pedigree.Sex, n),
	}
	for i, ind := range doc.Individuals {
		if ind.ID == "" {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "individual %d has no id", i).WithIndex(i)
		}
		p.IDs[i], p.Sex[i] = ind.ID, ind.Sex
	}
	index := p.IndexOf()
	for i, id := range p.IDs {
		if index[id] != i {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "duplicate id %q", id).WithIndex(i)
		}
	}
	lookup := func(id, what string) (int, error) {
		if id == "" {
			return pedigree.NoParent, nil
		}
		i, ok := index[id]
		if !ok {
			return 0, perrors.New(perrors.ErrCodeInvalidParentReference, "%s: unknown id %q", what, id)
		}
		return i, nil
	}

	for i, ind := range doc.Individuals {
		var err error
		if p.Father[i], err = lookup(ind.Father, "father of "+ind.ID); err != nil {
			return nil, err
		}
		if p.Mother[i], err = lookup(ind.Mother, "mother of "+ind.ID); err != nil {
			return nil, err
		}
	}

	for k, r := range doc.Relations {
		code, ok := relationFromString[strings.ToLower(r.Code)]
		if !ok {
			return nil, perrors.New(perrors.ErrCodeInvalidRelation, "relation %d: unknown code %q", k, r.Code)
		}
		what := fmt.Sprintf("relation %d", k)
		id1, err := lookup(r.ID1, what)
		if err != nil {
			return nil, err
		}
		id2, err := lookup(r.ID2, what)
		if err != nil {
			return nil, err
		}
		if id1 == pedigree.NoParent || id2 == pedigree.NoParent {
			return nil, perrors.New(perrors.ErrCodeInvalidRelation, "relation %d: both ids are required", k)
		}
		p.Relations = append(p.Relations, pedigree.Relation{ID1: id1, ID2: id2, Code: code})
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	d := &Data{Pedigree: p}
	if doc.Hints != nil {
		h, err := doc.Hints.resolve(n, lookup)
		if err != nil {
			return nil, err
		}
		d.Hints = &h
	}
	return d, nil
}

func (hd *hintsDoc) resolve(n int, lookup func(id, what string) (int, error)) (hints.Hints, error) {
	if len(hd.Order) > n {
		return hints.Hints{}, perrors.New(perrors.ErrCodeInvalidHintShape,
			"order hint lists %d ids for %d individuals", len(hd.Order), n)
	}

	// Listed ids come first in list order, the rest follow in file order.
	h := hints.Hints{Order: make([]int, n)}
	for k, id := range hd.Order {
		i, err := lookup(id, "order hint")
		if err != nil {
			return hints.Hints{}, err
		}
		if i == pedigree.NoParent || h.Order[i] != 0 {
			return hints.Hints{}, perrors.New(perrors.ErrCodeInvalidHintShape,
				"order hint entry %d: id %q empty or repeated", k, id)
		}
		h.Order[i] = k + 1
	}
	next := len(hd.Order)
	for i := range h.Order {
		if h.Order[i] == 0 {
			next++
			h.Order[i] = next
		}
	}

	for k, sp := range hd.Spouse {
		what := fmt.Sprintf("spouse hint %d", k)
		left, err := lookup(sp.Left, what)
		if err != nil {
			return hints.Hints{}, err
		}
		right, err := lookup(sp.Right, what)
		if err != nil {
			return hints.Hints{}, err
		}
		if left == pedigree.NoParent || right == pedigree.NoParent {
			return hints.Hints{}, perrors.New(perrors.ErrCodeInvalidSpouseIndex, "%s: both partners are required", what)
		}
		anchor, ok := anchorFromString[strings.ToLower(sp.Anchor)]
		if !ok {
			return hints.Hints{}, perrors.New(perrors.ErrCodeInvalidHintShape, "%s: unknown anchor %q", what, sp.Anchor)
		}
		h.Spouse = append(h.Spouse, hints.SpousePair{Left: left, Right: right, Anchor: anchor})
	}
	return h, nil
}
