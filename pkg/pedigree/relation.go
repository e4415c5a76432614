package pedigree

// RelationCode classifies a special pairwise relation.
type RelationCode int

const (
	// MZTwin marks monozygotic twins.
	MZTwin RelationCode = iota + 1
	// DZTwin marks dizygotic twins.
	DZTwin
	// UnknownTwin marks twins of unknown zygosity.
	UnknownTwin
	// SpouseRelation marks a marriage, with or without children.
	SpouseRelation
)

// String returns a short label for the code.
func (c RelationCode) String() string {
	switch c {
	case MZTwin:
		return "mz-twin"
	case DZTwin:
		return "dz-twin"
	case UnknownTwin:
		return "twin"
	case SpouseRelation:
		return "spouse"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the four defined codes.
func (c RelationCode) Valid() bool { return c >= MZTwin && c <= SpouseRelation }

// IsTwin reports whether c is one of the twin codes.
func (c RelationCode) IsTwin() bool { return c >= MZTwin && c <= UnknownTwin }

// Relation links two individuals by handle.
type Relation struct {
	ID1  int          `json:"id1"`
	ID2  int          `json:"id2"`
	Code RelationCode `json:"code"`
}

// Involves reports whether the relation links a and b in either order.
func (r Relation) Involves(a, b int) bool {
	return (r.ID1 == a && r.ID2 == b) || (r.ID1 == b && r.ID2 == a)
}
