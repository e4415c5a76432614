package cache

// LayoutKeyOpts are the options that change a layout result.
type LayoutKeyOpts struct {
	Packed       bool    `json:"packed"`
	AlignSpouses bool    `json:"align_spouses"`
	Width        float64 `json:"width"`
	ChildWeight  float64 `json:"child_weight"`
	SpouseWeight float64 `json:"spouse_weight"`
	PlotWidth    float64 `json:"plot_width"`
	PlotHeight   float64 `json:"plot_height"`
	SymbolSize   float64 `json:"symbol_size"`
	LabelHeight  float64 `json:"label_height"`
}

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey returns the key for the layout of the pedigree whose
	// content hash is pedigreeHash.
	LayoutKey(pedigreeHash string, opts LayoutKeyOpts) string

	// DepthKey returns the key for the generation depths of a pedigree.
	DepthKey(pedigreeHash string, alignSpouses bool) string
}

// DefaultKeyer hashes every option into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:" followed by a hash of the pedigree hash and opts.
func (DefaultKeyer) LayoutKey(pedigreeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", pedigreeHash, opts)
}

// DepthKey returns "depth:" followed by a hash of its arguments.
func (DefaultKeyer) DepthKey(pedigreeHash string, alignSpouses bool) string {
	return hashKey("depth", pedigreeHash, alignSpouses)
}

var _ Keyer = DefaultKeyer{}
