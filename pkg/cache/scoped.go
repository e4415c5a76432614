package cache

// ScopedKeyer wraps a Keyer with a prefix so several callers can share one
// backend without seeing each other's entries.
//
//	teamKeyer := NewScopedKeyer(NewDefaultKeyer(), "clinic:north:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys. A nil inner keyer means
// the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(pedigreeHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(pedigreeHash, opts)
}

// DepthKey generates a prefixed key for depth caching.
func (k *ScopedKeyer) DepthKey(pedigreeHash string, alignSpouses bool) string {
	return k.prefix + k.inner.DepthKey(pedigreeHash, alignSpouses)
}
