package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments (or a
// staging and a production server) can share one Redis without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "etiket:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CodeImageKey generates a prefixed code image key.
func (k *ScopedKeyer) CodeImageKey(resolver, value string) string {
	return k.prefix + k.inner.CodeImageKey(resolver, value)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(contentHash, opts)
}
