package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful when the API server caches diagrams for multiple
// clusters in a shared backend and each cluster needs its own namespace.
//
// Example usage:
//
//	// Cluster-specific keys
//	clusterKeyer := NewScopedKeyer(NewDefaultKeyer(), "cluster:prod-eu:")
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

// TopologyKey generates a prefixed key for topology caching.
func (k *ScopedKeyer) TopologyKey(snapshotHash string, opts TopologyKeyOpts) string {
	return k.prefix + k.inner.TopologyKey(snapshotHash, opts)
}

// DiagramKey generates a prefixed key for diagram caching.
func (k *ScopedKeyer) DiagramKey(topologyHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(topologyHash, opts)
}
