// Package cache provides pluggable caching for topology and diagram artifacts.
//
// The pipeline caches at two levels:
//   - Topology: the built graph, keyed by a hash of the resource snapshot
//   - Diagram: rendered output, keyed by the topology hash plus render options
//
// Backends include a file cache for CLI usage, Redis and MongoDB for server
// deployments, and a null cache for tests or when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
// Values are opaque byte slices; serialization is the caller's concern.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per cache level.
const (
	// TTLTopology is how long built topology graphs are cached.
	TTLTopology = 24 * time.Hour

	// TTLDiagram is how long rendered diagrams are cached.
	TTLDiagram = 24 * time.Hour
)

// TopologyKeyOpts are the build options that affect the topology graph.
// Options that change the graph must be part of the key.
type TopologyKeyOpts struct {
	IncludeGrants bool
}

// DiagramKeyOpts are the render options that affect diagram output.
type DiagramKeyOpts struct {
	Format    string // mermaid, dot, svg, json
	Mode      string // auto, detailed, overview
	Focus     string // namespace/name of focused gateway, empty for all
	Threshold int    // gateway count threshold for mode selection
}

// Keyer generates cache keys for the pipeline stages.
// Implementations must be deterministic: the same inputs always
// produce the same key.
type Keyer interface {
	// TopologyKey generates a key for a built topology graph.
	TopologyKey(snapshotHash string, opts TopologyKeyOpts) string

	// DiagramKey generates a key for a rendered diagram.
	DiagramKey(topologyHash string, opts DiagramKeyOpts) string
}

// DefaultKeyer is the standard key generator.
// Keys have the form "level:sha256(inputs)".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TopologyKey generates a key for topology caching.
func (k *DefaultKeyer) TopologyKey(snapshotHash string, opts TopologyKeyOpts) string {
	return hashKey("topo", snapshotHash, opts)
}

// DiagramKey generates a key for diagram caching.
func (k *DefaultKeyer) DiagramKey(topologyHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", topologyHash, opts)
}
