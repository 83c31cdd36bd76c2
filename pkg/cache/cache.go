// Package cache provides the render-artifact cache.
//
// Rasterizing DOT with Graphviz is the only expensive step in the pipeline,
// so rendered artifacts are cached keyed by a hash of the DOT document and
// the output format. Backends: file (default, XDG cache dir), redis (for the
// serve deployment), and null (caching disabled).
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries.
const (
	// TTLArtifact bounds how long rendered SVG/PNG artifacts live. The DOT
	// hash in the key already invalidates on content change; the TTL only
	// reclaims disk space.
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// found; an expired or unreadable entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
