// Package cache provides pluggable byte caches for pipeline stage
// results, plus deterministic key derivation for plan and artifact
// payloads.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is the interface all cache backends implement.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PlanKeyOpts are the planner parameters that affect plan output.
// Any change produces a different cache key.
type PlanKeyOpts struct {
	CanvasWidth  float64
	CanvasHeight float64
	Margin       float64
	Strategy     string
	GridRows     int
	GridCols     int
}

// ArtifactKeyOpts are the render parameters that affect artifact bytes.
type ArtifactKeyOpts struct {
	Format       string
	SnapshotTime float64
	ShowGrid     bool
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// PlanKey keys a computed plan by the request batch hash and the
	// planner parameters.
	PlanKey(requestsHash string, opts PlanKeyOpts) string

	// ArtifactKey keys a rendered artifact by the plan hash and the
	// render parameters.
	ArtifactKey(planHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer derives keys by hashing the inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// PlanKey generates a key for plan caching.
func (k *DefaultKeyer) PlanKey(requestsHash string, opts PlanKeyOpts) string {
	return hashKey(StagePlan, requestsHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return hashKey(StageArtifact, planHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so separate jobs or tenants
// never share entries.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. The prefix is
// prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PlanKey generates a prefixed key for plan caching.
func (k *ScopedKeyer) PlanKey(requestsHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(requestsHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(planHash, opts)
}

// NullCache never stores anything. It backs --no-cache runs and tests.
type NullCache struct{}

// NewNullCache creates a cache that always misses.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always reports a miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)

// hashKey derives a stage-prefixed key: <stage>:<sha256(parts)>. The
// stage prefix routes entries into the file cache's stage directories.
func hashKey(stage string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", stage, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
