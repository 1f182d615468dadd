package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Stage directories under a FileCache root. Keys carry their pipeline
// stage as the prefix before the first colon; keys with an unknown
// prefix (scoped keys included) land in StageMisc.
const (
	StagePlan     = "plan"
	StageArtifact = "artifact"
	StageMisc     = "misc"
)

// Stages lists every stage directory a FileCache may create.
var Stages = []string{StagePlan, StageArtifact, StageMisc}

// FileCache stores pipeline stage results under a root directory,
// partitioned by stage so plans and artifacts can be inspected and
// cleared independently.
type FileCache struct {
	root string
}

// NewFileCache creates a file cache rooted at dir, creating it if
// needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{root: dir}, nil
}

// fileEntry is the on-disk format: the payload plus its expiry.
type fileEntry struct {
	Stage     string    `json:"stage"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Get retrieves a value. Unreadable and expired entries are evicted
// and reported as a miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores a value with a TTL. A zero TTL stores without expiration.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Stage: StageOf(key), Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// Delete removes a value. Deleting a missing key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

// StageOf maps a cache key to its stage directory.
func StageOf(key string) string {
	switch {
	case strings.HasPrefix(key, StagePlan+":"):
		return StagePlan
	case strings.HasPrefix(key, StageArtifact+":"):
		return StageArtifact
	default:
		return StageMisc
	}
}

// path places a key under root/<stage>/<shard>/<hash>.json. The shard
// level keeps any one directory from accumulating every entry.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.root, StageOf(key), h[:2], h[2:]+".json")
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
