package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("empty cache should miss")
	}

	if err := c.Set(ctx, "plan:abc", []byte(`{"entries":[]}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "plan:abc")
	if err != nil || !hit {
		t.Fatalf("Get after Set: hit=%v err=%v", hit, err)
	}
	if string(data) != `{"entries":[]}` {
		t.Errorf("data = %q", data)
	}

	if err := c.Delete(ctx, "plan:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "plan:abc"); hit {
		t.Error("deleted key should miss")
	}
	// Deleting again is fine.
	if err := c.Delete(ctx, "plan:abc"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "short", []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	fc := c.(*FileCache)
	if err := os.WriteFile(fc.path("k"), []byte("not json"), 0644); err != nil {
		t.Fatalf("corrupt entry: %v", err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want clean miss", hit, err)
	}
	// The bad file is evicted.
	if _, err := os.Stat(filepath.Join(fc.path("k"))); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestStageOf(t *testing.T) {
	cases := map[string]string{
		"plan:abc":       StagePlan,
		"artifact:def":   StageArtifact,
		"job:42:plan:gh": StageMisc,
		"plain":          StageMisc,
	}
	for key, want := range cases {
		if got := StageOf(key); got != want {
			t.Errorf("StageOf(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestFileCacheStagePartition(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	keys := []string{"plan:p1", "artifact:a1", "stray"}
	for _, key := range keys {
		if err := c.Set(ctx, key, []byte(key), 0); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	fc := c.(*FileCache)
	for _, key := range keys {
		wantDir := filepath.Join(dir, StageOf(key))
		if !strings.HasPrefix(fc.path(key), wantDir+string(filepath.Separator)) {
			t.Errorf("path(%q) = %q, want under %q", key, fc.path(key), wantDir)
		}
		if _, err := os.Stat(fc.path(key)); err != nil {
			t.Errorf("entry for %q missing: %v", key, err)
		}
	}

	// Stage directories are independent: dropping artifacts leaves
	// plans intact.
	if err := os.RemoveAll(filepath.Join(dir, StageArtifact)); err != nil {
		t.Fatalf("remove artifact stage: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "artifact:a1"); hit {
		t.Error("artifact survived its stage removal")
	}
	if _, hit, _ := c.Get(ctx, "plan:p1"); !hit {
		t.Error("plan entry lost by clearing the artifact stage")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	opts := PlanKeyOpts{CanvasWidth: 14.2, CanvasHeight: 8, Margin: 0.1, Strategy: "grid"}

	a := k.PlanKey("hash1", opts)
	b := k.PlanKey("hash1", opts)
	if a != b {
		t.Error("same inputs must produce the same key")
	}
	if k.PlanKey("hash2", opts) == a {
		t.Error("different request hashes must produce different keys")
	}
	opts.Margin = 0.2
	if k.PlanKey("hash1", opts) == a {
		t.Error("different margins must produce different keys")
	}

	art := k.ArtifactKey("p1", ArtifactKeyOpts{Format: "svg", SnapshotTime: 2})
	if art == k.ArtifactKey("p1", ArtifactKeyOpts{Format: "png", SnapshotTime: 2}) {
		t.Error("different formats must produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "job:42:")

	opts := PlanKeyOpts{CanvasWidth: 10, CanvasHeight: 10}
	got := scoped.PlanKey("h", opts)
	want := "job:42:" + inner.PlanKey("h", opts)
	if got != want {
		t.Errorf("scoped key = %q, want %q", got, want)
	}
}
