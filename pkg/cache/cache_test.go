package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/rustcap/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

type missCounter struct {
	observability.NoopCacheHooks
	misses []string
}

func (m *missCounter) OnCacheMiss(_ context.Context, keyType string) {
	m.misses = append(m.misses, keyType)
}

func TestNullCacheReportsMisses(t *testing.T) {
	hooks := &missCounter{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	c := NewNullCache()
	key := MetadataKey("abc", "compiler/rustc_ast")
	if err := c.Set(context.Background(), key, []byte("{}"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(context.Background(), key); hit {
		t.Fatal("NullCache should never hit")
	}
	if len(hooks.misses) != 1 || hooks.misses[0] != "metadata" {
		t.Errorf("misses = %v, want [metadata]", hooks.misses)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestMetadataKey(t *testing.T) {
	k1 := MetadataKey("abc", "compiler/rustc_ast")
	k2 := MetadataKey("abc", "compiler/rustc_ast")
	if k1 != k2 {
		t.Error("MetadataKey should be deterministic")
	}
	if !strings.HasPrefix(k1, "metadata:") {
		t.Errorf("MetadataKey = %q, want metadata: prefix", k1)
	}
	if MetadataKey("abd", "compiler/rustc_ast") == k1 {
		t.Error("different commits should produce different keys")
	}
	if MetadataKey("abc", "compiler/rustc_span") == k1 {
		t.Error("different dirs should produce different keys")
	}
	if len(k1) != len("metadata:")+16 {
		t.Errorf("MetadataKey = %q, want a 16 hex digit hash", k1)
	}
	if hashKey("m", "ab", "c") == hashKey("m", "a", "bc") {
		t.Error("part boundaries should affect the key")
	}
	if got := keyType(k1); got != "metadata" {
		t.Errorf("keyType = %q, want metadata", got)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "metadata:x"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "metadata:x", []byte(`{"packages":[]}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "metadata:x")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `{"packages":[]}` {
		t.Errorf("Get = %q", data)
	}

	if err := c.Delete(ctx, "metadata:x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "metadata:x"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "metadata:x"); err != nil {
		t.Errorf("Delete of missing key = %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry = hit %v, err %v, want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir should survive Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
}
