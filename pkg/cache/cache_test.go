package cache

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"transitatlas/pkg/db"
)

func TestSQLiteCache(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "cache_test.db")
	d, err := db.Init(dbPath)
	if err != nil {
		t.Fatalf("Failed to init db: %v", err)
	}
	defer d.Close()
	c := NewSQLiteCache(d)

	ctx := context.Background()

	// Miss before write
	val, hit := c.GetCache(ctx, "amap:linename:北京:1路")
	if hit {
		t.Error("Expected cache miss, got hit")
	}
	if val != nil {
		t.Error("Expected nil value, got bytes")
	}

	// Write then hit
	payload := []byte(`{"status":"1","buslines":[]}`)
	if err := c.SetCache(ctx, "amap:linename:北京:1路", payload); err != nil {
		t.Errorf("Set returned error: %v", err)
	}

	val, hit = c.GetCache(ctx, "amap:linename:北京:1路")
	if !hit {
		t.Fatal("Expected cache hit after set")
	}
	if !bytes.Equal(val, payload) {
		t.Errorf("cached value = %q, want %q", val, payload)
	}

	// Overwrite replaces
	if err := c.SetCache(ctx, "amap:linename:北京:1路", []byte("v2")); err != nil {
		t.Errorf("Set returned error: %v", err)
	}
	val, _ = c.GetCache(ctx, "amap:linename:北京:1路")
	if string(val) != "v2" {
		t.Errorf("cached value = %q, want 'v2'", val)
	}
}

func TestNullCache(t *testing.T) {
	var c Cacher = NullCache{}
	if err := c.SetCache(context.Background(), "k", []byte("v")); err != nil {
		t.Errorf("NullCache.SetCache returned error: %v", err)
	}
	if _, hit := c.GetCache(context.Background(), "k"); hit {
		t.Error("NullCache must never hit")
	}
}
