// Package cache provides response caching for outbound API requests.
package cache

import (
	"context"
	"log/slog"

	"transitatlas/pkg/db"
)

// Cacher defines the caching interface.
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// SQLiteCache implements Cacher using pkg/db.
type SQLiteCache struct {
	db *db.DB
}

// NewSQLiteCache creates a new cache.
func NewSQLiteCache(d *db.DB) *SQLiteCache {
	return &SQLiteCache{db: d}
}

func (c *SQLiteCache) GetCache(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT value FROM cache WHERE key = ?", key).Scan(&val)
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *SQLiteCache) SetCache(ctx context.Context, key string, val []byte) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO cache (key, value) VALUES (?, ?)", key, val)
	if err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
	return err
}

// NullCache is a Cacher that never hits. Used when caching is disabled.
type NullCache struct{}

func (NullCache) GetCache(ctx context.Context, key string) ([]byte, bool) { return nil, false }

func (NullCache) SetCache(ctx context.Context, key string, val []byte) error { return nil }
