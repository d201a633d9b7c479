// Package cache provides byte-oriented caches for registry lookups.
//
// # Backends
//
//   - [FileCache]: entries stored as JSON files below a directory; the
//     default for CLI usage.
//   - [RedisCache]: entries stored in Redis, shared between machines (for
//     example CI runners publishing from the same workspace).
//   - [NullCache]: stores nothing; used for --no-cache and in tests.
//
// All backends implement [Cache]. [Namespace] wraps any backend with a key
// prefix and reports hits, misses and writes to an
// [observability.CacheHooks] implementation.
//
// # Usage
//
//	c, err := cache.NewFileCache(cache.DefaultDir())
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	npm := cache.Namespace(c, "npm:", hooks)
//	data, hit, err := npm.Get(ctx, "packument:left-pad")
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache is a key/value store with per-entry expiration.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by the cache.
	Clear(ctx context.Context) error

	// Close releases resources held by the cache.
	Close() error
}

// DefaultDir returns the directory used by the CLI's file cache:
// $XDG_CACHE_HOME/monorail, or the OS user cache directory, falling back
// to ~/.cache/monorail.
func DefaultDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "monorail")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "monorail")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "monorail")
}
