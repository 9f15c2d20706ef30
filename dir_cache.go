// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const (
	dirCacheTTL = time.Hour
	dirCacheKey = "config-dir"
)

// DefaultDirCache is the directory-discovery cache shared by managers that
// are not given their own via [WithDirCache]. Multiple managers in one
// process normally share the filesystem, so they share this cache too.
var DefaultDirCache = NewDirCache(dirCacheTTL)

// DirCache caches the discovered config directory path so repeated manager
// initializations skip the filesystem walk. Entries expire after the
// configured TTL, checked lazily on access; no background eviction runs.
type DirCache struct {
	cache *ttlcache.Cache[string, string]
}

// NewDirCache returns a directory cache whose entry expires after ttl.
// A ttl of zero or below caches forever.
func NewDirCache(ttl time.Duration) *DirCache {
	opts := []ttlcache.Option[string, string]{
		ttlcache.WithDisableTouchOnHit[string, string](),
	}
	if ttl > 0 {
		opts = append(opts, ttlcache.WithTTL[string, string](ttl))
	}
	return &DirCache{cache: ttlcache.New(opts...)}
}

// Get returns the cached directory path, or "" and false when no unexpired
// entry exists.
func (c *DirCache) Get() (string, bool) {
	item := c.cache.Get(dirCacheKey)
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

// Set stores the discovered directory path.
func (c *DirCache) Set(dir string) {
	c.cache.Set(dirCacheKey, dir, ttlcache.DefaultTTL)
}

// Reset drops the cached path. Used when the cached directory no longer
// exists on disk and by tests that need a clean slate.
func (c *DirCache) Reset() {
	c.cache.DeleteAll()
}
