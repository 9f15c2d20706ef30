// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import "time"

const defaultCacheTTL = 24 * time.Hour

// cacheEntry is one cached lookup result for a tier. A nil value is a
// cached miss: keys known to be absent from the snapshot are cached the
// same as hits so repeated lookups skip the snapshot scan. A zero expiresAt
// means the entry never expires.
type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// tierCache maps keys to cached lookup results for one tier. It carries no
// lock of its own: every access happens under the owning manager's mutex,
// and expiry is checked lazily against the clock the manager passes in.
type tierCache map[string]cacheEntry

// get returns the unexpired entry for key. An expired entry is evicted and
// reported as absent.
func (c tierCache) get(key string, now time.Time) (any, bool) {
	entry, ok := c[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
		delete(c, key)
		return nil, false
	}
	return entry.value, true
}

// put stores value for key, expiring at now+ttl, or never when ttl is zero
// or below.
func (c tierCache) put(key string, value any, now time.Time, ttl time.Duration) {
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	c[key] = entry
}
