// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tierconf/tierconf-go/internal/logger"
)

// LocalManager resolves configuration from the JSON file cascade and the
// environment only, with no remote service. Unlike [Manager], file values take
// precedence over environment values: in local-only mode the files are
// authoritative and the environment only fills gaps.
//
// Initialization is lazy and the same single-mutex discipline as [Manager]
// applies.
type LocalManager struct {
	mu       sync.Mutex
	state    managerState
	snapshot map[string]any

	publicCache tierCache
	secretCache tierCache
	ffCache     tierCache

	schemaKeys  map[string]bool
	envPrefix   string
	schemaTypes map[string]string
	cacheTTL    time.Duration
	deferred    map[string]DeferredValue

	dirCache    *DirCache
	envOverride map[string]string
	now         func() time.Time
	log         zerolog.Logger
}

// LocalOption configures a [LocalManager].
type LocalOption func(*LocalManager)

// WithLocalSchemaKeys sets the allow-list of keys read from the environment.
func WithLocalSchemaKeys(keys map[string]bool) LocalOption {
	return func(m *LocalManager) { m.schemaKeys = keys }
}

// WithLocalEnvPrefix sets the prefix stripped from environment variable
// names before the schema-key check.
func WithLocalEnvPrefix(prefix string) LocalOption {
	return func(m *LocalManager) { m.envPrefix = prefix }
}

// WithLocalSchemaTypes sets per-key type hints used to coerce environment
// values.
func WithLocalSchemaTypes(types map[string]string) LocalOption {
	return func(m *LocalManager) { m.schemaTypes = types }
}

// WithLocalCacheTTL sets the per-tier cache TTL. Zero or below caches
// forever. The default is 24 hours.
func WithLocalCacheTTL(ttl time.Duration) LocalOption {
	return func(m *LocalManager) { m.cacheTTL = ttl }
}

// WithLocalDirCache replaces the shared [DefaultDirCache].
func WithLocalDirCache(cache *DirCache) LocalOption {
	return func(m *LocalManager) { m.dirCache = cache }
}

// WithLocalEnvOverride replaces the process environment with a fixed map.
func WithLocalEnvOverride(env map[string]string) LocalOption {
	return func(m *LocalManager) { m.envOverride = env }
}

// WithLocalLogger replaces the manager's logger.
func WithLocalLogger(log zerolog.Logger) LocalOption {
	return func(m *LocalManager) { m.log = log }
}

// WithLocalClock replaces the clock used for cache expiry. Used by tests.
func WithLocalClock(now func() time.Time) LocalOption {
	return func(m *LocalManager) { m.now = now }
}

// WithLocalDeferred registers a computed value resolved once after the
// merge, same contract as [WithDeferred].
func WithLocalDeferred(name string, value DeferredValue) LocalOption {
	return func(m *LocalManager) {
		if m.deferred == nil {
			m.deferred = make(map[string]DeferredValue)
		}
		m.deferred[name] = value
	}
}

// NewLocalManager creates a file-and-environment-only manager. No I/O
// happens until the first getter call.
func NewLocalManager(opts ...LocalOption) *LocalManager {
	m := &LocalManager{
		publicCache: make(tierCache),
		secretCache: make(tierCache),
		ffCache:     make(tierCache),
		cacheTTL:    defaultCacheTTL,
		now:         time.Now,
		log:         logger.New("local-config-manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *LocalManager) environment() map[string]string {
	if m.envOverride != nil {
		return m.envOverride
	}
	return environMap(os.Environ())
}

// initialize loads file and environment config and merges them with file
// values winning. Caller must hold m.mu. File-cascade failures propagate.
func (m *LocalManager) initialize() error {
	if m.state == stateInitialized {
		return nil
	}

	env := m.environment()

	fileConfig, err := LoadFileConfig(env, m.dirCache)
	if err != nil {
		return fmt.Errorf("load file config: %w", err)
	}

	schemaKeys := m.schemaKeys
	if schemaKeys == nil {
		schemaKeys = make(map[string]bool)
	}
	envConfig := ReadEnvConfigFromEnv(schemaKeys, m.envPrefix, m.schemaTypes, env)

	merged := Merge(make(map[string]any), envConfig).(map[string]any)
	merged = Merge(merged, fileConfig).(map[string]any)
	resolveDeferred(merged, m.deferred)

	m.snapshot = merged
	m.state = stateInitialized
	return nil
}

func (m *LocalManager) get(key string, cache tierCache) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if value, ok := cache.get(key, now); ok {
		return value, nil
	}

	if err := m.initialize(); err != nil {
		return nil, err
	}

	value := m.snapshot[key]
	cache.put(key, value, now, m.cacheTTL)
	return value, nil
}

// GetPublic retrieves a public-tier value. It returns nil for keys absent
// from the merged snapshot.
func (m *LocalManager) GetPublic(_ context.Context, key string) (any, error) {
	return m.get(key, m.publicCache)
}

// GetSecret retrieves a secret-tier value.
func (m *LocalManager) GetSecret(_ context.Context, key string) (any, error) {
	return m.get(key, m.secretCache)
}

// GetFeatureFlag retrieves a feature-flag-tier value.
func (m *LocalManager) GetFeatureFlag(_ context.Context, key string) (any, error) {
	return m.get(key, m.ffCache)
}

// Invalidate discards the snapshot and all tier caches; the next getter
// re-runs resolution. The tier caches are cleared in place, never
// reassigned, for the same reason as on [Manager.Invalidate].
func (m *LocalManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = stateUninitialized
	m.snapshot = nil
	clear(m.publicCache)
	clear(m.secretCache)
	clear(m.ffCache)
}
