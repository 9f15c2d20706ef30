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

// managerState tracks the lazy-initialization state machine. The transition
// uninitialized→initialized happens at most once per epoch; Invalidate
// starts a new epoch.
type managerState int

const (
	stateUninitialized managerState = iota
	stateInitialized
)

// Manager merges three configuration sources into one snapshot, highest
// precedence first:
//
//  1. environment variables, which always win;
//  2. the remote config service, authoritative over files;
//  3. the JSON file cascade as the base layer.
//
// The snapshot is computed lazily on first access and re-used until
// [Manager.Invalidate]. A file-cascade failure is fatal and surfaces from
// the triggering getter; a remote failure is logged as a warning and treated
// as an empty contribution, one attempt per epoch.
//
// All state is guarded by a single mutex held for the full duration of every
// getter, including the blocking I/O of first-time initialization. This is a
// deliberate simplicity-over-throughput tradeoff: resolution is low-frequency
// work and cached reads are a map lookup.
type Manager struct {
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

	explicit settings
	remote   RemoteSource

	dirCache    *DirCache
	envOverride map[string]string
	now         func() time.Time
	log         zerolog.Logger
}

// Option configures a [Manager].
type Option func(*Manager)

// WithAPIKey sets the remote service bearer credential, overriding
// TIERCONF_API_KEY.
func WithAPIKey(key string) Option {
	return func(m *Manager) { m.explicit.APIKey = key }
}

// WithBaseURL sets the remote service base URL, overriding TIERCONF_API_URL.
func WithBaseURL(baseURL string) Option {
	return func(m *Manager) { m.explicit.BaseURL = baseURL }
}

// WithOrgID sets the organization ID, overriding TIERCONF_ORG_ID.
func WithOrgID(orgID string) Option {
	return func(m *Manager) { m.explicit.OrgID = orgID }
}

// WithEnvironment sets the environment name used for the remote fetch,
// overriding TIERCONF_ENV.
func WithEnvironment(environment string) Option {
	return func(m *Manager) { m.explicit.Environment = environment }
}

// WithSchemaKeys sets the allow-list of keys read from the environment.
func WithSchemaKeys(keys map[string]bool) Option {
	return func(m *Manager) { m.schemaKeys = keys }
}

// WithEnvPrefix sets the prefix stripped from environment variable names
// before the schema-key check.
func WithEnvPrefix(prefix string) Option {
	return func(m *Manager) { m.envPrefix = prefix }
}

// WithSchemaTypes sets per-key type hints used to coerce environment values.
func WithSchemaTypes(types map[string]string) Option {
	return func(m *Manager) { m.schemaTypes = types }
}

// WithCacheTTL sets the per-tier cache TTL. Zero or below caches forever.
// The default is 24 hours.
func WithCacheTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.cacheTTL = ttl }
}

// WithDirCache replaces the shared [DefaultDirCache] used during config
// directory discovery.
func WithDirCache(cache *DirCache) Option {
	return func(m *Manager) { m.dirCache = cache }
}

// WithRemoteSource injects the remote source, bypassing [Client]
// construction. The manager then attempts the remote fetch regardless of
// credential variables.
func WithRemoteSource(source RemoteSource) Option {
	return func(m *Manager) { m.remote = source }
}

// WithEnvOverride replaces the process environment with a fixed map. Used by
// tests to make resolution hermetic.
func WithEnvOverride(env map[string]string) Option {
	return func(m *Manager) { m.envOverride = env }
}

// WithLogger replaces the manager's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithClock replaces the clock used for cache expiry. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDeferred registers a computed value resolved once after the merge.
// The function sees the pre-resolution snapshot, never other deferred
// results, and its return value is stored under name, overwriting any
// merged value of that name.
func WithDeferred(name string, value DeferredValue) Option {
	return func(m *Manager) {
		if m.deferred == nil {
			m.deferred = make(map[string]DeferredValue)
		}
		m.deferred[name] = value
	}
}

// NewManager creates a manager. No I/O happens until the first getter call.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		publicCache: make(tierCache),
		secretCache: make(tierCache),
		ffCache:     make(tierCache),
		cacheTTL:    defaultCacheTTL,
		now:         time.Now,
		log:         logger.New("config-manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// environment returns the env map every resolution step reads from.
func (m *Manager) environment() map[string]string {
	if m.envOverride != nil {
		return m.envOverride
	}
	return environMap(os.Environ())
}

// initialize runs the resolution sequence. Caller must hold m.mu.
func (m *Manager) initialize(ctx context.Context) error {
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

	remoteConfig := m.fetchRemote(ctx, env)

	merged := Merge(make(map[string]any), fileConfig).(map[string]any)
	merged = Merge(merged, remoteConfig).(map[string]any)
	merged = Merge(merged, envConfig).(map[string]any)
	resolveDeferred(merged, m.deferred)

	m.snapshot = merged
	m.state = stateInitialized
	return nil
}

// fetchRemote performs the single per-epoch remote fetch. Any failure is
// reported as a warning and yields an empty contribution; resolution never
// blocks on remote availability.
func (m *Manager) fetchRemote(ctx context.Context, env map[string]string) map[string]any {
	resolved, err := resolveSettings(m.explicit, env)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to resolve remote config settings; skipping remote fetch")
		return map[string]any{}
	}

	source := m.remote
	if source == nil {
		if !resolved.complete() {
			return map[string]any{}
		}
		client, err := NewClient(resolved.BaseURL, resolved.APIKey, resolved.OrgID,
			WithClientLogger(m.log))
		if err != nil {
			m.log.Warn().Err(err).Msg("failed to construct remote config client")
			return map[string]any{}
		}
		defer client.Close()
		source = client
	}

	envName := coalesce(resolved.Environment, defaultEnvironment)

	values, err := source.FetchAll(ctx, envName)
	if err != nil {
		m.log.Warn().Err(err).Str("environment", envName).
			Msg("failed to fetch remote config; continuing without remote values")
		return map[string]any{}
	}
	return values
}

// get serves one tiered lookup under the manager lock: cache check (with
// lazy expiry), initialize-once, snapshot lookup, cache fill. A key absent
// from the snapshot is returned and cached as nil.
func (m *Manager) get(ctx context.Context, key string, cache tierCache) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if value, ok := cache.get(key, now); ok {
		return value, nil
	}

	if err := m.initialize(ctx); err != nil {
		return nil, err
	}

	value := m.snapshot[key]
	cache.put(key, value, now, m.cacheTTL)
	return value, nil
}

// GetPublic retrieves a public-tier value. It returns nil for keys absent
// from the merged snapshot.
func (m *Manager) GetPublic(ctx context.Context, key string) (any, error) {
	return m.get(ctx, key, m.publicCache)
}

// GetSecret retrieves a secret-tier value.
func (m *Manager) GetSecret(ctx context.Context, key string) (any, error) {
	return m.get(ctx, key, m.secretCache)
}

// GetFeatureFlag retrieves a feature-flag-tier value.
func (m *Manager) GetFeatureFlag(ctx context.Context, key string) (any, error) {
	return m.get(ctx, key, m.ffCache)
}

// Invalidate discards the snapshot and all tier caches and returns the
// manager to the uninitialized state. The next getter re-runs the full
// resolution sequence, observing any changed backing data.
//
// The tier caches are cleared in place, never reassigned: the cache fields
// are read outside the lock by the getters, so their map identity must stay
// fixed for the manager's lifetime.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = stateUninitialized
	m.snapshot = nil
	clear(m.publicCache)
	clear(m.secretCache)
	clear(m.ffCache)
}
