package tierconf

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierconf/tierconf-go/internal/logger"
)

// ── stub config service ──────────────────────────────────────────────────────

// stubConfigServer is an in-process config service backed by chi, serving
// the endpoints the client consumes and counting requests.
type stubConfigServer struct {
	server *httptest.Server
	apiKey string
	orgID  string

	requests atomic.Int64

	mu     sync.Mutex
	values map[string]map[string]any // environment → key → value
}

func newStubConfigServer(t *testing.T, apiKey, orgID string, values map[string]map[string]any) *stubConfigServer {
	t.Helper()
	s := &stubConfigServer{apiKey: apiKey, orgID: orgID, values: values}

	r := chi.NewRouter()
	r.Get("/organizations/{orgID}/config/values", s.handleAll)
	r.Get("/organizations/{orgID}/config/values/{key}", s.handleOne)

	s.server = httptest.NewServer(r)
	t.Cleanup(s.server.Close)
	return s
}

func (s *stubConfigServer) authorize(w http.ResponseWriter, r *http.Request) bool {
	s.requests.Add(1)
	if r.Header.Get("Authorization") != "Bearer "+s.apiKey ||
		chi.URLParam(r, "orgID") != s.orgID {
		w.WriteHeader(http.StatusUnauthorized)
		return false
	}
	return true
}

func (s *stubConfigServer) handleAll(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	s.mu.Lock()
	envValues := s.values[r.URL.Query().Get("environment")]
	s.mu.Unlock()

	json.NewEncoder(w).Encode(map[string]any{"values": envValues})
}

func (s *stubConfigServer) handleOne(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	s.mu.Lock()
	value, ok := s.values[r.URL.Query().Get("environment")][chi.URLParam(r, "key")]
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"value": value})
}

func (s *stubConfigServer) setValues(environment string, values map[string]any) {
	s.mu.Lock()
	s.values[environment] = values
	s.mu.Unlock()
}

func (s *stubConfigServer) count() int {
	return int(s.requests.Load())
}

// clearCredentialEnv blanks the credential variables so clients under test
// never pick up real values from the host environment.
func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIKey, EnvBaseURL, EnvOrgID, EnvEnvironmentName} {
		t.Setenv(key, "")
	}
}

func newTestClient(t *testing.T, s *stubConfigServer, opts ...ClientOption) *Client {
	t.Helper()
	clearCredentialEnv(t)

	opts = append([]ClientOption{WithClientLogger(logger.Nop())}, opts...)
	client, err := NewClient(s.server.URL, s.apiKey, s.orgID, opts...)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

// ── construction ─────────────────────────────────────────────────────────────

// TestNewClient_MissingCredentials verifies construction fails fast when a
// credential is missing from both the arguments and the environment.
func TestNewClient_MissingCredentials(t *testing.T) {
	clearCredentialEnv(t)

	_, err := NewClient("http://localhost", "key", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

// TestNewClient_EnvFallback verifies credentials resolve from environment
// variables when the arguments are empty.
func TestNewClient_EnvFallback(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvBaseURL, "http://env")
	t.Setenv(EnvOrgID, "env-org")
	t.Setenv(EnvEnvironmentName, "staging")

	client, err := NewClient("", "", "")
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "env-org", client.orgID)
	assert.Equal(t, "staging", client.defaultEnv)
}

// ── GetAllValues ─────────────────────────────────────────────────────────────

// TestClient_GetAllValues verifies the full fetch for an environment,
// including bearer auth against the stub.
func TestClient_GetAllValues(t *testing.T) {
	s := newStubConfigServer(t, "key-1", "org-1", map[string]map[string]any{
		"production": {"API_URL": "https://api", "RETRIES": float64(3)},
	})
	client := newTestClient(t, s)

	values, err := client.GetAllValues(context.Background(), "production")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"API_URL": "https://api", "RETRIES": float64(3)}, values)
}

// TestClient_GetAllValues_DefaultEnvironment verifies an empty environment
// argument falls back to the client default ("development").
func TestClient_GetAllValues_DefaultEnvironment(t *testing.T) {
	s := newStubConfigServer(t, "key-1", "org-1", map[string]map[string]any{
		"development": {"K": "dev-value"},
	})
	client := newTestClient(t, s)

	values, err := client.GetAllValues(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "dev-value", values["K"])
}

// TestClient_GetAllValues_Unauthorized verifies non-2xx responses surface as
// descriptive errors.
func TestClient_GetAllValues_Unauthorized(t *testing.T) {
	s := newStubConfigServer(t, "key-1", "org-1", map[string]map[string]any{})
	clearCredentialEnv(t)

	client, err := NewClient(s.server.URL, "wrong-key", "org-1", WithClientLogger(logger.Nop()))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.GetAllValues(context.Background(), "production")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

// ── GetValue ─────────────────────────────────────────────────────────────────

// TestClient_GetValue verifies single-key lookup.
func TestClient_GetValue(t *testing.T) {
	s := newStubConfigServer(t, "key-1", "org-1", map[string]map[string]any{
		"production": {"API_URL": "https://api"},
	})
	client := newTestClient(t, s)

	value, err := client.GetValue(context.Background(), "API_URL", "production")
	require.NoError(t, err)
	assert.Equal(t, "https://api", value)
}

// TestClient_GetValue_NotFound verifies an absent key maps to
// ErrKeyNotFound.
func TestClient_GetValue_NotFound(t *testing.T) {
	s := newStubConfigServer(t, "key-1", "org-1", map[string]map[string]any{
		"production": {},
	})
	client := newTestClient(t, s)

	_, err := client.GetValue(context.Background(), "MISSING", "production")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

// TestClient_GetValue_Cached verifies the second lookup within the TTL is
// served from cache without touching the server.
func TestClient_GetValue_Cached(t *testing.T) {
	s := newStubConfigServer(t, "key-1", "org-1", map[string]map[string]any{
		"production": {"K": "v"},
	})
	client := newTestClient(t, s)

	_, err := client.GetValue(context.Background(), "K", "production")
	require.NoError(t, err)
	requestsAfterFirst := s.count()

	value, err := client.GetValue(context.Background(), "K", "production")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
	assert.Equal(t, requestsAfterFirst, s.count())
}

// TestClient_GetValue_CacheExpiry verifies an expired entry triggers a
// refetch that can observe updated backing data.
func TestClient_GetValue_CacheExpiry(t *testing.T) {
	s := newStubConfigServer(t, "key-1", "org-1", map[string]map[string]any{
		"production": {"K": "old"},
	})
	client := newTestClient(t, s, WithClientCacheTTL(10*time.Millisecond))

	_, err := client.GetValue(context.Background(), "K", "production")
	require.NoError(t, err)

	s.setValues("production", map[string]any{"K": "new"})
	time.Sleep(20 * time.Millisecond)

	value, err := client.GetValue(context.Background(), "K", "production")
	require.NoError(t, err)
	assert.Equal(t, "new", value)
}

// TestClient_GetValue_SeededByGetAllValues verifies a bulk fetch fills the
// per-key cache.
func TestClient_GetValue_SeededByGetAllValues(t *testing.T) {
	s := newStubConfigServer(t, "key-1", "org-1", map[string]map[string]any{
		"production": {"K": "v"},
	})
	client := newTestClient(t, s)

	_, err := client.GetAllValues(context.Background(), "production")
	require.NoError(t, err)
	requestsAfterBulk := s.count()

	value, err := client.GetValue(context.Background(), "K", "production")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
	assert.Equal(t, requestsAfterBulk, s.count())
}

// ── invalidation ─────────────────────────────────────────────────────────────

// TestClient_InvalidateCache verifies a full invalidation forces refetching.
func TestClient_InvalidateCache(t *testing.T) {
	s := newStubConfigServer(t, "key-1", "org-1", map[string]map[string]any{
		"production": {"K": "old"},
	})
	client := newTestClient(t, s)

	_, err := client.GetValue(context.Background(), "K", "production")
	require.NoError(t, err)

	s.setValues("production", map[string]any{"K": "new"})
	client.InvalidateCache()

	value, err := client.GetValue(context.Background(), "K", "production")
	require.NoError(t, err)
	assert.Equal(t, "new", value)
}

// TestClient_InvalidateCacheForEnvironment verifies invalidation is scoped
// to one environment.
func TestClient_InvalidateCacheForEnvironment(t *testing.T) {
	s := newStubConfigServer(t, "key-1", "org-1", map[string]map[string]any{
		"production": {"K": "prod-old"},
		"staging":    {"K": "stage-old"},
	})
	client := newTestClient(t, s)

	_, err := client.GetValue(context.Background(), "K", "production")
	require.NoError(t, err)
	_, err = client.GetValue(context.Background(), "K", "staging")
	require.NoError(t, err)

	s.setValues("production", map[string]any{"K": "prod-new"})
	s.setValues("staging", map[string]any{"K": "stage-new"})
	client.InvalidateCacheForEnvironment("production")

	value, err := client.GetValue(context.Background(), "K", "production")
	require.NoError(t, err)
	assert.Equal(t, "prod-new", value)

	// Staging entry is still cached.
	value, err = client.GetValue(context.Background(), "K", "staging")
	require.NoError(t, err)
	assert.Equal(t, "stage-old", value)
}
