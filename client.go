// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tierconf/tierconf-go/internal/logger"
)

// Client reads configuration values from the remote config service. It is
// safe for concurrent use and caches fetched values per environment and key.
//
// Empty constructor arguments fall back to the TIERCONF_API_URL,
// TIERCONF_API_KEY and TIERCONF_ORG_ID environment variables; construction
// fails with [ErrMissingCredentials] when any of the three is still missing.
type Client struct {
	client     *resty.Client
	orgID      string
	defaultEnv string
	cacheTTL   time.Duration
	log        zerolog.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type valueResponse struct {
	Value any `json:"value"`
}

type valuesResponse struct {
	Values map[string]any `json:"values"`
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithClientCacheTTL sets how long fetched values stay cached. Zero, the
// default, caches forever.
func WithClientCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) { c.cacheTTL = ttl }
}

// WithClientLogger replaces the client's logger.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithClientTimeout sets the per-request timeout on the underlying HTTP
// client. The default is 15 seconds.
func WithClientTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.client.SetTimeout(timeout) }
}

// NewClient creates a remote config client. Pass empty strings to resolve
// credentials from the environment.
func NewClient(baseURL, apiKey, orgID string, opts ...ClientOption) (*Client, error) {
	resolved, err := resolveSettings(settings{
		APIKey:  apiKey,
		BaseURL: baseURL,
		OrgID:   orgID,
	}, environMap(os.Environ()))
	if err != nil {
		return nil, fmt.Errorf("resolve client settings: %w", err)
	}
	if !resolved.complete() {
		return nil, fmt.Errorf("%w: base URL, API key and org ID are required", ErrMissingCredentials)
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(resolved.BaseURL, "/")).
		SetAuthToken(resolved.APIKey).
		SetTimeout(15 * time.Second)
	cli.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-Id", uuid.NewString())
		return nil
	})

	c := &Client{
		client:     cli,
		orgID:      resolved.OrgID,
		defaultEnv: coalesce(resolved.Environment, defaultEnvironment),
		log:        logger.New("config-client"),
		cache:      make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// FetchAll implements [RemoteSource].
func (c *Client) FetchAll(ctx context.Context, environment string) (map[string]any, error) {
	return c.GetAllValues(ctx, environment)
}

// GetAllValues retrieves every config value for the given environment and
// caches each one. Pass an empty environment to use the default.
func (c *Client) GetAllValues(ctx context.Context, environment string) (map[string]any, error) {
	env := c.resolveEnv(environment)

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("environment", env).
		Get(fmt.Sprintf("/organizations/%s/config/values", url.PathEscape(c.orgID)))
	if err != nil {
		return nil, fmt.Errorf("get all config values: %w", err)
	}
	if err = mapStatusError(resp); err != nil {
		return nil, fmt.Errorf("get all config values: %w", err)
	}

	var result valuesResponse
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode config values response: %w", err)
	}

	c.mu.Lock()
	expiresAt := c.computeExpiresAt()
	for key, value := range result.Values {
		c.cache[env+":"+key] = cacheEntry{value: value, expiresAt: expiresAt}
	}
	c.mu.Unlock()

	c.log.Debug().Str("environment", env).Int("count", len(result.Values)).
		Msg("fetched remote config values")

	return result.Values, nil
}

// GetValue retrieves a single config value. Pass an empty environment to use
// the default. A key absent from the service yields [ErrKeyNotFound]. The
// result is cached after the first fetch.
func (c *Client) GetValue(ctx context.Context, key, environment string) (any, error) {
	env := c.resolveEnv(environment)
	cacheKey := env + ":" + key

	c.mu.RLock()
	entry, ok := c.cache[cacheKey]
	c.mu.RUnlock()
	if ok && (entry.expiresAt.IsZero() || time.Now().Before(entry.expiresAt)) {
		return entry.value, nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("environment", env).
		Get(fmt.Sprintf("/organizations/%s/config/values/%s", url.PathEscape(c.orgID), url.PathEscape(key)))
	if err != nil {
		return nil, fmt.Errorf("get config value %q: %w", key, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %q in environment %q", ErrKeyNotFound, key, env)
	}
	if err = mapStatusError(resp); err != nil {
		return nil, fmt.Errorf("get config value %q: %w", key, err)
	}

	var result valueResponse
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode config value response: %w", err)
	}

	c.mu.Lock()
	c.cache[cacheKey] = cacheEntry{value: result.Value, expiresAt: c.computeExpiresAt()}
	c.mu.Unlock()

	return result.Value, nil
}

// InvalidateCache drops every locally cached value.
func (c *Client) InvalidateCache() {
	c.mu.Lock()
	c.cache = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// InvalidateCacheForEnvironment drops cached values for one environment.
func (c *Client) InvalidateCacheForEnvironment(environment string) {
	prefix := environment + ":"
	c.mu.Lock()
	for key := range c.cache {
		if strings.HasPrefix(key, prefix) {
			delete(c.cache, key)
		}
	}
	c.mu.Unlock()
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	c.client.GetClient().CloseIdleConnections()
}

func (c *Client) resolveEnv(environment string) string {
	if environment != "" {
		return environment
	}
	return c.defaultEnv
}

func (c *Client) computeExpiresAt() time.Time {
	if c.cacheTTL > 0 {
		return time.Now().Add(c.cacheTTL)
	}
	return time.Time{}
}

// mapStatusError converts a non-2xx response into a descriptive error.
func mapStatusError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
}
