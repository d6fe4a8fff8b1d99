// Package apiclient is the REST client for the directory backend. GET
// responses are cached in memory for five minutes.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/hyperjump/aidex/internal/cache"
	"github.com/hyperjump/aidex/internal/telemetry"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 15 * time.Second

// RequestOptions describe one call. The zero value is a plain GET.
type RequestOptions struct {
	Method  string            `json:"method,omitempty"`
	Query   map[string]string `json:"query,omitempty"`
	Body    interface{}       `json:"body,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

func (o *RequestOptions) method() string {
	if o == nil || o.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(o.Method)
}

// Client talks to the backend rooted at baseURL (for example http://localhost:8080/api).
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.ResponseCache
	logger  *zap.Logger
	metrics *telemetry.Metrics
	headers map[string]string
	breaker *gobreaker.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithCache sets the response cache.
func WithCache(rc *cache.ResponseCache) Option {
	return func(c *Client) {
		if rc != nil {
			c.cache = rc
		}
	}
}

// WithClock builds the response cache on clock. Ignored when WithCache is also given after it.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		c.cache = cache.New(cache.WithClock(clock))
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records cache and request counters.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// New returns a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		cache:   cache.New(),
		logger:  zap.NewNop(),
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// CacheKey is the cache key of a call: the endpoint followed by the serialized
// options. The method is normalized first, so nil options and an explicit
// "get" share a key.
func CacheKey(endpoint string, opts *RequestOptions) (string, error) {
	var keyed RequestOptions
	if opts != nil {
		keyed = *opts
	}
	keyed.Method = opts.method()
	data, err := json.Marshal(&keyed)
	if err != nil {
		return "", fmt.Errorf("serialize request options: %w", err)
	}
	return endpoint + string(data), nil
}

// Request performs a call and returns the raw JSON body. Only GET calls read
// or write the cache; a cached payload younger than the TTL is returned
// without touching the network.
func (c *Client) Request(ctx context.Context, endpoint string, opts *RequestOptions) (RawMessage, error) {
	method := opts.method()
	key, err := CacheKey(endpoint, opts)
	if err != nil {
		return nil, err
	}
	cacheable := method == http.MethodGet

	if cacheable {
		if payload, ok := c.cache.Get(key); ok {
			c.metrics.CacheHit()
			c.logger.Debug("api cache hit", zap.String("endpoint", endpoint))
			return payload, nil
		}
		c.metrics.CacheMiss()
	}

	payload, err := c.send(ctx, method, endpoint, opts)
	c.metrics.ObserveAPIRequest(method, err)
	if err != nil {
		c.logger.Warn("api request failed", zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}
	if cacheable {
		c.cache.Set(key, payload)
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, opts *RequestOptions) (RawMessage, error) {
	u, err := c.buildURL(endpoint, opts)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if opts != nil && opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if opts != nil {
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response of %s %s: %w", method, endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestFailedError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       strings.TrimSpace(string(data)),
		}
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s %s: response is not valid JSON", method, endpoint)
	}
	return data, nil
}

func (c *Client) buildURL(endpoint string, opts *RequestOptions) (string, error) {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if opts != nil && len(opts.Query) > 0 {
		q := u.Query()
		keys := make([]string, 0, len(opts.Query))
		for k := range opts.Query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v := opts.Query[k]; v != "" {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// ClearCache removes cached responses whose key contains pattern; an empty
// pattern clears everything. It returns the number of entries removed.
func (c *Client) ClearCache(pattern string) int {
	n := c.cache.DeleteMatching(pattern)
	c.logger.Debug("api cache cleared", zap.String("pattern", pattern), zap.Int("removed", n))
	return n
}
