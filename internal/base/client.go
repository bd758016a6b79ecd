// Package base provides shared HTTP client infrastructure for the Wikipedia API.
package base

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/olgasafonova/wikipedia-mcp-server/internal/infra"
	"github.com/olgasafonova/wikipedia-mcp-server/metrics"
)

const (
	// DefaultTimeout for API requests
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the server to the provider
	DefaultUserAgent = "wikipedia-mcp-server/1.0"

	// MaxResponseSize caps a single response body
	MaxResponseSize = 32 << 20

	// BreakerName labels the provider circuit breaker in logs and metrics
	BreakerName = "wikipedia"
)

// Client provides common HTTP client infrastructure with circuit breaking.
// Requests are never retried and responses are never cached.
type Client struct {
	HTTPClient     *http.Client
	Logger         *slog.Logger
	CircuitBreaker *infra.CircuitBreaker

	timeout time.Duration
	proxy   *url.URL
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithCircuitBreaker sets a custom circuit breaker
func WithCircuitBreaker(cb *infra.CircuitBreaker) ClientOption {
	return func(client *Client) {
		client.CircuitBreaker = cb
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.timeout = d
	}
}

// WithProxy routes requests through the given proxy. Without it the
// standard proxy environment variables apply.
func WithProxy(u *url.URL) ClientOption {
	return func(client *Client) {
		client.proxy = u
	}
}

// NewClient creates a new base client with default settings
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		Logger:  slog.Default(),
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.HTTPClient == nil {
		c.HTTPClient = newHTTPClient(c.timeout, c.proxy)
	}
	if c.CircuitBreaker == nil {
		c.CircuitBreaker = NewBreaker(c.Logger, infra.DefaultBreakerConfig(BreakerName).FailureThreshold)
	}

	return c
}

// NewBreaker creates a provider circuit breaker that reports transitions
// to logger and metrics. A threshold <= 0 disables it.
func NewBreaker(logger *slog.Logger, threshold int) *infra.CircuitBreaker {
	cfg := infra.DefaultBreakerConfig(BreakerName)
	cfg.FailureThreshold = threshold
	cfg.OnStateChange = func(name string, from, to infra.CircuitState) {
		metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		if logger != nil {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		}
	}
	return infra.NewCircuitBreaker(cfg)
}

// CircuitBreakerStats returns the current circuit breaker state
func (c *Client) CircuitBreakerStats() infra.CircuitBreakerStats {
	return c.CircuitBreaker.Stats()
}

// CheckCircuitBreaker returns nil if requests are allowed, or an error if the circuit is open
func (c *Client) CheckCircuitBreaker() error {
	if !c.CircuitBreaker.Allow() {
		metrics.CircuitBreakerRejections.WithLabelValues(BreakerName).Inc()
		return c.CircuitBreaker.Err()
	}
	return nil
}

// RequestConfig configures a single HTTP request
type RequestConfig struct {
	URL       string
	UserAgent string
}

// DoRequest performs a single GET request guarded by the circuit breaker.
// Returns the response body and status code; the caller handles parsing.
// Transport failures and 5xx responses count against the breaker.
func (c *Client) DoRequest(ctx context.Context, cfg RequestConfig) ([]byte, int, error) {
	if err := c.CheckCircuitBreaker(); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	} else {
		req.Header.Set("User-Agent", DefaultUserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.recordTransportFailure(ctx)
		c.Logger.Warn("API request failed", "url", cfg.URL, "error", err)
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}

	body, err := readAndClose(resp)
	if err != nil {
		c.recordTransportFailure(ctx)
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		c.CircuitBreaker.RecordFailure()
		return nil, resp.StatusCode, fmt.Errorf("server error %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	c.CircuitBreaker.RecordSuccess()
	return body, resp.StatusCode, nil
}

// recordTransportFailure counts a failed exchange against the breaker. A
// caller giving up says nothing about provider health, so a cancelled call
// only hands back its half-open slot.
func (c *Client) recordTransportFailure(ctx context.Context) {
	if ctx.Err() != nil {
		c.CircuitBreaker.Release()
		return
	}
	c.CircuitBreaker.RecordFailure()
}

// readAndClose reads at most MaxResponseSize bytes of the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeds %d bytes", MaxResponseSize)
	}
	return body, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// newHTTPClient creates an HTTP client with optimized transport settings
func newHTTPClient(timeout time.Duration, proxy *url.URL) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		DisableCompression:    false,
		ForceAttemptHTTP2:     true,
	}
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
