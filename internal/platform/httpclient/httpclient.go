// Package httpclient provides the HTTP client used by web workers: timeout,
// bounded retries on transient failures and optional rate limiting.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"reconweave/internal/platform/errors"
	"reconweave/internal/platform/logx"
	"reconweave/internal/platform/rate"
	"reconweave/internal/platform/resilience"
)

// DefaultUserAgent identifies reconweave on outbound requests.
const DefaultUserAgent = "reconweave/1.0"

// Client wraps http.Client with retry and pacing.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logx.Logger
	config     Config
}

// Config holds the configuration for the HTTP client.
type Config struct {
	// Timeout is the per-request timeout. Default: 30 seconds.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after the first. Default: 0.
	MaxRetries int

	// RetryBackoff is the initial backoff, doubled on each retry. Default: 1 second.
	RetryBackoff time.Duration

	// MaxRetryBackoff caps the backoff. Default: 30 seconds.
	MaxRetryBackoff time.Duration

	UserAgent string

	// RateLimit is requests per second; 0 disables pacing.
	RateLimit      float64
	RateLimitBurst int

	// MaxBodyBytes truncates response bodies; 0 means 10 MiB.
	MaxBodyBytes int64

	// Breaker fails requests fast after repeated failures; nil disables it.
	// Useful for clients that always talk to the same endpoint.
	Breaker *resilience.Breaker

	// Transport overrides the underlying round tripper (tests).
	Transport http.RoundTripper
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxRetries:      0,
		RetryBackoff:    1 * time.Second,
		MaxRetryBackoff: 30 * time.Second,
		UserAgent:       DefaultUserAgent,
		RateLimitBurst:  1,
		MaxBodyBytes:    10 << 20,
	}
}

// New creates a client; zero fields take their defaults.
func New(config Config, logger logx.Logger) *Client {
	d := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = d.Timeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = d.RetryBackoff
	}
	if config.MaxRetryBackoff <= 0 {
		config.MaxRetryBackoff = d.MaxRetryBackoff
	}
	if config.UserAgent == "" {
		config.UserAgent = d.UserAgent
	}
	if config.RateLimitBurst <= 0 {
		config.RateLimitBurst = 1
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = d.MaxBodyBytes
	}

	hc := &http.Client{Timeout: config.Timeout}
	if config.Transport != nil {
		hc.Transport = config.Transport
	}

	return &Client{
		httpClient: hc,
		limiter:    rate.FromConfig(config.RateLimit, config.RateLimitBurst),
		logger:     logger.With("component", "httpclient"),
		config:     config,
	}
}

// SetRedirectPolicy replaces the redirect handling of the underlying client.
func (c *Client) SetRedirectPolicy(fn func(req *http.Request, via []*http.Request) error) {
	c.httpClient.CheckRedirect = fn
}

// Do performs a request with pacing and retries. Retryable statuses are
// 429, 502, 503 and 504; a cancelled ctx stops immediately.
func (c *Client) Do(ctx context.Context, method, url string, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if !c.config.Breaker.Allow() {
			return nil, errors.Wrapf(errors.ErrServiceUnavailable, "%s: %v", url, resilience.ErrCircuitOpen)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limit wait failed")
		}

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create request for %s %s", method, url)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		elapsed := time.Since(start)

		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.config.Breaker.Failure()
			c.logger.Debug("http request failed",
				"method", method,
				"url", url,
				"attempt", attempt+1,
				"error", err.Error(),
				"duration_ms", elapsed.Milliseconds(),
			)
		} else {
			c.logger.Debug("http response",
				"method", method,
				"url", url,
				"status", resp.StatusCode,
				"duration_ms", elapsed.Milliseconds(),
			)
			if !IsRetryableStatus(resp.StatusCode) {
				c.config.Breaker.Success()
				return resp, nil
			}
			c.config.Breaker.Failure()
			resp.Body.Close()
			lastErr = errors.Errorf("HTTP %d", resp.StatusCode)
		}

		if attempt == c.config.MaxRetries {
			break
		}
		if err := c.backoff(ctx, attempt); err != nil {
			return nil, err
		}
	}

	return nil, errors.Wrapf(lastErr, "request failed after %d attempts", c.config.MaxRetries+1)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, url, headers)
}

// FetchJSON performs a GET expecting JSON and returns the body of a 2xx response.
func (c *Client) FetchJSON(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	if err := CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, errors.Wrapf(err, "request to %s failed", url)
	}
	return c.ReadBody(resp)
}

// ReadBody reads at most MaxBodyBytes of the body and closes it.
func (c *Client) ReadBody(resp *http.Response) ([]byte, error) {
	if resp == nil {
		return nil, errors.New("response is nil")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return body, nil
}

// IsRetryableStatus reports whether status is worth another attempt.
func IsRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// CheckStatus maps a non-2xx status to a platform sentinel.
func CheckStatus(resp *http.Response) error {
	if resp == nil {
		return errors.New("response is nil")
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return errors.ErrRateLimit
	case http.StatusNotFound:
		return errors.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.ErrUnauthorized
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusBadGateway:
		return errors.ErrServiceUnavailable
	default:
		return errors.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
}

func (c *Client) backoff(ctx context.Context, attempt int) error {
	wait := c.config.RetryBackoff << attempt
	if wait <= 0 || wait > c.config.MaxRetryBackoff {
		wait = c.config.MaxRetryBackoff
	}

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// String returns a human-readable representation of the client configuration.
func (c *Client) String() string {
	return fmt.Sprintf("HTTPClient{timeout=%s, max_retries=%d, rate_limit=%.1f/s}",
		c.config.Timeout,
		c.config.MaxRetries,
		c.config.RateLimit,
	)
}
