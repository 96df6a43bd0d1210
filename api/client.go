package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/open-cli-collective/substack-cli/internal/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 3
	defaultUserAgent = "Mozilla/5.0 (compatible; sbk/1.0; +https://github.com/open-cli-collective/substack-cli)"

	acceptJSON = "application/json"
	acceptRSS  = "application/rss+xml, application/xml, text/xml"
)

// Client is the newsletter publication API client.
type Client struct {
	baseURL    string
	userAgent  string
	retries    int
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetries sets how many times a rate-limited or failed request is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a new API client for the publication at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: defaultUserAgent,
		retries:   defaultRetries,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the publication URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostURL returns the public web URL of a post.
func (c *Client) PostURL(slug string) string {
	return c.baseURL + "/p/" + slug
}

// Get performs a GET request for JSON, retrying rate limits and network failures.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.get(ctx, path, acceptJSON)
}

func (c *Client) get(ctx context.Context, path, accept string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		body, err := c.do(ctx, path, accept)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil || attempt >= c.retries {
			return nil, err
		}

		var wait time.Duration
		var errResp *ErrorResponse
		var urlErr *url.Error
		switch {
		case errors.As(err, &errResp) && errResp.StatusCode == http.StatusTooManyRequests:
			wait = errResp.RetryAfter
			if wait <= 0 {
				wait = rateLimitBackoff(attempt)
			}
			logger.Warn("rate limited, retrying", "path", path, "wait", wait, "attempt", attempt+1)
		case errors.As(err, &urlErr):
			wait = networkBackoff(attempt + 1)
			logger.Debug("request failed, retrying", "path", path, "wait", wait, "error", err)
		default:
			return nil, err
		}

		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// do executes a single GET request and returns the response body.
func (c *Client) do(ctx context.Context, path, accept string) ([]byte, error) {
	// Ensure path starts with /
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode >= 400 {
		return nil, newErrorResponse(resp, respBody)
	}

	return respBody, nil
}

func newErrorResponse(resp *http.Response, body []byte) *ErrorResponse {
	errResp := &ErrorResponse{}
	if err := json.Unmarshal(body, errResp); err != nil || errResp.message() == "" {
		errResp.Message = fmt.Sprintf("API error (status %d): %s", resp.StatusCode, truncate(strings.TrimSpace(string(body)), 200))
	}
	errResp.StatusCode = resp.StatusCode
	if seconds, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && seconds >= 0 {
		errResp.RetryAfter = time.Duration(seconds) * time.Second
	}
	return errResp
}

// rateLimitBackoff is the wait after a 429 without a usable Retry-After header.
func rateLimitBackoff(attempt int) time.Duration {
	if attempt >= 3 {
		return 10 * time.Second
	}
	return min(2*time.Second<<attempt, 10*time.Second)
}

// networkBackoff is the wait before retry number n (n >= 1) of a failed request.
func networkBackoff(n int) time.Duration {
	if n >= 4 {
		return 5 * time.Second
	}
	return min(time.Second<<(n-1), 5*time.Second)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
