// Package bdl provides the BallDontLie NBA client: the shared HTTP plumbing
// and the handlers that turn BDL responses into canonical provider types.
//
// BDL uses cursor-based pagination and Authorization header auth.
// Rate limiting is handled via a token bucket limiter; transient failures
// are retried with exponential backoff.
package bdl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the BallDontLie NBA API root.
const DefaultBaseURL = "https://api.balldontlie.io/v1"

// RetryConfig controls how transient failures are retried. A request is
// attempted at most MaxRetries+1 times; the delay starts at Backoff and
// doubles after each failure up to MaxBackoff.
type RetryConfig struct {
	MaxRetries    int
	Backoff       time.Duration
	MaxBackoff    time.Duration
	RetryStatuses []int
}

// DefaultRetry retries 429 and 5xx gateway errors five times, starting at
// two seconds.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:    5,
		Backoff:       2 * time.Second,
		MaxBackoff:    30 * time.Second,
		RetryStatuses: []int{429, 500, 502, 503, 504},
	}
}

func (r RetryConfig) retryable(status int) bool {
	for _, s := range r.RetryStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ClientOptions configures a Client. Zero values fall back to defaults.
type ClientOptions struct {
	BaseURL           string
	APIKey            string
	RequestsPerMinute int
	Timeout           time.Duration
	Retry             RetryConfig
}

// Client is the shared HTTP client for all BDL endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	retry      RetryConfig
	logger     *slog.Logger
}

// NewClient creates a BDL HTTP client with rate limiting and retries.
func NewClient(opts ClientOptions, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 600
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.Retry.MaxBackoff <= 0 {
		opts.Retry.MaxBackoff = 30 * time.Second
	}
	rps := float64(opts.RequestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		retry:      opts.Retry,
		logger:     logger,
	}
}

// StatusError is returned when BDL answers with a non-200 status.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("BDL %s returned %d: %s", e.Path, e.Status, e.Body)
}

// paginatedResponse is the common BDL response wrapper.
type paginatedResponse struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		NextCursor *int `json:"next_cursor"`
	} `json:"meta"`
}

// get performs a rate-limited GET request to a BDL endpoint, retrying
// transport errors and retryable statuses.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*paginatedResponse, error) {
	delay := c.retry.Backoff
	var lastErr error

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying BDL request", "path", path, "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.retry.MaxBackoff {
				delay = c.retry.MaxBackoff
			}
		}

		result, err := c.getOnce(ctx, path, params)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !c.retry.retryable(statusErr.Status) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.retry.MaxRetries+1, lastErr)
}

func (c *Client) getOnce(ctx context.Context, path string, params url.Values) (*paginatedResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Path: path, Status: resp.StatusCode, Body: truncate(body, 200)}
	}

	var result paginatedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// each walks every page of a cursor-paginated endpoint, decoding each page's
// data array into a fresh []T and handing it to fn.
func each[T any](ctx context.Context, c *Client, path string, params url.Values, fn func([]T) error) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("per_page", "100")
	for {
		resp, err := c.get(ctx, path, params)
		if err != nil {
			return err
		}
		var page []T
		if err := json.Unmarshal(resp.Data, &page); err != nil {
			return fmt.Errorf("decode %s data: %w", path, err)
		}
		if err := fn(page); err != nil {
			return err
		}
		if resp.Meta.NextCursor == nil {
			return nil
		}
		params.Set("cursor", fmt.Sprintf("%d", *resp.Meta.NextCursor))
	}
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
