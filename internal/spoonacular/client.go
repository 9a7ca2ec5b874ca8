// Package spoonacular is a minimal client for the Spoonacular recipe search API.
package spoonacular

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/asteroid-belt/pantry/pkg/version"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://api.spoonacular.com"

	// DefaultRateLimit is requests per minute.
	DefaultRateLimit = 60

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 15 * time.Second

	searchPath = "/recipes/complexSearch"

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 4 << 10
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("spoonacular: status %d", e.StatusCode)
	}
	return fmt.Sprintf("spoonacular: status %d: %s", e.StatusCode, e.Message)
}

// ErrMissingAPIKey is returned by Search when no API key is configured.
var ErrMissingAPIKey = errors.New("spoonacular: api key not configured")

// Client calls the recipe search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at another API root (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRateLimit sets requests per minute. Zero or less disables limiting.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		logger:     slog.Default(),
	}
	WithRateLimit(DefaultRateLimit)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search fetches one page of recipes with full recipe information.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL, err := url.Parse(c.baseURL + searchPath)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := reqURL.Query()
	q.Set("query", p.Query)
	q.Set("number", strconv.Itoa(p.Number))
	q.Set("offset", strconv.Itoa(p.Offset))
	q.Set("apiKey", c.apiKey)
	q.Set("addRecipeInformation", "true")
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("recipe search request failed",
			slog.String("error", err.Error()),
			slog.Int("offset", p.Offset),
		)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
		c.logger.Warn("recipe search returned error status",
			slog.Int("http_status", resp.StatusCode),
			slog.String("message", statusErr.Message),
		)
		return nil, statusErr
	}

	var out SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	c.logger.Debug("recipe search completed",
		slog.Int("offset", p.Offset),
		slog.Int("results", len(out.Results)),
		slog.Int("total", out.TotalResults),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &out, nil
}

// readErrorMessage extracts the API's error message, falling back to the raw body.
func readErrorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(body) == 0 {
		return ""
	}
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return strings.TrimSpace(string(body))
}
