// Package googlebooks provides a client for the Google Books volumes API.
package googlebooks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	apperrors "github.com/lepinkainen/bookreel/internal/errors"
	"github.com/lepinkainen/bookreel/internal/ratelimit"
)

// CatalogName identifies Google Books in errors, logs and metrics.
const CatalogName = "googlebooks"

const (
	defaultBaseURL       = "https://www.googleapis.com/books/v1"
	defaultRatePerSecond = 5
	maxResultsLimit      = 40
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a Google Books API client. The API key is optional.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h HTTPDoer) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.rateLimiter = limiter
		}
	}
}

// NewClient creates a new Google Books client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		rateLimiter: ratelimit.New("Google Books", defaultRatePerSecond),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query selects what Search matches on. Empty fields are ignored.
type Query struct {
	Text    string
	Title   string
	Author  string
	Subject string
}

// String renders the query in Google Books search syntax,
// e.g. `dune intitle:dune inauthor:"frank herbert"`.
func (q Query) String() string {
	var parts []string
	add := func(prefix, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		if prefix != "" && strings.ContainsAny(value, " \t") {
			value = strconv.Quote(value)
		}
		parts = append(parts, prefix+value)
	}
	add("", q.Text)
	add("intitle:", q.Title)
	add("inauthor:", q.Author)
	add("subject:", q.Subject)
	return strings.Join(parts, " ")
}

// Search queries /volumes.
func (c *Client) Search(ctx context.Context, q Query, limit int) ([]Volume, error) {
	query := q.String()
	if query == "" {
		return nil, fmt.Errorf("googlebooks: empty search query")
	}
	limit = min(max(limit, 1), maxResultsLimit)

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("printType", "books")

	var response struct {
		TotalItems int      `json:"totalItems"`
		Items      []Volume `json:"items"`
	}
	if err := c.getJSON(ctx, "/volumes", params, &response); err != nil {
		return nil, err
	}

	if len(response.Items) > limit {
		response.Items = response.Items[:limit]
	}
	return response.Items, nil
}

// Volume fetches a single volume by id.
func (c *Client) Volume(ctx context.Context, id string) (*Volume, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewNotFoundError(CatalogName, id)
	}

	var volume Volume
	if err := c.getJSON(ctx, "/volumes/"+url.PathEscape(id), nil, &volume); err != nil {
		return nil, err
	}
	return &volume, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, target any) error {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := apperrors.FromResponse(CatalogName, path, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperrors.NewMalformedResponseError(CatalogName, err)
	}
	return nil
}
