// Package openlibrary provides a client for the OpenLibrary search, works and
// authors APIs.
package openlibrary

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

// CatalogName identifies OpenLibrary in errors, logs and metrics.
const CatalogName = "openlibrary"

const (
	defaultBaseURL       = "https://openlibrary.org"
	defaultCoversURL     = "https://covers.openlibrary.org"
	defaultRatePerSecond = 3
	userAgent            = "bookreel (+https://github.com/lepinkainen/bookreel)"

	searchFields = "key,title,author_name,author_key,first_publish_year,cover_i,subject"
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is an OpenLibrary API client.
type Client struct {
	baseURL     string
	coversURL   string
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

// WithCoversURL sets a custom base URL for cover images.
func WithCoversURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.coversURL = strings.TrimSuffix(base, "/")
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

// NewClient creates a new OpenLibrary client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		coversURL:   defaultCoversURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		rateLimiter: ratelimit.New("OpenLibrary", defaultRatePerSecond),
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

func (q Query) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			v.Set(key, value)
		}
	}
	set("q", q.Text)
	set("title", q.Title)
	set("author", q.Author)
	set("subject", q.Subject)
	return v
}

// Search runs a search.json query.
func (c *Client) Search(ctx context.Context, q Query, limit int) ([]SearchDoc, error) {
	params := q.values()
	if len(params) == 0 {
		return nil, fmt.Errorf("openlibrary: empty search query")
	}
	if limit <= 0 {
		limit = 1
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)

	var response struct {
		NumFound int         `json:"numFound"`
		Docs     []SearchDoc `json:"docs"`
	}
	if err := c.getJSON(ctx, "/search.json", params, &response); err != nil {
		return nil, err
	}

	if len(response.Docs) > limit {
		response.Docs = response.Docs[:limit]
	}
	return response.Docs, nil
}

// Work fetches a work by key, e.g. "/works/OL45883W".
func (c *Client) Work(ctx context.Context, key string) (*Work, error) {
	if !strings.HasPrefix(key, "/works/") {
		return nil, apperrors.NewNotFoundError(CatalogName, key)
	}

	var work Work
	if err := c.getJSON(ctx, key+".json", nil, &work); err != nil {
		return nil, err
	}
	return &work, nil
}

// Author fetches an author by key, with or without the "/authors/" prefix.
func (c *Client) Author(ctx context.Context, key string) (*Author, error) {
	if !strings.HasPrefix(key, "/authors/") {
		key = "/authors/" + strings.TrimPrefix(key, "/")
	}

	var author Author
	if err := c.getJSON(ctx, key+".json", nil, &author); err != nil {
		return nil, err
	}
	return &author, nil
}

// CoverURL returns the large cover image URL for a cover id, or "" for none.
func (c *Client) CoverURL(coverID int) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, coverID)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, target any) error {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("OpenLibrary API request failed: %w", err)
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
