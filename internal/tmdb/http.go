package tmdb

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	apperrors "github.com/lepinkainen/bookreel/internal/errors"
)

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, target any) error {
	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		if err := c.doJSONRequest(ctx, path, params, target); err != nil {
			lastErr = err
			if !isRetryable(err) || attempt == c.retryAttempts {
				return err
			}
			slog.Debug("Retrying TMDB request", "path", path, "attempt", attempt, "error", err)
			if err := sleepContext(ctx, c.backoff(attempt)); err != nil {
				return err
			}
			continue
		}
		return nil
	}
	return lastErr
}

func (c *Client) doJSONRequest(ctx context.Context, path string, params url.Values, target any) error {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	if c.readToken == "" && c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.readToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.readToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
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

func isRetryable(err error) bool {
	return apperrors.IsTemporary(err)
}

func backoffDelay(attempt int) time.Duration {
	// exponential backoff capped at 10 seconds
	delay := time.Duration(1<<uint(attempt-1)) * time.Second
	if delay > 10*time.Second {
		return 10 * time.Second
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("tmdb: retry aborted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
