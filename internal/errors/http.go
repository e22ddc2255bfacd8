package errors

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// FromResponse maps a non-2xx catalog response onto the typed errors.
// It returns nil for success statuses; key names the requested resource.
func FromResponse(catalog, key string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return NewNotFoundError(catalog, key)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewRateLimitErrorWithRetry(catalog+": rate limited", retryAfter(resp.Header.Get("Retry-After")))
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return NewCatalogError(catalog, resp.StatusCode, strings.TrimSpace(string(body)))
}

// IsTemporary reports whether a failed catalog request may succeed when retried:
// timeouts, connection errors, 5xx responses and rate limiting.
func IsTemporary(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		// Network errors (connection resets etc.)
		if strings.Contains(urlErr.Error(), "connection") {
			return true
		}
	}

	var catErr *CatalogError
	if errors.As(err, &catErr) {
		return catErr.Temporary()
	}
	return IsRateLimitError(err)
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
