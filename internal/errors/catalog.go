package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError means a catalog has no record for the requested key.
type NotFoundError struct {
	Catalog string
	Key     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s not found", e.Catalog, e.Key)
}

// NewNotFoundError creates a NotFoundError for key in catalog
func NewNotFoundError(catalog, key string) *NotFoundError {
	return &NotFoundError{Catalog: catalog, Key: key}
}

// IsNotFoundError reports whether err is a NotFoundError (even when wrapped).
func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// CatalogError is a non-success HTTP response from a catalog API.
type CatalogError struct {
	Catalog    string
	StatusCode int
	Message    string
	Body       string // Response body excerpt if available
}

func (e *CatalogError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: %s (HTTP %d): %s", e.Catalog, e.Message, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Catalog, e.Message, e.StatusCode)
}

// Temporary reports whether retrying the request later may succeed.
func (e *CatalogError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// NewCatalogError creates a CatalogError with a message chosen by status code
func NewCatalogError(catalog string, statusCode int, body string) *CatalogError {
	var message string
	switch {
	case statusCode == http.StatusUnauthorized:
		message = "invalid or missing API credentials"
	case statusCode == http.StatusForbidden:
		message = "access forbidden - check API key"
	case statusCode >= http.StatusInternalServerError:
		message = "catalog unavailable"
	default:
		message = "unexpected response"
	}

	const maxBody = 200
	if len(body) > maxBody {
		body = body[:maxBody]
	}

	return &CatalogError{
		Catalog:    catalog,
		StatusCode: statusCode,
		Message:    message,
		Body:       body,
	}
}

// IsCatalogError checks if error is a CatalogError
func IsCatalogError(err error) bool {
	var catErr *CatalogError
	return errors.As(err, &catErr)
}

// MalformedResponseError means a catalog answered with a body that could not be decoded.
type MalformedResponseError struct {
	Catalog string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Catalog, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// NewMalformedResponseError wraps a decode error from catalog
func NewMalformedResponseError(catalog string, err error) *MalformedResponseError {
	return &MalformedResponseError{Catalog: catalog, Err: err}
}

// IsMalformedResponse reports whether err is a MalformedResponseError
func IsMalformedResponse(err error) bool {
	var mr *MalformedResponseError
	return errors.As(err, &mr)
}
