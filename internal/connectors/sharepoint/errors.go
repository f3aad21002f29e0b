package sharepoint

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/voltfolio/evisync/internal/core/domain"
)

// APIError represents a Graph API error response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sharepoint: API error %d %s: %s (URL: %s)", e.StatusCode, e.Code, e.Message, e.URL)
}

// Is maps API status codes onto the domain sentinels so callers outside the
// connector can classify failures with errors.Is alone.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case domain.ErrAlreadyExists:
		return e.StatusCode == http.StatusConflict
	case domain.ErrPermission:
		return e.StatusCode == http.StatusForbidden
	case domain.ErrAuthExpired:
		return e.StatusCode == http.StatusUnauthorized
	case domain.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// TransferError indicates a chunked transfer failed permanently: either the
// per-chunk retry budget was exhausted or the store returned a non-retryable
// status. The partial remote object, if any, is left in place.
type TransferError struct {
	Offset int64
	Total  int64
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("sharepoint: transfer failed at offset %d of %d: %v", e.Offset, e.Total, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates the remote object does not exist.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsConflict checks if the error indicates a name collision. The store
// reports these as 409 with code nameAlreadyExists.
func IsConflict(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusConflict ||
			strings.EqualFold(apiErr.Code, "nameAlreadyExists")
	}
	return false
}

// IsPermission checks if the error indicates the caller is not authorized.
// Retrying will not change authorization.
func IsPermission(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsAuthExpired checks if the error indicates the bearer token was rejected.
func IsAuthExpired(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsRateLimited checks if the error indicates the remote store throttled
// the request.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsTransient reports whether an error is worth retrying. It matches HTTP
// 429 and 503 via the typed status code, falling back to a substring match on
// the message since error shapes vary by transport.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests ||
			apiErr.StatusCode == http.StatusServiceUnavailable
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "503")
}
