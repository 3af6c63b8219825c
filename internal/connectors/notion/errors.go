package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// Notion-specific errors.
var (
	// ErrInvalidCursor indicates the cursor format is invalid.
	ErrInvalidCursor = errors.New("notion: invalid cursor format")

	// ErrInvalidConfig indicates a source config value could not be parsed.
	ErrInvalidConfig = errors.New("notion: invalid config")
)

// APIError represents a Notion API error response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("notion: API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the status code to a domain sentinel.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthInvalid
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return nil
	}
}

// IsNotFound checks if the error indicates a page or block was not found
// or is not shared with the integration.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an invalid token.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized || domain.IsAuthenticationError(err)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return statusOf(err) == http.StatusTooManyRequests
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// wrapError converts notionapi errors to library errors: 401 becomes an
// AuthenticationError, other API errors a NotionNLPError around an
// APIError. Context errors are returned unchanged.
func wrapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var nErr *notionapi.Error
	if !errors.As(err, &nErr) {
		return domain.NewError(op, "request failed", err)
	}

	apiErr := &APIError{
		StatusCode: nErr.Status,
		Code:       string(nErr.Code),
		Message:    nErr.Message,
	}
	if apiErr.StatusCode == 0 {
		apiErr.StatusCode = statusForCode(apiErr.Code)
	}

	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return domain.NewAuthenticationError(op, apiErr.StatusCode, apiErr)
	case http.StatusForbidden:
		return domain.NewError(op, "access denied", apiErr)
	case http.StatusNotFound:
		return domain.NewError(op, "not found", apiErr)
	case http.StatusTooManyRequests:
		return domain.NewError(op, "rate limited", apiErr)
	default:
		return domain.NewError(op, "request failed", apiErr)
	}
}

// statusForCode fills in the status for error bodies that omit it.
func statusForCode(code string) int {
	switch code {
	case "unauthorized":
		return http.StatusUnauthorized
	case "restricted_resource":
		return http.StatusForbidden
	case "object_not_found":
		return http.StatusNotFound
	case "rate_limited":
		return http.StatusTooManyRequests
	default:
		return 0
	}
}
