package domain

import (
	"errors"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown connector or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Generated summaries and LLM tagging are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrCycle indicates a parent link would make a document its own ancestor.
	ErrCycle = errors.New("hierarchy cycle")

	// Authentication Errors.

	// ErrAuthRequired indicates the connector requires authentication but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the authentication has expired and refresh failed.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// Connector Errors.

	// ErrConnectorValidation indicates connector validation failed.
	// The source is misconfigured or credentials are invalid.
	ErrConnectorValidation = errors.New("connector validation failed")

	// ErrConnectorClosed indicates the connector has been closed.
	ErrConnectorClosed = errors.New("connector closed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// NotionNLPError is the base error for failures surfaced by the library.
// Op names the failing operation, Message describes it and Err holds the cause.
type NotionNLPError struct {
	Op      string
	Message string
	Err     error
}

// NewError creates a NotionNLPError.
func NewError(op, message string, err error) *NotionNLPError {
	return &NotionNLPError{Op: op, Message: message, Err: err}
}

// Error implements the error interface.
func (e *NotionNLPError) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return "notion-nlp error"
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause.
func (e *NotionNLPError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports a rejected or missing credential.
// It is also a NotionNLPError: errors.As with a *NotionNLPError target
// yields the embedded base error.
type AuthenticationError struct {
	NotionNLPError

	// StatusCode is the HTTP status returned by the API, 0 if none.
	StatusCode int
}

// NewAuthenticationError creates an AuthenticationError.
func NewAuthenticationError(op string, statusCode int, err error) *AuthenticationError {
	return &AuthenticationError{
		NotionNLPError: NotionNLPError{
			Op:      op,
			Message: "authentication failed",
			Err:     err,
		},
		StatusCode: statusCode,
	}
}

// As lets errors.As match a *NotionNLPError target.
func (e *AuthenticationError) As(target any) bool {
	if t, ok := target.(**NotionNLPError); ok {
		*t = &e.NotionNLPError
		return true
	}
	return false
}

// Is reports ErrAuthInvalid as a match so callers can test with errors.Is.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthInvalid
}

// IsAuthenticationError reports whether err is, or wraps, an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}
