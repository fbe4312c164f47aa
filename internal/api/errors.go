package api

import (
	"context"
	"errors"
	"fmt"
)

// Common API errors that can be checked with errors.Is.
var (
	// ErrSessionExpired indicates the server rejected the session cookie (401).
	ErrSessionExpired = errors.New("session expired")
	// ErrRenewalFailed indicates the session could not be renewed.
	ErrRenewalFailed = errors.New("session renewal failed")
	// ErrUnauthorized matches any 401 response.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadRequest matches 400 responses.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Kind classifies a failed exchange.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors outside the taxonomy.
	KindUnknown Kind = iota
	// KindNetwork is a transport or connection failure with no response.
	KindNetwork
	// KindSessionExpired is a 401 from the application endpoints.
	KindSessionExpired
	// KindRenewalFailed means the renewal exchange itself failed.
	KindRenewalFailed
	// KindApplication is any other non-2xx response.
	KindApplication
	// KindValidation is caller input rejected before any network call.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindSessionExpired:
		return "session_expired"
	case KindRenewalFailed:
		return "renewal_failed"
	case KindApplication:
		return "application"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// APIError represents an HTTP error from the Linkly API.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	RequestID  string
	Err        error
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		if e.Message != "" {
			return fmt.Sprintf("API error %d: %s (request_id: %s)", e.StatusCode, e.Message, e.RequestID)
		}
		return fmt.Sprintf("API error %d (request_id: %s)", e.StatusCode, e.RequestID)
	}
	if e.Message != "" {
		if e.StatusCode == 0 {
			return e.Message
		}
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// LinklyError implements the LinklyError marker interface.
func (e *APIError) LinklyError() {}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.Kind {
	case KindSessionExpired:
		if target == ErrSessionExpired {
			return true
		}
	case KindRenewalFailed:
		if target == ErrRenewalFailed || target == ErrSessionExpired {
			return true
		}
	}
	switch e.StatusCode {
	case 400:
		return target == ErrBadRequest
	case 401:
		return target == ErrUnauthorized
	case 404:
		return target == ErrNotFound
	case 429:
		return target == ErrRateLimited
	}
	return false
}

// NetworkError represents a network-level failure.
type NetworkError struct {
	Err    error
	Method string
	URL    string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// LinklyError implements the LinklyError marker interface.
func (e *NetworkError) LinklyError() {}

// ValidationError reports caller input rejected before any request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LinklyError implements the LinklyError marker interface.
func (e *ValidationError) LinklyError() {}

// KindOf reports the taxonomy kind of err.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return KindValidation
	}
	return KindUnknown
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
