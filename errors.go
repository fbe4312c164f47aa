package linkly

import (
	"errors"

	"github.com/linkly/client-go/internal/api"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingBaseURL is returned when no base URL is provided.
	ErrMissingBaseURL = errors.New("base URL is required")

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")

	// ErrSessionExpired matches requests rejected because the session expired,
	// including those whose renewal failed.
	ErrSessionExpired = api.ErrSessionExpired

	// ErrRenewalFailed is returned when the session could not be renewed and
	// the user must sign in again.
	ErrRenewalFailed = api.ErrRenewalFailed

	// ErrUnauthorized matches any 401 response.
	ErrUnauthorized = api.ErrUnauthorized

	// ErrBadRequest matches 400 responses.
	ErrBadRequest = api.ErrBadRequest

	// ErrNotFound matches 404 responses.
	ErrNotFound = api.ErrNotFound

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = api.ErrRateLimited
)

// LinklyError is implemented by all SDK errors.
type LinklyError interface {
	error
	LinklyError() // marker method
}

// APIError represents an HTTP error from the Linkly API. Message is always
// suitable for display.
type APIError = api.APIError

// NetworkError represents a network-level failure.
type NetworkError = api.NetworkError

// ValidationError reports input rejected before any request was sent.
type ValidationError = api.ValidationError

// ErrorKind classifies SDK errors.
type ErrorKind = api.Kind

// Error kinds reported by KindOf.
const (
	KindUnknown        = api.KindUnknown
	KindNetwork        = api.KindNetwork
	KindSessionExpired = api.KindSessionExpired
	KindRenewalFailed  = api.KindRenewalFailed
	KindApplication    = api.KindApplication
	KindValidation     = api.KindValidation
)

// KindOf reports the kind of err, or KindUnknown for errors outside the SDK.
func KindOf(err error) ErrorKind {
	return api.KindOf(err)
}

// Message returns the display message of err: the API message for SDK
// errors, err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Error()
	}
	return err.Error()
}
