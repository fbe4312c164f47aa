package api

import (
	"errors"
	"net/http"
)

// Action is the classifier's verdict on a failed exchange.
type Action int

const (
	// ActionProceed returns Decision.Err to the caller.
	ActionProceed Action = iota
	// ActionRenew hands the request to the renewal coordinator.
	ActionRenew
)

func (a Action) String() string {
	if a == ActionRenew {
		return "renew"
	}
	return "proceed"
}

// Decision is the result of classifying a failed exchange.
type Decision struct {
	Action Action
	// Err is the normalized error when Action is ActionProceed.
	Err error
}

// GenericFailureMessage is used when neither the server nor the call site
// supplies an error text.
const GenericFailureMessage = "request failed, please try again"

// defaultStatusMessages maps well-known statuses to domain messages.
var defaultStatusMessages = map[int]string{
	http.StatusBadRequest:      "invalid input",
	http.StatusUnauthorized:    "invalid credentials",
	http.StatusNotFound:        "not found",
	http.StatusTooManyRequests: "rate limit exceeded",
}

// Classify decides whether err, produced by sending req, should trigger a
// session renewal. Only a 401 on a session request that has not been
// retried does; everything else proceeds with a normalized error.
func Classify(err error, req *Request) Decision {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized &&
		apiErr.Kind == KindSessionExpired && !req.Anonymous && !req.Retried() {
		return Decision{Action: ActionRenew}
	}
	return Decision{Action: ActionProceed, Err: Normalize(err, req)}
}

// Normalize fills in the best available message for err. Validation,
// renewal and context errors pass through untouched.
func Normalize(err error, req *Request) error {
	if err == nil {
		return nil
	}
	if isContextErr(err) {
		return err
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Kind == KindRenewalFailed {
		return err
	}

	normalized := *apiErr
	if normalized.Kind == KindSessionExpired && req != nil && req.Anonymous {
		normalized.Kind = KindApplication
	}
	if normalized.Message == "" {
		normalized.Message = messageFor(apiErr.StatusCode, req)
	}
	return &normalized
}

func messageFor(status int, req *Request) string {
	if req != nil {
		if msg, ok := req.StatusMessages[status]; ok {
			return msg
		}
	}
	if msg, ok := defaultStatusMessages[status]; ok {
		return msg
	}
	if req != nil && req.Fallback != "" {
		return req.Fallback
	}
	return GenericFailureMessage
}
