package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker"
)

// RefreshPath is the session renewal endpoint.
const RefreshPath = "/user/refresh-token"

// RenewalFailedMessage is reported when the server gives no reason.
const RenewalFailedMessage = "session expired, please sign in again"

// RenewalClient is the bare transport used only for the renewal endpoint.
// It shares the session cookie jar with the application transport but is
// never routed through Classify or a renewal coordinator, so a 401 from the
// renewal endpoint cannot trigger another renewal.
type RenewalClient struct {
	transport *Transport
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

// NewRenewalClient creates a renewal client. cfg.Jar should be the same jar
// the application transport uses. breaker may be nil.
func NewRenewalClient(cfg Config, breaker *gobreaker.CircuitBreaker) (*RenewalClient, error) {
	t, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}
	return &RenewalClient{
		transport: t,
		breaker:   breaker,
		logger:    t.logger,
	}, nil
}

// Renew performs one renewal exchange.
func (c *RenewalClient) Renew(ctx context.Context) error {
	_, err := c.Refresh(ctx)
	return err
}

// RefreshUser performs one renewal exchange and returns the user echoed in
// the response, or nil when the response carries none.
func (c *RenewalClient) RefreshUser(ctx context.Context) (*User, error) {
	resp, err := c.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	var data userData
	if err := resp.Decode(&data); err != nil {
		c.logger.DebugContext(ctx, "renewal response carries no user", "error", err)
		return nil, nil
	}
	return data.User, nil
}

// Refresh performs one renewal exchange and returns the raw response. Only a
// 2xx envelope with success set to true counts as renewed; every failure is
// an *APIError of KindRenewalFailed.
func (c *RenewalClient) Refresh(ctx context.Context) (*Response, error) {
	if c.breaker == nil {
		return c.refresh(ctx)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.WarnContext(ctx, "session renewal short-circuited", "breaker", c.breaker.State().String())
			return nil, &APIError{Kind: KindRenewalFailed, Message: RenewalFailedMessage, Err: err}
		}
		return nil, err
	}
	return out.(*Response), nil
}

func (c *RenewalClient) refresh(ctx context.Context) (*Response, error) {
	req := &Request{Method: http.MethodPost, Path: RefreshPath}

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, renewalError(err)
	}

	var env Envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil || env.Success == nil || !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = RenewalFailedMessage
		}
		return nil, &APIError{
			Kind:       KindRenewalFailed,
			StatusCode: resp.StatusCode,
			Message:    msg,
			RequestID:  resp.RequestID,
		}
	}

	return resp, nil
}

func renewalError(err error) error {
	out := &APIError{Kind: KindRenewalFailed, Message: RenewalFailedMessage, Err: err}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		out.StatusCode = apiErr.StatusCode
		out.RequestID = apiErr.RequestID
		if apiErr.Message != "" {
			out.Message = apiErr.Message
		}
	}
	return out
}
