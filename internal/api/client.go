package api

import (
	"context"
)

// Recoverer resolves a request that failed with session expiry, either by
// replaying it after a renewal or by failing it with a renewal error.
type Recoverer interface {
	Recover(ctx context.Context, req *Request) (*Response, error)
}

// Client is the authenticated application client. Every request goes
// through the transport and, on session expiry, through the Recoverer.
type Client struct {
	transport *Transport
	recoverer Recoverer
}

// NewClient creates an application client. recoverer may be nil, in which
// case session expiry is returned to the caller as is.
func NewClient(transport *Transport, recoverer Recoverer) *Client {
	return &Client{
		transport: transport,
		recoverer: recoverer,
	}
}

// Transport returns the underlying transport.
func (c *Client) Transport() *Transport {
	return c.transport
}

// Do sends req. A 401 on a fresh request is handed to the Recoverer; its
// outcome is normalized the same way as any other failure.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.transport.Send(ctx, req)
	if err == nil {
		return resp, nil
	}

	decision := Classify(err, req)
	if decision.Action == ActionProceed {
		return nil, decision.Err
	}
	if c.recoverer == nil {
		return nil, Normalize(err, req)
	}

	resp, err = c.recoverer.Recover(ctx, req)
	if err != nil {
		return nil, Normalize(err, req)
	}
	return resp, nil
}

// DoJSON sends req and decodes the envelope data into out.
func (c *Client) DoJSON(ctx context.Context, req *Request, out interface{}) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}
