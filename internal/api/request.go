package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
)

// Request is a single application call. It is created per call site
// invocation and only ever mutated to mark it retried.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte

	// Anonymous marks calls that do not rely on the session, such as login.
	// A 401 on them means bad credentials and never triggers renewal.
	Anonymous bool

	// NoRedirect disables automatic redirect following.
	NoRedirect bool
	// Accept, when set, decides which statuses count as success instead of 2xx.
	Accept func(status int) bool

	// StatusMessages maps HTTP statuses to the caller's error text when the
	// server supplies none.
	StatusMessages map[int]string
	// Fallback is the caller's generic error text.
	Fallback string

	retried atomic.Bool
}

// NewRequest creates a request with an optional JSON body.
func NewRequest(method, path string, body interface{}) (*Request, error) {
	req := &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.Body = data
	}
	return req, nil
}

// Retried reports whether the request has already been replayed once.
func (r *Request) Retried() bool {
	return r.retried.Load()
}

// MarkRetried flags the request as replayed. It returns false if it was
// already flagged.
func (r *Request) MarkRetried() bool {
	return r.retried.CompareAndSwap(false, true)
}

func (r *Request) accepts(status int) bool {
	if r.Accept != nil {
		return r.Accept(status)
	}
	return status >= 200 && status < 300
}

// Response is a successful exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Envelope is the response wrapper used by every Linkly endpoint.
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the envelope data into out. A missing data field leaves
// out untouched.
func (r *Response) Decode(out interface{}) error {
	if out == nil || len(r.Body) == 0 {
		return nil
	}
	var env Envelope
	if err := json.Unmarshal(r.Body, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
