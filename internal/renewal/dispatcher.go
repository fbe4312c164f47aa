package renewal

import (
	"context"

	"github.com/linkly/client-go/internal/api"
)

// Sender performs a single exchange. *api.Transport implements it.
type Sender interface {
	Send(ctx context.Context, req *api.Request) (*api.Response, error)
}

// Dispatcher replays a request once after a successful renewal. It calls
// the transport directly, so the replay can never re-enter renewal.
type Dispatcher struct {
	sender Sender
}

// NewDispatcher creates a dispatcher sending through sender.
func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Retry marks req retried and sends it, returning the raw outcome.
func (d *Dispatcher) Retry(ctx context.Context, req *api.Request) (*api.Response, error) {
	req.MarkRetried()
	return d.sender.Send(ctx, req)
}
