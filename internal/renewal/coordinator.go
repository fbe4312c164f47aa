package renewal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linkly/client-go/internal/api"
)

// DefaultTimeout bounds a single renewal exchange.
const DefaultTimeout = 10 * time.Second

// State is the renewal state of a Coordinator.
type State int32

const (
	// StateIdle means no renewal is in flight.
	StateIdle State = iota
	// StateRenewing means a renewal exchange or its flush is in progress.
	StateRenewing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRenewing:
		return "renewing"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Renewer performs one renewal exchange. *api.RenewalClient implements it.
type Renewer interface {
	Renew(ctx context.Context) error
}

// RenewerFunc adapts a function to the Renewer interface.
type RenewerFunc func(ctx context.Context) error

// Renew calls f(ctx).
func (f RenewerFunc) Renew(ctx context.Context) error {
	return f(ctx)
}

// Config configures a Coordinator.
type Config struct {
	// Renewer performs the renewal exchange (required).
	Renewer Renewer
	// Dispatcher replays waiting requests after a successful renewal (required).
	Dispatcher *Dispatcher
	// OnInvalid is called once per failed renewal cycle, before any waiter
	// of that cycle is resolved.
	OnInvalid func(err error)
	// Timeout bounds the renewal exchange. Default: 10 seconds.
	Timeout time.Duration
	// Logger receives cycle logs. Defaults to discarding.
	Logger *slog.Logger
	// Metrics is optional.
	Metrics *Metrics
}

// Coordinator guarantees that at most one renewal exchange is in flight.
// Requests that observe session expiry while a renewal is running wait for
// it, then are all replayed once or all failed with the same error.
//
// The renewal state and the pending queue are only touched under mu.
type Coordinator struct {
	renewer    Renewer
	dispatcher *Dispatcher
	onInvalid  func(error)
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *Metrics

	mu      sync.Mutex
	state   State
	pending pendingQueue

	renewals atomic.Int64
}

// NewCoordinator creates a coordinator in StateIdle.
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.Renewer == nil {
		return nil, errors.New("renewer is required")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Coordinator{
		renewer:    cfg.Renewer,
		dispatcher: cfg.Dispatcher,
		onInvalid:  cfg.OnInvalid,
		timeout:    timeout,
		logger:     logger,
		metrics:    metrics,
		state:      StateIdle,
	}, nil
}

// State returns the current renewal state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns the number of requests waiting on the current cycle.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.len()
}

// Renewals returns the number of renewal exchanges started so far.
func (c *Coordinator) Renewals() int64 {
	return c.renewals.Load()
}

// Recover waits for a renewal cycle on behalf of req, which failed with
// session expiry. The first caller while idle starts the cycle; later
// callers join it. On renewal success the result is req's replayed
// outcome; on failure it is the cycle's *api.APIError of KindRenewalFailed.
//
// If ctx ends while req is still queued, the waiter is withdrawn and
// ctx.Err() is returned. The renewal itself is not cancelled.
func (c *Coordinator) Recover(ctx context.Context, req *api.Request) (*api.Response, error) {
	if req.Retried() {
		return nil, &api.APIError{
			Kind:       api.KindSessionExpired,
			StatusCode: http.StatusUnauthorized,
		}
	}

	return c.wait(ctx, newWaiter(ctx, req))
}

// Renew waits for a renewal cycle without a request to replay. It joins the
// cycle in progress or starts one, so an explicit renewal never runs
// alongside an automatic one. A failed cycle invalidates the session once
// regardless of how many callers observed it.
func (c *Coordinator) Renew(ctx context.Context) error {
	_, err := c.wait(ctx, newWaiter(ctx, nil))
	return err
}

// wait enqueues w, starting a cycle when idle, and blocks until w is
// resolved or ctx ends.
func (c *Coordinator) wait(ctx context.Context, w *waiter) (*api.Response, error) {
	c.mu.Lock()
	c.pending.push(w)
	c.metrics.PendingRequests.Inc()
	start := c.state == StateIdle
	if start {
		c.state = StateRenewing
	}
	queued := c.pending.len()
	c.mu.Unlock()

	c.metrics.QueuedRequestsTotal.Inc()

	if start {
		c.renewals.Add(1)
		go c.run(context.WithoutCancel(ctx))
	} else {
		c.logger.DebugContext(ctx, "joined session renewal", "queued", queued)
	}

	select {
	case <-w.done:
		return w.resp, w.err
	case <-ctx.Done():
		c.withdraw(w)
		return nil, ctx.Err()
	}
}

// withdraw removes a cancelled waiter if it has not been drained yet.
func (c *Coordinator) withdraw(w *waiter) {
	c.mu.Lock()
	removed := c.pending.remove(w)
	if removed {
		c.metrics.PendingRequests.Dec()
	}
	c.mu.Unlock()

	if removed {
		w.resolve(nil, w.ctx.Err())
	}
}

// run performs one renewal cycle: a single renewal exchange followed by
// flushes until the queue is found empty, at which point the state returns
// to idle.
func (c *Coordinator) run(ctx context.Context) {
	c.logger.InfoContext(ctx, "session renewal started")

	renewCtx, cancel := context.WithTimeout(ctx, c.timeout)
	start := time.Now()
	err := c.renewer.Renew(renewCtx)
	cancel()

	c.metrics.RenewalDuration.Observe(time.Since(start).Seconds())
	c.metrics.RenewalsTotal.WithLabelValues(resultLabel(err)).Inc()

	if err != nil {
		err = asRenewalFailure(err)
		c.logger.WarnContext(ctx, "session renewal failed", "error", err, "duration", time.Since(start))
	} else {
		c.logger.InfoContext(ctx, "session renewed", "duration", time.Since(start))
	}

	invalidated := false
	for {
		c.mu.Lock()
		batch := c.pending.drain()
		if len(batch) == 0 {
			c.state = StateIdle
			c.mu.Unlock()
			return
		}
		c.metrics.PendingRequests.Sub(float64(len(batch)))
		c.mu.Unlock()

		if err != nil {
			if !invalidated {
				invalidated = true
				c.invalidate(ctx, err)
			}
			for _, w := range batch {
				w.resolve(nil, err)
			}
			continue
		}

		c.replay(batch)
	}
}

// replay retries every waiter of batch in parallel and resolves each with
// its own outcome. Waiters without a request are resolved at once.
func (c *Coordinator) replay(batch []*waiter) {
	var wg sync.WaitGroup
	for _, w := range batch {
		if w.req == nil {
			w.resolve(nil, nil)
			continue
		}
		wg.Add(1)
		go func(w *waiter) {
			defer wg.Done()
			resp, err := c.dispatcher.Retry(w.ctx, w.req)
			c.metrics.ReplaysTotal.WithLabelValues(resultLabel(err)).Inc()
			w.resolve(resp, err)
		}(w)
	}
	wg.Wait()
}

func (c *Coordinator) invalidate(ctx context.Context, err error) {
	c.metrics.SessionInvalidations.Inc()
	c.logger.WarnContext(ctx, "session invalid, sign-in required")
	if c.onInvalid != nil {
		c.onInvalid(err)
	}
}

// asRenewalFailure makes sure every waiter sees a KindRenewalFailed error
// even when the Renewer returns something else.
func asRenewalFailure(err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == api.KindRenewalFailed {
		return err
	}
	return &api.APIError{
		Kind:    api.KindRenewalFailed,
		Message: api.RenewalFailedMessage,
		Err:     err,
	}
}
