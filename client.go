package linkly

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/linkly/client-go/internal/api"
	"github.com/linkly/client-go/internal/renewal"
)

// Client is the Linkly API client. It is safe for concurrent use.
type Client struct {
	apiClient   *api.Client
	renewal     *api.RenewalClient
	coordinator *renewal.Coordinator
	jar         *api.SessionJar
	logger      *slog.Logger
	clock       clockwork.Clock

	signInURL string
	onInvalid func(SessionInvalidEvent)

	// Listeners for unrecoverable session failures
	subs *subscriptionManager

	// Coalesces concurrent RefreshSession calls
	refreshGroup singleflight.Group

	mu      sync.RWMutex
	session SessionInfo
	closed  bool
}

// New creates a new Linkly client. WithBaseURL is required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		timeout:        defaultTimeout,
		renewalTimeout: defaultRenewalTimeout,
		signInURL:      defaultSignInURL,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	return newClient(cfg, clockwork.NewRealClock())
}

// newClient wires the two transports, the coordinator and the session state.
// Both transports share one cookie jar; only the application transport is
// routed through the coordinator.
func newClient(cfg *clientConfig, clock clockwork.Clock) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	jar := api.NewSessionJar()

	transport, err := api.NewTransport(api.Config{
		BaseURL:    cfg.baseURL,
		HTTPClient: cfg.httpClient,
		Jar:        jar,
		Timeout:    cfg.timeout,
		Limiter:    newLimiter(cfg),
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	renewalClient, err := api.NewRenewalClient(api.Config{
		BaseURL:    cfg.baseURL,
		HTTPClient: cfg.httpClient,
		Jar:        jar,
		Timeout:    cfg.renewalTimeout,
		Logger:     logger,
	}, newRenewalBreaker(cfg, logger))
	if err != nil {
		return nil, err //coverage:ignore
	}

	c := &Client{
		renewal:   renewalClient,
		jar:       jar,
		logger:    logger,
		clock:     clock,
		signInURL: cfg.signInURL,
		onInvalid: cfg.onInvalid,
		subs:      newSubscriptionManager(),
	}

	coordinator, err := renewal.NewCoordinator(renewal.Config{
		Renewer:    renewal.RenewerFunc(c.renew),
		Dispatcher: renewal.NewDispatcher(transport),
		OnInvalid:  c.invalidate,
		Timeout:    cfg.renewalTimeout,
		Logger:     logger,
		Metrics:    renewal.NewMetrics(cfg.registerer),
	})
	if err != nil {
		return nil, err //coverage:ignore
	}

	c.coordinator = coordinator
	c.apiClient = api.NewClient(transport, coordinator)
	return c, nil
}

func newLimiter(cfg *clientConfig) *rate.Limiter {
	if cfg.rateLimit <= 0 {
		return nil
	}
	burst := cfg.rateBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.rateLimit), burst)
}

func newRenewalBreaker(cfg *clientConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	if cfg.breakerFailures == 0 {
		return nil
	}
	maxFailures := cfg.breakerFailures
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "linkly-renewal",
		Timeout: cfg.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("renewal breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// checkClosed returns ErrClientClosed if the client has been closed.
func (c *Client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Renewing reports whether a session renewal is currently in progress.
func (c *Client) Renewing() bool {
	return c.coordinator.State() == renewal.StateRenewing
}

// Close closes the client and releases resources. A renewal already in
// flight still completes for the requests waiting on it.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.apiClient.Transport().CloseIdleConnections()
	c.subs.clear()

	return nil
}

// renew performs the renewal exchange for the coordinator and records the
// refreshed session.
func (c *Client) renew(ctx context.Context) error {
	user, err := c.renewal.RefreshUser(ctx)
	if err != nil {
		return err
	}
	c.recordRenewal(user)
	return nil
}
