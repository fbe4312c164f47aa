package linkly

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultSignInURL      = "/login"
	defaultRenewalTimeout = 10 * time.Second
	defaultTimeout        = 30 * time.Second
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL        string
	httpClient     *http.Client
	timeout        time.Duration
	renewalTimeout time.Duration
	logger         *slog.Logger
	signInURL      string
	onInvalid      func(SessionInvalidEvent)

	// Client-side rate limiting
	rateLimit float64
	rateBurst int

	// Renewal circuit breaker
	breakerFailures uint32
	breakerTimeout  time.Duration

	registerer prometheus.Registerer
}

// Option configures the client.
type Option func(*clientConfig)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client. It is copied; the client's own
// cookie jar is attached to the copy.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
// Default: 30 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRenewalTimeout bounds a single session renewal exchange. Requests
// waiting on a renewal fail with ErrRenewalFailed once it elapses.
// Default: 10 seconds
func WithRenewalTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.renewalTimeout = timeout
	}
}

// WithLogger sets the structured logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithRateLimit throttles outgoing application requests to limit per second
// with the given burst. Renewal exchanges are not throttled.
// Default: unlimited
func WithRateLimit(limit float64, burst int) Option {
	return func(c *clientConfig) {
		c.rateLimit = limit
		c.rateBurst = burst
	}
}

// WithRenewalBreaker makes renewal fail fast after maxFailures consecutive
// failed renewals, for openTimeout, instead of contacting the server.
// Default: disabled
func WithRenewalBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(c *clientConfig) {
		c.breakerFailures = maxFailures
		c.breakerTimeout = openTimeout
	}
}

// WithMetricsRegisterer registers the session renewal metrics on reg.
// Clients given the same reg report into the same collectors.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.registerer = reg
	}
}

// WithSignInURL sets the sign-in location reported to session-invalid
// listeners.
// Default: "/login"
func WithSignInURL(url string) Option {
	return func(c *clientConfig) {
		c.signInURL = url
	}
}

// WithSessionInvalidHandler sets a handler called once each time the
// session becomes unrecoverable. It runs before the failed requests return.
func WithSessionInvalidHandler(fn func(SessionInvalidEvent)) Option {
	return func(c *clientConfig) {
		c.onInvalid = fn
	}
}
