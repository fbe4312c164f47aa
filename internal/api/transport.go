package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/linkly/client-go/internal/logging"
)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
)

// RequestIDHeader carries the per-exchange request identifier.
const RequestIDHeader = "X-Request-ID"

// Config holds transport configuration.
type Config struct {
	// BaseURL is the API base URL (required). Relative request paths are
	// resolved against it.
	BaseURL string

	// HTTPClient is an optional custom HTTP client. It is copied; the copy
	// gets Jar attached when it has none.
	HTTPClient *http.Client

	// Jar holds the session cookie. Defaults to a new SessionJar.
	Jar http.CookieJar

	// Timeout is the per-exchange timeout when HTTPClient is nil.
	// Default: 30 seconds.
	Timeout time.Duration

	// Limiter optionally throttles outgoing exchanges.
	Limiter *rate.Limiter

	// Logger receives debug logs for each exchange.
	Logger *slog.Logger
}

// Transport performs single HTTP exchanges against the base URL. It never
// retries and is safe for concurrent use.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	noRedirect *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewTransport creates a transport from cfg.
func NewTransport(cfg Config) (*Transport, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	jar := cfg.Jar
	if jar == nil {
		jar = NewSessionJar()
	}

	var httpClient http.Client
	if cfg.HTTPClient != nil {
		httpClient = *cfg.HTTPClient
	} else {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient.Timeout = timeout
	}
	if httpClient.Jar == nil {
		httpClient.Jar = jar
	}

	noRedirect := httpClient
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Transport{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &httpClient,
		noRedirect: &noRedirect,
		limiter:    cfg.Limiter,
		logger:     logger,
	}, nil
}

// BaseURL returns the configured base URL without a trailing slash.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// CloseIdleConnections releases pooled connections.
func (t *Transport) CloseIdleConnections() {
	t.httpClient.CloseIdleConnections()
}

// Send executes req once and maps the result into a Response or a classified
// failure: *APIError for non-accepted statuses, *NetworkError when no
// response was received.
func (t *Transport) Send(ctx context.Context, req *Request) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	url := t.baseURL + req.Path
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for key, values := range req.Header {
		httpReq.Header[key] = values
	}
	httpReq.Header.Set(RequestIDHeader, requestID)

	client := t.httpClient
	if req.NoRedirect {
		client = t.noRedirect
	}

	ctx = logging.WithRequestID(ctx, requestID)
	start := time.Now()

	resp, err := client.Do(httpReq)
	if err != nil {
		t.logger.DebugContext(ctx, "request failed",
			"method", req.Method, "path", req.Path, "retried", req.Retried(), "error", err)
		return nil, &NetworkError{Err: err, Method: req.Method, URL: url}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response body: %w", err), Method: req.Method, URL: url}
	}

	t.logger.DebugContext(ctx, "request completed",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"retried", req.Retried(),
		"duration", time.Since(start))

	if !req.accepts(resp.StatusCode) {
		return nil, parseErrorResponse(resp.StatusCode, body, requestID)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		RequestID:  requestID,
	}, nil
}

func parseErrorResponse(status int, body []byte, requestID string) error {
	kind := KindApplication
	if status == http.StatusUnauthorized {
		kind = KindSessionExpired
	}

	var env Envelope
	var message string
	if err := json.Unmarshal(body, &env); err == nil {
		message = env.Message
	}

	return &APIError{
		Kind:       kind,
		StatusCode: status,
		Message:    message,
		RequestID:  requestID,
	}
}
