package linkly

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const accessCookie = "accessToken"

// fakeServer is an in-memory Linkly API. Access tokens are opaque cookie
// values; expire() invalidates every issued token.
type fakeServer struct {
	*httptest.Server

	mu        sync.Mutex
	valid     map[string]bool
	nextID    int
	failNext  bool // refresh answers 401
	rejectAll bool // application endpoints answer 401 regardless of cookie
	rawReply  string // refresh answers 200 with this body when set
	gate      chan struct{}

	refreshCalls atomic.Int32
	unauthorized atomic.Int32
	urlRequests  atomic.Int32
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	s := &fakeServer{valid: make(map[string]bool)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/register", s.handleSignIn)
	mux.HandleFunc("POST /user/login", s.handleLogin)
	mux.HandleFunc("POST /user/logout", s.handleLogout)
	mux.HandleFunc("POST /user/refresh-token", s.handleRefresh)
	mux.HandleFunc("POST /url/shorten", s.authenticated(s.handleShorten))
	mux.HandleFunc("GET /url/my-urls", s.authenticated(s.handleMyURLs))
	mux.HandleFunc("GET /url/{code}", s.handleResolve)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(func() {
		s.release()
		s.Close()
	})
	return s
}

func (s *fakeServer) issue(w http.ResponseWriter) {
	s.mu.Lock()
	s.nextID++
	token := fmt.Sprintf("tok-%d", s.nextID)
	s.valid[token] = true
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: accessCookie, Value: token, Path: "/", HttpOnly: true})
}

// expire invalidates every issued access token.
func (s *fakeServer) expire() {
	s.mu.Lock()
	s.valid = make(map[string]bool)
	s.mu.Unlock()
}

// hold makes refresh requests block until release is called.
func (s *fakeServer) hold() {
	s.mu.Lock()
	s.gate = make(chan struct{})
	s.mu.Unlock()
}

func (s *fakeServer) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
}

func (s *fakeServer) setFailRefresh(fail bool) {
	s.mu.Lock()
	s.failNext = fail
	s.mu.Unlock()
}

// setRefreshReply makes refresh answer 200 with body and no new cookie.
func (s *fakeServer) setRefreshReply(body string) {
	s.mu.Lock()
	s.rawReply = body
	s.mu.Unlock()
}

func (s *fakeServer) setRejectAll(reject bool) {
	s.mu.Lock()
	s.rejectAll = reject
	s.mu.Unlock()
}

func reply(w http.ResponseWriter, status int, success bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{"success": success, "message": message}
	if data != nil {
		body["data"] = data
	}
	json.NewEncoder(w).Encode(body)
}

var testUser = User{ID: "u1", Name: "Ann Example", Email: "ann@example.com"}

func (s *fakeServer) handleSignIn(w http.ResponseWriter, r *http.Request) {
	s.issue(w)
	reply(w, http.StatusCreated, true, "registered", map[string]interface{}{"user": testUser})
}

func (s *fakeServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		reply(w, http.StatusBadRequest, false, "", nil)
		return
	}
	if body.Password != "Secret1" {
		reply(w, http.StatusUnauthorized, false, "", nil)
		return
	}
	s.issue(w)
	reply(w, http.StatusOK, true, "", map[string]interface{}{"user": testUser})
}

func (s *fakeServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: accessCookie, Value: "", Path: "/", MaxAge: -1})
	reply(w, http.StatusOK, true, "logged out", nil)
}

func (s *fakeServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	s.mu.Lock()
	gate := s.gate
	fail := s.failNext
	raw := s.rawReply
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if raw != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(raw))
		return
	}
	if fail {
		reply(w, http.StatusUnauthorized, false, "refresh token expired", nil)
		return
	}
	s.issue(w)
	reply(w, http.StatusOK, true, "refreshed", map[string]interface{}{"user": testUser})
}

func (s *fakeServer) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.urlRequests.Add(1)

		c, err := r.Cookie(accessCookie)
		s.mu.Lock()
		ok := err == nil && s.valid[c.Value] && !s.rejectAll
		s.mu.Unlock()

		if !ok {
			s.unauthorized.Add(1)
			reply(w, http.StatusUnauthorized, false, "", nil)
			return
		}
		next(w, r)
	}
}

func (s *fakeServer) handleShorten(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OriginalURL string `json:"originalUrl"`
	}
	json.NewDecoder(r.Body).Decode(&body)
	reply(w, http.StatusCreated, true, "", ShortenResult{
		OriginalURL: body.OriginalURL,
		ShortURL:    s.URL + "/url/abc123",
		ShortCode:   "abc123",
	})
}

func (s *fakeServer) handleMyURLs(w http.ResponseWriter, r *http.Request) {
	reply(w, http.StatusOK, true, "", []URLItem{{
		ID:          "1",
		OriginalURL: "https://example.com/long",
		ShortURL:    s.URL + "/url/abc123",
		ShortCode:   "abc123",
		ClickCount:  7,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}})
}

func (s *fakeServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("code") != "abc123" {
		reply(w, http.StatusNotFound, false, "", nil)
		return
	}
	http.Redirect(w, r, "https://example.com/long", http.StatusFound)
}

var testEpoch = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

// newTestClient creates a client against s with a fake clock.
func newTestClient(t *testing.T, s *fakeServer, opts ...Option) (*Client, *clockwork.FakeClock) {
	t.Helper()

	cfg := &clientConfig{
		baseURL:        s.URL,
		timeout:        5 * time.Second,
		renewalTimeout: 5 * time.Second,
		signInURL:      defaultSignInURL,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	clock := clockwork.NewFakeClockAt(testEpoch)
	c, err := newClient(cfg, clock)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, clock
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
