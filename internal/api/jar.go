package api

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// SessionJar is the cookie jar holding the server session. It is shared by
// the application transport and the renewal client, and can be reset when
// the session is known to be unrecoverable.
type SessionJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

// NewSessionJar creates an empty jar using the public suffix list for domain
// matching.
func NewSessionJar() *SessionJar {
	return &SessionJar{jar: newCookieJar()}
}

func newCookieJar() *cookiejar.Jar {
	// cookiejar.New never returns a non-nil error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

// SetCookies implements http.CookieJar.
func (j *SessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	jar := j.jar
	j.mu.RUnlock()
	jar.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (j *SessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	jar := j.jar
	j.mu.RUnlock()
	return jar.Cookies(u)
}

// Reset drops every stored cookie.
func (j *SessionJar) Reset() {
	j.mu.Lock()
	j.jar = newCookieJar()
	j.mu.Unlock()
}
