package linkly

import (
	"context"
	"time"
)

// SessionInfo describes the locally known session. The session cookie
// itself is never exposed.
type SessionInfo struct {
	User       *User
	SignedInAt time.Time
	// RenewedAt is the time of the last successful renewal, zero if none.
	RenewedAt time.Time
}

// SignedIn reports whether a user is signed in.
func (s SessionInfo) SignedIn() bool {
	return s.User != nil
}

// Session returns a copy of the current session state.
func (c *Client) Session() SessionInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := c.session
	if info.User != nil {
		user := *info.User
		info.User = &user
	}
	return info
}

// CurrentUser returns the signed-in user, or nil when signed out.
func (c *Client) CurrentUser() *User {
	return c.Session().User
}

// OnSessionInvalid registers fn to be called each time the session becomes
// unrecoverable. It returns a function that removes the listener.
func (c *Client) OnSessionInvalid(fn func(SessionInvalidEvent)) func() {
	return c.subs.subscribe(fn)
}

// RefreshSession renews the session explicitly and returns the signed-in
// user. It joins an automatic renewal already in progress instead of
// starting a second exchange, and concurrent calls share one wait. A failed
// renewal drops the session and notifies the session-invalid listeners once.
func (c *Client) RefreshSession(ctx context.Context) (*User, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	ch := c.refreshGroup.DoChan("refresh", func() (interface{}, error) {
		if err := c.coordinator.Renew(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		return c.CurrentUser(), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		user, _ := res.Val.(*User)
		return user, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// signIn stores user as the signed-in user.
func (c *Client) signIn(user *User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = SessionInfo{
		User:       user,
		SignedInAt: c.clock.Now(),
	}
}

// recordRenewal stamps a successful renewal. A user echoed by the server
// replaces the cached one.
func (c *Client) recordRenewal(user *User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if user != nil {
		if c.session.User == nil {
			c.session.SignedInAt = now
		}
		c.session.User = user
	}
	c.session.RenewedAt = now
}

// clearSession drops the cached user and every stored cookie.
func (c *Client) clearSession() {
	c.jar.Reset()

	c.mu.Lock()
	c.session = SessionInfo{}
	c.mu.Unlock()
}

// invalidate is the terminal path of a failed renewal: the session is
// dropped and the handler and listeners are told to send the user to
// sign-in.
func (c *Client) invalidate(err error) {
	c.clearSession()

	c.logger.Warn("session invalid, sign-in required", "sign_in_url", c.signInURL, "error", err)

	ev := SessionInvalidEvent{SignInURL: c.signInURL, Err: err}
	if c.onInvalid != nil {
		c.onInvalid(ev)
	}
	c.subs.notify(ev)
}
