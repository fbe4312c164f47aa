package linkly

import (
	"context"
	"strings"

	"github.com/linkly/client-go/internal/api"
)

// User is a Linkly account.
type User = api.User

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateNewPassword(password); err != nil {
		return nil, err
	}

	user, err := c.apiClient.Register(ctx, strings.TrimSpace(name), email, password)
	if err != nil {
		return nil, err
	}

	c.signIn(user)
	c.logger.InfoContext(ctx, "registered", "user_id", user.ID)
	return c.CurrentUser(), nil
}

// Login signs in. The session cookie is kept by the client and renewed
// automatically.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	user, err := c.apiClient.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	c.signIn(user)
	c.logger.InfoContext(ctx, "signed in", "user_id", user.ID)
	return c.CurrentUser(), nil
}

// Logout ends the session. The local session is dropped even when the
// server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.checkClosed(); err != nil {
		return err
	}

	err := c.apiClient.Logout(ctx)
	c.clearSession()
	return err
}
