package linkly

import (
	"context"

	"github.com/linkly/client-go/internal/api"
)

// URLItem is a short URL owned by the signed-in user.
type URLItem = api.URLItem

// ShortenResult is the outcome of Shorten.
type ShortenResult = api.ShortenResult

// Shorten creates a short URL for originalURL. It requires a session.
func (c *Client) Shorten(ctx context.Context, originalURL string) (*ShortenResult, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if err := validateURL(originalURL); err != nil {
		return nil, err
	}
	return c.apiClient.Shorten(ctx, originalURL)
}

// MyURLs lists the signed-in user's short URLs. The result is never nil.
func (c *Client) MyURLs(ctx context.Context) ([]URLItem, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	return c.apiClient.MyURLs(ctx)
}

// Resolve returns the original URL a short code redirects to, without
// following the redirect.
func (c *Client) Resolve(ctx context.Context, code string) (string, error) {
	if err := c.checkClosed(); err != nil {
		return "", err
	}
	if err := validateShortCode(code); err != nil {
		return "", err
	}
	return c.apiClient.Resolve(ctx, code)
}
