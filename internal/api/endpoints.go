package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Register creates an account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	req, err := NewRequest(http.MethodPost, "/user/register", registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	req.Fallback = "registration failed, please try again"
	req.Anonymous = true

	var result userData
	if err := c.DoJSON(ctx, req, &result); err != nil {
		return nil, err
	}
	if result.User == nil {
		return nil, fmt.Errorf("register: response contains no user")
	}
	return result.User, nil
}

// Login signs in and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	req, err := NewRequest(http.MethodPost, "/user/login", loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	req.StatusMessages = map[int]string{
		http.StatusBadRequest:   "please provide a valid email and password",
		http.StatusUnauthorized: "invalid email or password",
	}
	req.Fallback = "login failed, please try again"
	req.Anonymous = true

	var result userData
	if err := c.DoJSON(ctx, req, &result); err != nil {
		return nil, err
	}
	if result.User == nil {
		return nil, fmt.Errorf("login: response contains no user")
	}
	return result.User, nil
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	req, err := NewRequest(http.MethodPost, "/user/logout", nil)
	if err != nil {
		return err
	}
	req.Fallback = "logout failed"
	_, err = c.Do(ctx, req)
	return err
}

// Shorten creates a short URL for originalURL.
func (c *Client) Shorten(ctx context.Context, originalURL string) (*ShortenResult, error) {
	req, err := NewRequest(http.MethodPost, "/url/shorten", shortenRequest{OriginalURL: originalURL})
	if err != nil {
		return nil, err
	}
	req.StatusMessages = map[int]string{
		http.StatusBadRequest:   "please provide a valid URL",
		http.StatusUnauthorized: "please sign in to shorten URLs",
	}
	req.Fallback = "failed to shorten URL, please try again"

	var result ShortenResult
	if err := c.DoJSON(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MyURLs lists the signed-in user's short URLs.
func (c *Client) MyURLs(ctx context.Context) ([]URLItem, error) {
	req, err := NewRequest(http.MethodGet, "/url/my-urls", nil)
	if err != nil {
		return nil, err
	}
	req.StatusMessages = map[int]string{
		http.StatusUnauthorized: "please sign in to view your URLs",
	}
	req.Fallback = "failed to fetch URLs, please try again"

	var result []URLItem
	if err := c.DoJSON(ctx, req, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = []URLItem{}
	}
	return result, nil
}

// Resolve returns the redirect target of a short code without following it.
func (c *Client) Resolve(ctx context.Context, code string) (string, error) {
	req, err := NewRequest(http.MethodGet, "/url/"+url.PathEscape(code), nil)
	if err != nil {
		return "", err
	}
	req.NoRedirect = true
	req.Accept = func(status int) bool {
		return status == http.StatusMovedPermanently || status == http.StatusFound
	}
	req.StatusMessages = map[int]string{
		http.StatusNotFound: "short URL not found",
	}
	req.Fallback = "failed to resolve short URL"

	resp, err := c.Do(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Header.Get("Location"), nil
}
