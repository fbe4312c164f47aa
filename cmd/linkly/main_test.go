package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	linkly "github.com/linkly/client-go"
	"github.com/linkly/client-go/internal/config"
)

type mockClient struct {
	registerFn func(ctx context.Context, name, email, password string) (*linkly.User, error)
	loginFn    func(ctx context.Context, email, password string) (*linkly.User, error)
	logoutFn   func(ctx context.Context) error
	refreshFn  func(ctx context.Context) (*linkly.User, error)
	shortenFn  func(ctx context.Context, originalURL string) (*linkly.ShortenResult, error)
	myURLsFn   func(ctx context.Context) ([]linkly.URLItem, error)
	resolveFn  func(ctx context.Context, code string) (string, error)

	loggedIn bool
	closed   bool
}

func (m *mockClient) Register(ctx context.Context, name, email, password string) (*linkly.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockClient) Login(ctx context.Context, email, password string) (*linkly.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	m.loggedIn = true
	return &linkly.User{ID: "u1", Name: "Ann", Email: email}, nil
}

func (m *mockClient) Logout(ctx context.Context) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx)
	}
	return nil
}

func (m *mockClient) RefreshSession(ctx context.Context) (*linkly.User, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockClient) Shorten(ctx context.Context, originalURL string) (*linkly.ShortenResult, error) {
	if m.shortenFn != nil {
		return m.shortenFn(ctx, originalURL)
	}
	return nil, errors.New("not implemented")
}

func (m *mockClient) MyURLs(ctx context.Context) ([]linkly.URLItem, error) {
	if m.myURLsFn != nil {
		return m.myURLsFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockClient) Resolve(ctx context.Context, code string) (string, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, code)
	}
	return "", errors.New("not implemented")
}

func (m *mockClient) Close() error {
	m.closed = true
	return nil
}

type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }

var testConfig = &config.Config{
	BaseURL:  "https://api.linkly.test",
	Email:    "ann@example.com",
	Password: "Secret1",
}

// withMocks replaces the config loader and client factory for one test.
func withMocks(t *testing.T, appCfg *config.Config, client *mockClient) {
	t.Helper()

	originalLoad, originalFactory := loadConfig, clientFactory
	t.Cleanup(func() {
		loadConfig, clientFactory = originalLoad, originalFactory
	})

	loadConfig = func() (*config.Config, error) { return appCfg, nil }
	clientFactory = func(*config.Config, io.Writer) (ClientInterface, error) { return client, nil }
}

func runWith(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	err := run(append([]string{"linkly"}, args...), &Config{Stdout: &stdout, Stderr: &bytes.Buffer{}})
	return stdout.String(), err
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, os.Stdout, cfg.Stdout)
	assert.Equal(t, os.Stderr, cfg.Stderr)
}

func TestClientInterface_Implemented(t *testing.T) {
	var _ ClientInterface = (*linkly.Client)(nil)
}

func TestRun_NoArgs(t *testing.T) {
	_, err := runWith(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage")
}

func TestRun_ConfigError(t *testing.T) {
	originalLoad := loadConfig
	defer func() { loadConfig = originalLoad }()
	loadConfig = func() (*config.Config, error) { return nil, errors.New("LINKLY_BASE_URL is required") }

	_, err := runWith(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRun_ClientFactoryError(t *testing.T) {
	withMocks(t, testConfig, nil)
	clientFactory = func(*config.Config, io.Writer) (ClientInterface, error) {
		return nil, errors.New("factory error")
	}

	_, err := runWith(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create client")
}

func TestRun_UnknownCommand(t *testing.T) {
	client := &mockClient{}
	withMocks(t, testConfig, client)

	_, err := runWith(t, "unknown-command")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
	assert.True(t, client.closed)
}

func TestRun_MissingArguments(t *testing.T) {
	withMocks(t, testConfig, &mockClient{})

	for _, args := range [][]string{{"register", "Ann"}, {"shorten"}, {"resolve"}} {
		_, err := runWith(t, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "usage: linkly "+args[0])
	}
}

func TestRun_Register(t *testing.T) {
	client := &mockClient{
		registerFn: func(_ context.Context, name, email, password string) (*linkly.User, error) {
			assert.Equal(t, "Ann", name)
			assert.Equal(t, "ann@example.com", email)
			assert.Equal(t, "Secret1", password)
			return &linkly.User{ID: "u1", Name: name, Email: email}, nil
		},
	}
	withMocks(t, testConfig, client)

	out, err := runWith(t, "register", "Ann", "ann@example.com", "Secret1")
	require.NoError(t, err)

	var user linkly.User
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	assert.Equal(t, "u1", user.ID)
	assert.False(t, client.loggedIn)
}

func TestRun_Login(t *testing.T) {
	client := &mockClient{}
	withMocks(t, testConfig, client)

	out, err := runWith(t, "login")
	require.NoError(t, err)

	assert.True(t, client.loggedIn)
	assert.Contains(t, out, `"email":"ann@example.com"`)
}

func TestRun_LoginFailureUsesDisplayMessage(t *testing.T) {
	client := &mockClient{
		loginFn: func(context.Context, string, string) (*linkly.User, error) {
			return nil, &linkly.APIError{Kind: linkly.KindApplication, StatusCode: 401, Message: "invalid email or password"}
		},
	}
	withMocks(t, testConfig, client)

	_, err := runWith(t, "list")
	require.Error(t, err)
	assert.Equal(t, "login: invalid email or password", err.Error())
}

func TestRun_SessionCommandsRequireCredentials(t *testing.T) {
	withMocks(t, &config.Config{BaseURL: "https://api.linkly.test"}, &mockClient{})

	for _, cmd := range []string{"login", "refresh", "logout", "list"} {
		_, err := runWith(t, cmd)
		assert.ErrorIs(t, err, errMissingCredentials, cmd)
	}
	_, err := runWith(t, "shorten", "https://example.com")
	assert.ErrorIs(t, err, errMissingCredentials)
}

func TestRun_Refresh(t *testing.T) {
	client := &mockClient{
		refreshFn: func(context.Context) (*linkly.User, error) {
			return &linkly.User{ID: "u1"}, nil
		},
	}
	withMocks(t, testConfig, client)

	out, err := runWith(t, "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, `"id":"u1"`)
}

func TestRun_RefreshFailure(t *testing.T) {
	client := &mockClient{
		refreshFn: func(context.Context) (*linkly.User, error) {
			return nil, &linkly.APIError{Kind: linkly.KindRenewalFailed, Message: "session expired, please sign in again"}
		},
	}
	withMocks(t, testConfig, client)

	_, err := runWith(t, "refresh")
	require.Error(t, err)
	assert.Equal(t, "refresh: session expired, please sign in again", err.Error())
}

func TestRun_Logout(t *testing.T) {
	withMocks(t, testConfig, &mockClient{})

	out, err := runWith(t, "logout")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, out)
}

func TestRun_Shorten(t *testing.T) {
	client := &mockClient{
		shortenFn: func(_ context.Context, originalURL string) (*linkly.ShortenResult, error) {
			return &linkly.ShortenResult{OriginalURL: originalURL, ShortCode: "abc123"}, nil
		},
	}
	withMocks(t, testConfig, client)

	out, err := runWith(t, "shorten", "https://example.com/long")
	require.NoError(t, err)
	assert.Contains(t, out, `"shortCode":"abc123"`)
	assert.True(t, client.loggedIn)
}

func TestRun_List(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	client := &mockClient{
		myURLsFn: func(context.Context) ([]linkly.URLItem, error) {
			return []linkly.URLItem{{ShortCode: "abc123", ClickCount: 4, CreatedAt: created}}, nil
		},
	}
	withMocks(t, testConfig, client)

	out, err := runWith(t, "list")
	require.NoError(t, err)

	var output struct {
		URLs []URLOutput `json:"urls"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &output))
	require.Len(t, output.URLs, 1)
	assert.Equal(t, 4, output.URLs[0].Clicks)
	assert.Equal(t, "2026-01-02T03:04:05Z", output.URLs[0].CreatedAt)
}

func TestRun_ListError(t *testing.T) {
	client := &mockClient{
		myURLsFn: func(context.Context) ([]linkly.URLItem, error) {
			return nil, &linkly.APIError{Kind: linkly.KindRenewalFailed, Message: "refresh token expired"}
		},
	}
	withMocks(t, testConfig, client)

	_, err := runWith(t, "list")
	require.Error(t, err)
	assert.Equal(t, "list: refresh token expired", err.Error())
}

func TestRun_Resolve(t *testing.T) {
	client := &mockClient{
		resolveFn: func(_ context.Context, code string) (string, error) {
			return "https://example.com/" + code, nil
		},
	}
	withMocks(t, &config.Config{BaseURL: "https://api.linkly.test"}, client)

	out, err := runWith(t, "resolve", "abc123")
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"abc123","location":"https://example.com/abc123"}`, out)
	assert.False(t, client.loggedIn)
}

func TestConvertURLs_Empty(t *testing.T) {
	result := convertURLs(nil)

	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestConvertURLs_ZeroCreatedAtOmitted(t *testing.T) {
	result := convertURLs([]linkly.URLItem{{ShortCode: "x"}})

	data, err := json.Marshal(result[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "createdAt")
}

func TestWriteJSON_Error(t *testing.T) {
	err := writeJSON(errorWriter{}, map[string]string{"a": "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode output")
}

func TestClientFactory_BuildsClient(t *testing.T) {
	var stderr bytes.Buffer
	cfg := &config.Config{
		BaseURL:        "https://api.linkly.test",
		Timeout:        time.Second,
		RenewalTimeout: time.Second,
		SignInURL:      "/login",
		RateLimit:      5,
		RateBurst:      1,
		LogLevel:       "info",
		LogFormat:      "text",
	}

	client, err := clientFactory(cfg, &stderr)
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

func TestFatal(t *testing.T) {
	originalExitFunc := exitFunc
	defer func() { exitFunc = originalExitFunc }()

	var exitCode int
	exitFunc = func(code int) {
		exitCode = code
	}

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fatal("error %d: %s", 42, "something went wrong")

	w.Close()
	os.Stderr = oldStderr
	var buf bytes.Buffer
	buf.ReadFrom(r)

	assert.Equal(t, 1, exitCode)
	assert.Equal(t, "error 42: something went wrong\n", buf.String())
	assert.False(t, strings.HasSuffix(buf.String(), "\n\n"))
}
