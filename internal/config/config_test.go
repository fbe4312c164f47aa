package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LINKLY_BASE_URL", "https://api.linkly.test")
}

func TestLoad_RequiredVarSet(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.linkly.test", cfg.BaseURL)
}

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv("LINKLY_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, "LINKLY_BASE_URL is required", err.Error())
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 10*time.Second, cfg.RenewalTimeout)
	assert.Equal(t, "/login", cfg.SignInURL)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, 1, cfg.RateBurst)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.HasCredentials())
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LINKLY_TIMEOUT", "5s")
	t.Setenv("LINKLY_RENEWAL_TIMEOUT", "2s")
	t.Setenv("LINKLY_SIGN_IN_URL", "/signin")
	t.Setenv("LINKLY_RATE_LIMIT", "2.5")
	t.Setenv("LINKLY_RATE_BURST", "4")
	t.Setenv("LINKLY_EMAIL", "ann@example.com")
	t.Setenv("LINKLY_PASSWORD", "secret")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 2*time.Second, cfg.RenewalTimeout)
	assert.Equal(t, "/signin", cfg.SignInURL)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 4, cfg.RateBurst)
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"ftp base URL", "LINKLY_BASE_URL", "ftp://files.linkly.test", "must use http or https"},
		{"base URL without host", "LINKLY_BASE_URL", "https://", "must include a host"},
		{"relative base URL", "LINKLY_BASE_URL", "/api", "must use http or https"},
		{"zero timeout", "LINKLY_TIMEOUT", "0s", "LINKLY_TIMEOUT must be positive"},
		{"negative renewal timeout", "LINKLY_RENEWAL_TIMEOUT", "-1s", "LINKLY_RENEWAL_TIMEOUT must be positive"},
		{"negative rate", "LINKLY_RATE_LIMIT", "-1", "must not be negative"},
		{"malformed duration", "LINKLY_TIMEOUT", "soon", "failed to load environment variables"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RateBurstRequiredWhenLimiting(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LINKLY_RATE_LIMIT", "1")
	t.Setenv("LINKLY_RATE_BURST", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LINKLY_RATE_BURST must be at least 1")
}
