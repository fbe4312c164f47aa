package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	BaseURL        string        `env:"LINKLY_BASE_URL"`
	Timeout        time.Duration `env:"LINKLY_TIMEOUT" default:"30s"`
	RenewalTimeout time.Duration `env:"LINKLY_RENEWAL_TIMEOUT" default:"10s"`
	SignInURL      string        `env:"LINKLY_SIGN_IN_URL" default:"/login"`

	// RateLimit is requests per second; 0 disables client-side limiting.
	RateLimit float64 `env:"LINKLY_RATE_LIMIT" default:"0"`
	RateBurst int     `env:"LINKLY_RATE_BURST" default:"1"`

	Email    string `env:"LINKLY_EMAIL"`
	Password string `env:"LINKLY_PASSWORD"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// HasCredentials reports whether both LINKLY_EMAIL and LINKLY_PASSWORD are set.
func (c *Config) HasCredentials() bool {
	return c.Email != "" && c.Password != ""
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.BaseURL == "" {
		return errors.New("LINKLY_BASE_URL is required")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("LINKLY_BASE_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("LINKLY_BASE_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("LINKLY_BASE_URL must include a host")
	}

	if cfg.Timeout <= 0 {
		return errors.New("LINKLY_TIMEOUT must be positive")
	}
	if cfg.RenewalTimeout <= 0 {
		return errors.New("LINKLY_RENEWAL_TIMEOUT must be positive")
	}
	if cfg.RateLimit < 0 {
		return errors.New("LINKLY_RATE_LIMIT must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateBurst < 1 {
		return fmt.Errorf("LINKLY_RATE_BURST must be at least 1 when rate limiting, got %d", cfg.RateBurst)
	}

	return nil
}
