// Command linkly is a small command-line front end for the Linkly API.
//
// Usage:
//
//	linkly register <name> <email> <password>
//	linkly login
//	linkly refresh
//	linkly logout
//	linkly shorten <url>
//	linkly list
//	linkly resolve <code>
//
// Configuration is read from the environment (and .env): LINKLY_BASE_URL is
// required; commands that need a session sign in with LINKLY_EMAIL and
// LINKLY_PASSWORD first. Results are written to stdout as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	linkly "github.com/linkly/client-go"
	"github.com/linkly/client-go/internal/config"
	"github.com/linkly/client-go/internal/logging"
)

const commandTimeout = 60 * time.Second

const usage = "usage: linkly <register|login|refresh|logout|shorten|list|resolve> [args]"

// Config holds the process I/O.
type Config struct {
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() *Config {
	return &Config{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// ClientInterface is the part of *linkly.Client the commands use.
type ClientInterface interface {
	Register(ctx context.Context, name, email, password string) (*linkly.User, error)
	Login(ctx context.Context, email, password string) (*linkly.User, error)
	Logout(ctx context.Context) error
	RefreshSession(ctx context.Context) (*linkly.User, error)
	Shorten(ctx context.Context, originalURL string) (*linkly.ShortenResult, error)
	MyURLs(ctx context.Context) ([]linkly.URLItem, error)
	Resolve(ctx context.Context, code string) (string, error)
	Close() error
}

var (
	loadConfig = config.Load

	clientFactory = func(cfg *config.Config, stderr io.Writer) (ClientInterface, error) {
		opts := []linkly.Option{
			linkly.WithBaseURL(cfg.BaseURL),
			linkly.WithTimeout(cfg.Timeout),
			linkly.WithRenewalTimeout(cfg.RenewalTimeout),
			linkly.WithSignInURL(cfg.SignInURL),
			linkly.WithLogger(logging.New(cfg.LogLevel, cfg.LogFormat, stderr)),
			linkly.WithSessionInvalidHandler(func(ev linkly.SessionInvalidEvent) {
				fmt.Fprintf(stderr, "session expired, sign in again at %s\n", ev.SignInURL)
			}),
		}
		if cfg.RateLimit > 0 {
			opts = append(opts, linkly.WithRateLimit(cfg.RateLimit, cfg.RateBurst))
		}
		return linkly.New(opts...)
	}

	exitFunc = os.Exit
)

// errMissingCredentials is returned by commands that need a session when
// LINKLY_EMAIL or LINKLY_PASSWORD is unset.
var errMissingCredentials = errors.New("LINKLY_EMAIL and LINKLY_PASSWORD are required for this command")

// URLOutput is one entry of the list command output.
type URLOutput struct {
	ShortCode   string `json:"shortCode"`
	ShortURL    string `json:"shortUrl"`
	OriginalURL string `json:"originalUrl"`
	Clicks      int    `json:"clicks"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

func run(args []string, cfg *Config) error {
	if len(args) < 2 {
		return errors.New(usage)
	}

	appCfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	client, err := clientFactory(appCfg, cfg.Stderr)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer client.Close()

	switch args[1] {
	case "register":
		if len(args) < 5 {
			return errors.New("usage: linkly register <name> <email> <password>")
		}
		return runRegister(ctx, client, cfg, args[2], args[3], args[4])
	case "login":
		return runLogin(ctx, client, appCfg, cfg)
	case "refresh":
		return runRefresh(ctx, client, appCfg, cfg)
	case "logout":
		return runLogout(ctx, client, appCfg, cfg)
	case "shorten":
		if len(args) < 3 {
			return errors.New("usage: linkly shorten <url>")
		}
		return runShorten(ctx, client, appCfg, cfg, args[2])
	case "list":
		return runList(ctx, client, appCfg, cfg)
	case "resolve":
		if len(args) < 3 {
			return errors.New("usage: linkly resolve <code>")
		}
		return runResolve(ctx, client, cfg, args[2])
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func signIn(ctx context.Context, client ClientInterface, appCfg *config.Config) (*linkly.User, error) {
	if !appCfg.HasCredentials() {
		return nil, errMissingCredentials
	}
	user, err := client.Login(ctx, appCfg.Email, appCfg.Password)
	if err != nil {
		return nil, fmt.Errorf("login: %s", linkly.Message(err))
	}
	return user, nil
}

func runRegister(ctx context.Context, client ClientInterface, cfg *Config, name, email, password string) error {
	user, err := client.Register(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("register: %s", linkly.Message(err))
	}
	return writeJSON(cfg.Stdout, user)
}

func runLogin(ctx context.Context, client ClientInterface, appCfg *config.Config, cfg *Config) error {
	user, err := signIn(ctx, client, appCfg)
	if err != nil {
		return err
	}
	return writeJSON(cfg.Stdout, user)
}

func runRefresh(ctx context.Context, client ClientInterface, appCfg *config.Config, cfg *Config) error {
	if _, err := signIn(ctx, client, appCfg); err != nil {
		return err
	}
	user, err := client.RefreshSession(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %s", linkly.Message(err))
	}
	return writeJSON(cfg.Stdout, user)
}

func runLogout(ctx context.Context, client ClientInterface, appCfg *config.Config, cfg *Config) error {
	if _, err := signIn(ctx, client, appCfg); err != nil {
		return err
	}
	if err := client.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %s", linkly.Message(err))
	}
	return writeJSON(cfg.Stdout, map[string]bool{"success": true})
}

func runShorten(ctx context.Context, client ClientInterface, appCfg *config.Config, cfg *Config, originalURL string) error {
	if _, err := signIn(ctx, client, appCfg); err != nil {
		return err
	}
	result, err := client.Shorten(ctx, originalURL)
	if err != nil {
		return fmt.Errorf("shorten: %s", linkly.Message(err))
	}
	return writeJSON(cfg.Stdout, result)
}

func runList(ctx context.Context, client ClientInterface, appCfg *config.Config, cfg *Config) error {
	if _, err := signIn(ctx, client, appCfg); err != nil {
		return err
	}
	urls, err := client.MyURLs(ctx)
	if err != nil {
		return fmt.Errorf("list: %s", linkly.Message(err))
	}

	output := struct {
		URLs []URLOutput `json:"urls"`
	}{
		URLs: convertURLs(urls),
	}
	return writeJSON(cfg.Stdout, output)
}

func runResolve(ctx context.Context, client ClientInterface, cfg *Config, code string) error {
	target, err := client.Resolve(ctx, code)
	if err != nil {
		return fmt.Errorf("resolve: %s", linkly.Message(err))
	}
	return writeJSON(cfg.Stdout, map[string]string{"code": code, "location": target})
}

func convertURLs(urls []linkly.URLItem) []URLOutput {
	result := make([]URLOutput, 0, len(urls))
	for _, u := range urls {
		out := URLOutput{
			ShortCode:   u.ShortCode,
			ShortURL:    u.ShortURL,
			OriginalURL: u.OriginalURL,
			Clicks:      u.ClickCount,
		}
		if !u.CreatedAt.IsZero() {
			out.CreatedAt = u.CreatedAt.Format(time.RFC3339)
		}
		result = append(result, out)
	}
	return result
}

func writeJSON(w io.Writer, v any) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	exitFunc(1)
}
