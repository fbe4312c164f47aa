// Package config provides environment-based configuration for the linkly CLI
// and integration tests.
//
// Loads from .env file (godotenv), maps to Config struct via go-simpler/env struct tags.
// Validates the base URL and the rate limit settings.
package config
