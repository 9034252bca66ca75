package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Debug    bool   `env:"DEBUG" envDefault:"false"`
	Version  string `env:"VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	SentryDSN       string `env:"SENTRY_DSN"`
	MongoDBURI      string `env:"MONGODB_URI"`
	MongoDBDatabase string `env:"MONGODB_DATABASE"`

	// TelegramAPIURL is the Bot API server; the token path segment is appended by the client.
	TelegramAPIURL string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	// PublicBaseURL and AssetPath root local media paths into fetchable URLs.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	AssetPath     string `env:"ASSET_PATH" envDefault:"uploads"`

	HTTPPort             int           `env:"HTTP_PORT" envDefault:"8080"`
	MediaFetchTimeout    time.Duration `env:"MEDIA_FETCH_TIMEOUT" envDefault:"30s"`
	MediaMaxBytes        int           `env:"MEDIA_MAX_BYTES" envDefault:"52428800"`
	CollectRatePerSecond int           `env:"COLLECT_RATE_PER_SECOND" envDefault:"20"`
	DefaultLanguage      string        `env:"DEFAULT_LANGUAGE" envDefault:"pt-BR"`
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present but prioritizes
// actual environment variables set in the system (e.g., by Docker).
func LoadConfig() (*Config, []string, error) {
	var warnings []string
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, "no .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, warnings, fmt.Errorf("failed to parse environment: %w", err)
	}
	more, err := cfg.Validate()
	return cfg, append(warnings, more...), err
}

// Validate checks required values and normalizes URLs. Non-fatal problems
// are returned as warnings.
func (c *Config) Validate() ([]string, error) {
	var warnings []string

	if c.MongoDBURI == "" {
		return nil, errors.New("MONGODB_URI is required")
	}
	if c.MongoDBDatabase == "" {
		return nil, errors.New("MONGODB_DATABASE is required")
	}
	if c.SentryDSN == "" {
		warnings = append(warnings, "SENTRY_DSN is not set, error tracking disabled")
	}

	if _, err := url.ParseRequestURI(c.TelegramAPIURL); err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_API_URL: %w", err)
	}
	c.TelegramAPIURL = strings.TrimRight(c.TelegramAPIURL, "/")

	if c.PublicBaseURL == "" {
		warnings = append(warnings, "PUBLIC_BASE_URL is not set, local media paths cannot be published")
	} else {
		u, err := url.Parse(c.PublicBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid PUBLIC_BASE_URL %q", c.PublicBaseURL)
		}
		c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	}
	c.AssetPath = strings.Trim(c.AssetPath, "/")

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	if c.MediaMaxBytes <= 0 {
		return nil, fmt.Errorf("MEDIA_MAX_BYTES must be positive, got %d", c.MediaMaxBytes)
	}
	if c.CollectRatePerSecond <= 0 {
		warnings = append(warnings, "COLLECT_RATE_PER_SECOND must be positive, using 1")
		c.CollectRatePerSecond = 1
	}

	return warnings, nil
}
