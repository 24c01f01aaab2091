// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/pricofy/langbly-node/internal/credential"
)

// Config holds the settings shared by the Lambda, HTTP and CLI adapters.
type Config struct {
	Environment string
	LogLevel    string
	HTTPAddr    string
	Langbly     LangblyConfig
}

// LangblyConfig holds the Langbly API settings. APIKey is only a fallback
// for requests that carry no credential of their own.
type LangblyConfig struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
}

// Option customizes the loader.
type Option func(*viper.Viper)

var defaults = map[string]any{
	"ENVIRONMENT":             "dev",
	"LOG_LEVEL":               "info",
	"HTTP_ADDR":               ":8080",
	"LANGBLY_BASE_URL":        credential.DefaultBaseURL,
	"LANGBLY_API_KEY":         "",
	"LANGBLY_USER_AGENT":      "langbly-node/1.0.0",
	"LANGBLY_TIMEOUT_SECONDS": 30,
}

// WithDefaults overrides or adds default values before loading.
func WithDefaults(overrides map[string]any) Option {
	return func(v *viper.Viper) {
		for k, val := range overrides {
			v.SetDefault(k, val)
		}
	}
}

// Load reads the configuration from environment variables.
func Load(opts ...Option) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	for _, opt := range opts {
		opt(v)
	}

	timeout, err := cast.ToIntE(v.Get("LANGBLY_TIMEOUT_SECONDS"))
	if err != nil {
		return nil, fmt.Errorf("LANGBLY_TIMEOUT_SECONDS must be a number of seconds: %w", err)
	}

	cfg := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		Langbly: LangblyConfig{
			BaseURL:   strings.TrimRight(v.GetString("LANGBLY_BASE_URL"), "/"),
			APIKey:    v.GetString("LANGBLY_API_KEY"),
			UserAgent: v.GetString("LANGBLY_USER_AGENT"),
			Timeout:   time.Duration(timeout) * time.Second,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Langbly.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("LANGBLY_BASE_URL must be an absolute URL, got %q",
			cfg.Langbly.BaseURL)
	}
	if cfg.Langbly.Timeout < 0 {
		return fmt.Errorf("LANGBLY_TIMEOUT_SECONDS must not be negative")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not supported", cfg.LogLevel)
	}
	return nil
}
