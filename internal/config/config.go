// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

// Package config loads service configuration from defaults, an optional
// YAML file, DECKFORGE_* environment variables, and command-line flags,
// in that order of precedence (later wins).
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// envPrefix is the prefix for environment variable overrides.
// DECKFORGE_DATABASE_URL maps to the "database.url" key.
const envPrefix = "DECKFORGE_"

// Config holds the full service configuration.
type Config struct {
	// ListenAddr is the address the JSON API listens on.
	ListenAddr string

	// MetricsAddr is the metrics/health HTTP address. Empty disables
	// the observability server.
	MetricsAddr string

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// JWTSecret signs and verifies access tokens. Required.
	JWTSecret string

	// LogFormat is "json" or "text".
	LogFormat string

	// LogLevel is "debug", "info", "warn", or "error".
	LogLevel string
}

// defaults returns the baseline configuration values.
func defaults() map[string]any {
	return map[string]any{
		"listen.addr":     "127.0.0.1:8080",
		"metrics.addr":    "127.0.0.1:9100",
		"database.url":    "",
		"auth.jwt_secret": "",
		"log.format":      "json",
		"log.level":       "info",
	}
}

// Load builds a Config from defaults, an optional YAML file, the
// environment, and an optional flag set. path may be empty; flags may
// be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	// DECKFORGE_DATABASE_URL -> database.url
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		key := strings.TrimPrefix(s, envPrefix)
		return strings.Replace(strings.ToLower(key), "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := &Config{
		ListenAddr:  k.String("listen.addr"),
		MetricsAddr: k.String("metrics.addr"),
		DatabaseURL: k.String("database.url"),
		JWTSecret:   k.String("auth.jwt_secret"),
		LogFormat:   k.String("log.format"),
		LogLevel:    k.String("log.level"),
	}

	return cfg, nil
}

// Validate checks that the configuration can run the server.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen.addr is required")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required (set DECKFORGE_DATABASE_URL)")
	}
	if c.JWTSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("auth.jwt_secret is required (set DECKFORGE_AUTH_JWT_SECRET)")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be 'json' or 'text', got %q", c.LogFormat)
	}
	return nil
}
