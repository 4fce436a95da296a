// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

// Package config loads server configuration from an optional YAML file
// overlaid with command-line flags.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/quorumqa/quorum/internal/auth"
	"github.com/quorumqa/quorum/internal/logging"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Token formats.
const (
	TokenOpaque = "opaque"
	TokenJWT    = "jwt"
)

// Environment fallbacks for secrets kept off the command line.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvJWTSecret   = "QUORUM_JWT_SECRET"
)

// Default values.
const (
	DefaultHTTPAddr    = ":8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
	DefaultLogLevel    = "info"
)

// Config is the complete server configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	API      APIConfig      `koanf:"api"`
	Store    StoreConfig    `koanf:"store"`
}

// DatabaseConfig locates PostgreSQL.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig selects log format and level.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// AuthConfig configures sessions and tokens.
type AuthConfig struct {
	SessionPolicy string `koanf:"session_policy"`
	TokenFormat   string `koanf:"token_format"`
	JWTSecret     string `koanf:"jwt_secret"`
}

// APIConfig configures the HTTP surface.
type APIConfig struct {
	LegacyStatusCodes bool `koanf:"legacy_status_codes"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `koanf:"driver"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		HTTP:    HTTPConfig{Addr: DefaultHTTPAddr},
		Metrics: MetricsConfig{Addr: DefaultMetricsAddr},
		Log:     LogConfig{Format: DefaultLogFormat, Level: DefaultLogLevel},
		Auth:    AuthConfig{SessionPolicy: auth.PolicyStrict.String(), TokenFormat: TokenOpaque},
		Store:   StoreConfig{Driver: DriverPostgres},
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"database-url":        "database.url",
	"http-addr":           "http.addr",
	"metrics-addr":        "metrics.addr",
	"log-format":          "log.format",
	"log-level":           "log.level",
	"session-policy":      "auth.session_policy",
	"token-format":        "auth.token_format",
	"legacy-status-codes": "api.legacy_status_codes",
	"store":               "store.driver",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("database-url", "", "PostgreSQL URL (default: $"+EnvDatabaseURL+")")
	fs.String("http-addr", d.HTTP.Addr, "API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.String("session-policy", d.Auth.SessionPolicy, "session liveness policy (strict or existence)")
	fs.String("token-format", d.Auth.TokenFormat, "access token format (opaque or jwt)")
	fs.Bool("legacy-status-codes", false, "answer every client error with 401")
	fs.String("store", d.Store.Driver, "persistence backend (postgres or memory)")
}

// Load reads path (if non-empty), then overlays flags from fs (if non-nil).
// A flag the user did not set only fills keys the file left empty. getenv
// supplies the DATABASE_URL and QUORUM_JWT_SECRET fallbacks.
func Load(path string, fs *pflag.FlagSet, getenv func(string) string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if getenv != nil {
		if cfg.Database.URL == "" {
			cfg.Database.URL = getenv(EnvDatabaseURL)
		}
		if cfg.Auth.JWTSecret == "" {
			cfg.Auth.JWTSecret = getenv(EnvJWTSecret)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return invalid("http.addr", "http.addr is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", "log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "%v", err)
	}
	if _, err := auth.ParsePolicy(c.Auth.SessionPolicy); err != nil {
		return invalid("auth.session_policy", "%v", err)
	}
	switch c.Auth.TokenFormat {
	case TokenOpaque:
	case TokenJWT:
		if len(c.Auth.JWTSecret) < auth.MinJWTSecretLength {
			return invalid("auth.jwt_secret", "auth.jwt_secret must be at least %d bytes for jwt tokens", auth.MinJWTSecretLength)
		}
	default:
		return invalid("auth.token_format", "auth.token_format must be 'opaque' or 'jwt', got %q", c.Auth.TokenFormat)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.URL == "" {
			return invalid("database.url", "database.url or %s is required for the postgres store", EnvDatabaseURL)
		}
	default:
		return invalid("store.driver", "store.driver must be 'postgres' or 'memory', got %q", c.Store.Driver)
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
}
