// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumqa/quorum/internal/config"
	"github.com/quorumqa/quorum/pkg/errutil"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "config file path")
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quorum.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", flags(t, "--store", "memory"), env(nil))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultHTTPAddr, cfg.HTTP.Addr)
	assert.Equal(t, config.DefaultMetricsAddr, cfg.Metrics.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "strict", cfg.Auth.SessionPolicy)
	assert.Equal(t, config.TokenOpaque, cfg.Auth.TokenFormat)
	assert.False(t, cfg.API.LegacyStatusCodes)
}

func TestLoad_FileThenFlags(t *testing.T) {
	path := writeFile(t, strings.Join([]string{
		"database:",
		"  url: postgres://file/db",
		"http:",
		"  addr: ':9000'",
		"log:",
		"  format: text",
		"auth:",
		"  session_policy: existence",
		"api:",
		"  legacy_status_codes: true",
	}, "\n"))

	cfg, err := config.Load(path, flags(t, "--http-addr", ":7000"), env(nil))
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/db", cfg.Database.URL)
	assert.Equal(t, ":7000", cfg.HTTP.Addr, "explicit flag wins over file")
	assert.Equal(t, "text", cfg.Log.Format, "file wins over flag default")
	assert.Equal(t, "existence", cfg.Auth.SessionPolicy)
	assert.True(t, cfg.API.LegacyStatusCodes)
}

func TestLoad_EnvironmentFallbacks(t *testing.T) {
	secret := strings.Repeat("k", 32)
	cfg, err := config.Load("", flags(t, "--token-format", "jwt"), env(map[string]string{
		config.EnvDatabaseURL: "postgres://env/db",
		config.EnvJWTSecret:   secret,
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.Equal(t, secret, cfg.Auth.JWTSecret)

	cfg, err = config.Load("", flags(t, "--database-url", "postgres://flag/db"), env(map[string]string{
		config.EnvDatabaseURL: "postgres://env/db",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag/db", cfg.Database.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil, nil)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		c := config.Default()
		c.Store.Driver = config.DriverMemory
		return c
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		key    string
	}{
		{"empty http addr", func(c *config.Config) { c.HTTP.Addr = "" }, "http.addr"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad policy", func(c *config.Config) { c.Auth.SessionPolicy = "lenient" }, "auth.session_policy"},
		{"bad token format", func(c *config.Config) { c.Auth.TokenFormat = "paseto" }, "auth.token_format"},
		{"short jwt secret", func(c *config.Config) {
			c.Auth.TokenFormat = config.TokenJWT
			c.Auth.JWTSecret = "short"
		}, "auth.jwt_secret"},
		{"bad driver", func(c *config.Config) { c.Store.Driver = "sqlite" }, "store.driver"},
		{"postgres without url", func(c *config.Config) { c.Store.Driver = config.DriverPostgres }, "database.url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
			errutil.AssertErrorContext(t, err, "key", tt.key)
		})
	}

	c := valid()
	assert.NoError(t, c.Validate())
}
