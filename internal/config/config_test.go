package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "escrowd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfigFile(t, `
listen_addr: ":9090"
admin_address: "addr-admin"
jwt_secret: "secret"
rate_limit_per_second: 5
rate_limit_burst: 10
allowed_origins:
  - "https://example.com"
log_level: debug
log_format: text
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "addr-admin", cfg.AdminAddress)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, 5, cfg.RateLimitPerSecond)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, []string{"https://example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadFromPathKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
admin_address: "addr-admin"
jwt_secret: "secret"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 20, cfg.RateLimitPerSecond)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFromPathEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
admin_address: "addr-admin"
jwt_secret: "secret"
`)

	t.Setenv("ESCROWD_LISTEN_ADDR", ":7000")
	t.Setenv("ESCROWD_ADMIN_ADDRESS", "addr-other")
	t.Setenv("ESCROWD_RATE_LIMIT_PER_SECOND", "50")
	t.Setenv("ESCROWD_ALLOWED_ORIGINS", "https://a.test,https://b.test")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "addr-other", cfg.AdminAddress)
	assert.Equal(t, 50, cfg.RateLimitPerSecond)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
}

func TestLoadFromPathMissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFromPathBadYAML(t *testing.T) {
	path := writeConfigFile(t, "listen_addr: [broken")
	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing admin",
			mutate:  func(c *Config) { c.AdminAddress = "" },
			wantErr: "admin_address",
		},
		{
			name:    "missing secret",
			mutate:  func(c *Config) { c.JWTSecret = "" },
			wantErr: "jwt_secret",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.RateLimitPerSecond = 0 },
			wantErr: "rate_limit_per_second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.AdminAddress = "addr-admin"
			cfg.JWTSecret = "secret"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
