// Package config loads the escrowd configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	// AdminAddress is the single administrative identity, fixed for the
	// lifetime of the process.
	AdminAddress string `yaml:"admin_address"`

	// JWTSecret signs and verifies caller tokens (HMAC).
	JWTSecret string `yaml:"jwt_secret"`

	RateLimitPerSecond int      `yaml:"rate_limit_per_second"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	AllowedOrigins     []string `yaml:"allowed_origins"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ListenAddr:         ":8080",
		RateLimitPerSecond: 20,
		RateLimitBurst:     40,
		AllowedOrigins:     []string{"*"},
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// Load reads configuration from config/escrowd.yaml.
func Load() (*Config, error) {
	return LoadFromPath(filepath.Join("config", "escrowd.yaml"))
}

// LoadFromPath reads configuration from a specific path, applies environment
// overrides and validates the result.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration or returns defaults with environment
// overrides if the file is not present.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg = Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.AdminAddress == "" {
		return fmt.Errorf("admin_address is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("rate_limit_per_second must be positive")
	}
	return nil
}

// applyEnv overlays ESCROWD_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("ESCROWD_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("ESCROWD_ADMIN_ADDRESS"); v != "" {
		c.AdminAddress = v
	}
	if v := os.Getenv("ESCROWD_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("ESCROWD_RATE_LIMIT_PER_SECOND"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitPerSecond = n
		}
	}
	if v := os.Getenv("ESCROWD_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitBurst = n
		}
	}
	if v := os.Getenv("ESCROWD_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("ESCROWD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ESCROWD_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}
