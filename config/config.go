// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// HTTP settings
	Port string `json:"port"`

	// YouTube API settings
	APIKey         string        `json:"-"`
	RequestTimeout time.Duration `json:"request_timeout"`

	// Persistence settings
	FavoritesFile string `json:"favorites_file"`
	FavoritesData string `json:"-"`

	// Remote sync settings
	SyncBaseURL   string `json:"sync_base_url"`
	SyncToken     string `json:"-"`
	SyncServiceID string `json:"sync_service_id"`
	SyncEnvKey    string `json:"sync_env_key"`

	// Admin settings
	AdminPasswordHash string `json:"-"`
	AdminJWTSecret    string `json:"-"`

	// Cache settings
	RedisURL string        `json:"redis_url"`
	CacheTTL time.Duration `json:"cache_ttl"`

	// Retry settings
	MaxRetries        int           `json:"max_retries"`
	InitialBackoff    time.Duration `json:"initial_backoff"`
	MaxBackoff        time.Duration `json:"max_backoff"`
	BackoffMultiplier float64       `json:"backoff_multiplier"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:              "5000",
		RequestTimeout:    10 * time.Second,
		FavoritesFile:     "favorites.json",
		SyncBaseURL:       "https://api.render.com",
		SyncEnvKey:        "FAVORITES_DATA",
		CacheTTL:          5 * time.Minute,
		MaxRetries:        2,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Load loads configuration from environment variables, config file, and
// applies defaults. Priority: env vars > config file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from kidsafe.json in the current
// directory or the user config directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"kidsafe.json",
		filepath.Join(os.Getenv("HOME"), ".config", "kidsafe", "kidsafe.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("FAVORITES_DATA"); v != "" {
		c.FavoritesData = v
	}
	if v := os.Getenv("KIDSAFE_FAVORITES_FILE"); v != "" {
		c.FavoritesFile = v
	}
	if v := os.Getenv("KIDSAFE_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestTimeout = d
		}
	}
	if v := os.Getenv("KIDSAFE_SYNC_BASE_URL"); v != "" {
		c.SyncBaseURL = v
	}
	if v := os.Getenv("KIDSAFE_SYNC_TOKEN"); v != "" {
		c.SyncToken = v
	}
	if v := os.Getenv("KIDSAFE_SYNC_SERVICE_ID"); v != "" {
		c.SyncServiceID = v
	}
	if v := os.Getenv("KIDSAFE_SYNC_ENV_KEY"); v != "" {
		c.SyncEnvKey = v
	}
	if v := os.Getenv("KIDSAFE_ADMIN_PASSWORD_HASH"); v != "" {
		c.AdminPasswordHash = v
	}
	if v := os.Getenv("KIDSAFE_ADMIN_JWT_SECRET"); v != "" {
		c.AdminJWTSecret = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("KIDSAFE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.CacheTTL = d
		}
	}
	if v := os.Getenv("KIDSAFE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("KIDSAFE_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.InitialBackoff = d
		}
	}
	if v := os.Getenv("KIDSAFE_MAX_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MaxBackoff = d
		}
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must be set")
	}
	if c.FavoritesFile == "" {
		return fmt.Errorf("favorites_file must be set")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff must be >= initial_backoff")
	}
	if c.BackoffMultiplier <= 1 {
		return fmt.Errorf("backoff_multiplier must be > 1")
	}
	return nil
}
