package metrics

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds the platform endpoints and the signing credentials.
type Config struct {
	LoginURL   string
	QueryURL   string
	TenantName string
	AppKey     string
	AppSecret  string
	UserName   string
	TokenTTL   time.Duration
	TimeoutMs  int
	MaxRetries int
}

// DefaultConfig returns the timing defaults; endpoints and credentials
// always come from the environment.
func DefaultConfig() Config {
	return Config{
		TokenTTL:   time.Hour,
		TimeoutMs:  10000,
		MaxRetries: 2,
	}
}

// LoadConfig reads the platform configuration from WATTSON_PLATFORM_*
// environment variables, falling back to defaults for timing values.
// Endpoints and credentials have no defaults; Validate catches gaps.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("WATTSON_PLATFORM_LOGIN_URL"); v != "" {
		cfg.LoginURL = v
	}
	if v := os.Getenv("WATTSON_PLATFORM_QUERY_URL"); v != "" {
		cfg.QueryURL = v
	}
	if v := os.Getenv("WATTSON_PLATFORM_TENANT"); v != "" {
		cfg.TenantName = v
	}
	if v := os.Getenv("WATTSON_PLATFORM_APP_KEY"); v != "" {
		cfg.AppKey = v
	}
	if v := os.Getenv("WATTSON_PLATFORM_APP_SECRET"); v != "" {
		cfg.AppSecret = v
	}
	if v := os.Getenv("WATTSON_PLATFORM_USER"); v != "" {
		cfg.UserName = v
	}
	if v := os.Getenv("WATTSON_PLATFORM_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TokenTTL = d
		}
	}
	if v := os.Getenv("WATTSON_PLATFORM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("WATTSON_PLATFORM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	return cfg
}

// Validate checks that every field needed to sign a login is present.
func (c Config) Validate() error {
	if c.LoginURL == "" || c.QueryURL == "" {
		return errors.New("metrics: login and query URLs are required")
	}
	if c.TenantName == "" || c.AppKey == "" || c.AppSecret == "" || c.UserName == "" {
		return errors.New("metrics: tenant, app key, app secret and user name are required")
	}
	return nil
}
