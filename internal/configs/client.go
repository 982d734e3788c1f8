package configs

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// ClientConfig configures the settings client and the settingsctl command.
type ClientConfig struct {
	Environment string

	// APIURL is the base URL of the settings service.
	APIURL string

	// APIToken is the bearer token; empty until the user logs in.
	APIToken string

	RequestTimeout time.Duration
	MaxRetries     int

	// RateLimit is the maximum number of outgoing requests per second, 0 for unlimited.
	RateLimit float64
}

// IsDevelopment reports whether the client runs in the development environment.
func (c *ClientConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// LoadClientConfig reads the client configuration from environment variables.
func LoadClientConfig() (*ClientConfig, error) {
	cfg := &ClientConfig{
		Environment: getEnv("ENVIRONMENT", EnvDevelopment),
		APIURL:      getEnv("SETTINGS_API_URL", "http://localhost:8080"),
		APIToken:    os.Getenv("SETTINGS_API_TOKEN"),
	}
	var err error

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("SETTINGS_API_URL must be an absolute http(s) URL, got %q", cfg.APIURL)
	}

	if cfg.RequestTimeout, err = getDuration("SETTINGS_REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("SETTINGS_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}

	if cfg.MaxRetries, err = getInt("SETTINGS_MAX_RETRIES", 2); err != nil {
		return nil, err
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("SETTINGS_MAX_RETRIES must not be negative, got %d", cfg.MaxRetries)
	}

	if cfg.RateLimit, err = getFloat("SETTINGS_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("SETTINGS_RATE_LIMIT must not be negative, got %v", cfg.RateLimit)
	}

	return cfg, nil
}
