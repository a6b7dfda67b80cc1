package config

import (
	"strings"
	"time"
)

// Config holds runtime settings for the accountkeeper CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the HTTP API, including the /api/v1 prefix.
//   - RequestTimeout: per-request timeout of the HTTP client.
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000/api/v1"
	c.RequestTimeout = 10 * time.Second
}

// BaseURL returns ServerBaseURL without trailing slashes.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.ServerBaseURL, "/")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
