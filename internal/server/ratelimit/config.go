package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path; a trailing "/" matches every path below it
	Method string        // HTTP method
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Settings are the environment-tunable limiter knobs.
type Settings struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT" envDefault:"600"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW" envDefault:"1m"`
	GenerateLimit   int           `env:"RATE_LIMIT_GENERATE_LIMIT" envDefault:"30"`
	GenerateWindow  time.Duration `env:"RATE_LIMIT_GENERATE_WINDOW" envDefault:"1m"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
	Whitelist       []string      `env:"RATE_LIMIT_WHITELIST" envSeparator:","`
	Blacklist       []string      `env:"RATE_LIMIT_BLACKLIST" envSeparator:","`
}

// LoadConfig reads Settings from the environment and builds a Config.
func LoadConfig() (*Config, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("failed to parse rate limit settings: %w", err)
	}
	return s.Config(), nil
}

// Config builds the limiter configuration for these settings.
func (s Settings) Config() *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   s.DefaultWindow,
		CleanupInterval: s.CleanupInterval,
		Whitelist:       toSet(s.Whitelist),
		Blacklist:       toSet(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(s.GenerateLimit, s.GenerateWindow),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits. Model-backed endpoints share
// the stricter generate limit; export and preview get a moderate tier.
func DefaultEndpointConfigs(generateLimit int, generateWindow time.Duration) []EndpointConfig {
	burst := max(1, generateLimit/6)
	return []EndpointConfig{
		// Model calls
		{Path: "/generate", Method: http.MethodPost, Limit: generateLimit, Window: generateWindow, Burst: burst},
		{Path: "/analyze", Method: http.MethodPost, Limit: generateLimit, Window: generateWindow, Burst: burst},
		{Path: "/rewrite", Method: http.MethodPost, Limit: generateLimit, Window: generateWindow, Burst: burst},

		// Local CPU work
		{Path: "/export/", Method: http.MethodPost, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/preview", Method: http.MethodPost, Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/history", Method: http.MethodDelete, Limit: 30, Window: time.Minute, Burst: 5},
	}
}

// toSet turns a list of addresses into a lookup set, skipping blanks.
func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
