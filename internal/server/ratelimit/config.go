package ratelimit

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for one endpoint tier.
type EndpointConfig struct {
	Name   string        // Tier name, used for RATE_LIMIT_<NAME>_* overrides
	Path   string        // Exact path, or a prefix when it ends with "/"
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// DefaultEndpointConfigs returns the built-in endpoint tiers.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Reloads read from disk and replace the shared taxonomy.
		{Name: "reload", Path: "/taxonomy/reload", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},

		// Writes and full-table scoring.
		{Name: "apply", Path: "/jobs/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Name: "candidates", Path: "/candidates", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},

		// Stateless skill computations.
		{Name: "skills", Path: "/skills/", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
	}
}

// LoadConfig reads rate limiting settings from RATE_LIMIT_* environment
// variables on top of the built-in tiers. Malformed values are errors.
func LoadConfig() (*Config, error) {
	env := envReader{}

	enabled := env.boolVar("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}, env.err
	}

	cfg := &Config{
		Enabled:         true,
		DefaultLimit:    env.intVar("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   env.durationVar("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.durationVar("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       env.ipList("RATE_LIMIT_WHITELIST"),
		Blacklist:       env.ipList("RATE_LIMIT_BLACKLIST"),
		EndpointConfigs: DefaultEndpointConfigs(),
	}

	for i := range cfg.EndpointConfigs {
		tier := &cfg.EndpointConfigs[i]
		prefix := "RATE_LIMIT_" + strings.ToUpper(tier.Name)
		tier.Limit = env.intVar(prefix+"_LIMIT", tier.Limit)
		tier.Window = env.durationVar(prefix+"_WINDOW", tier.Window)
		tier.Burst = env.intVar(prefix+"_BURST", tier.Burst)
	}

	if env.err != nil {
		return nil, env.err
	}
	return cfg, nil
}

// envReader parses environment variables, keeping the first error.
type envReader struct {
	err error
}

func (e *envReader) lookup(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != "" && e.err == nil
}

func (e *envReader) fail(key, value string, err error) {
	e.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
}

func (e *envReader) intVar(key string, defaultValue int) int {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err == nil && n < 0 {
		err = errors.New("must be non-negative")
	}
	if err != nil {
		e.fail(key, value, err)
		return defaultValue
	}
	return n
}

func (e *envReader) boolVar(key string, defaultValue bool) bool {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.fail(key, value, err)
		return defaultValue
	}
	return b
}

func (e *envReader) durationVar(key string, defaultValue time.Duration) time.Duration {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.fail(key, value, err)
		return defaultValue
	}
	return d
}

// ipList parses a comma-separated list of IP addresses into a set.
func (e *envReader) ipList(key string) map[string]bool {
	result := make(map[string]bool)
	value, ok := e.lookup(key)
	if !ok {
		return result
	}
	for _, ip := range strings.Split(value, ",") {
		ip = strings.TrimSpace(ip)
		if ip == "" {
			continue
		}
		if net.ParseIP(ip) == nil {
			e.fail(key, ip, errors.New("not an IP address"))
			return result
		}
		result[ip] = true
	}
	return result
}
