// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort           = 8080
	DefaultSkillCacheTTL  = time.Hour
	DefaultScoringWorkers = 8
	DefaultLogLevel       = "info"
)

// Duration is a time.Duration that reads from JSON as a Go duration string ("90m").
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config holds service settings. Zero values mean "unset" until defaults are merged in.
type Config struct {
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`

	RedisURL      string   `json:"redis_url,omitempty"`
	RedisPassword string   `json:"redis_password,omitempty"`
	RedisDB       int      `json:"redis_db,omitempty"`
	SkillCacheTTL Duration `json:"skill_cache_ttl,omitempty"`

	NATSURL string `json:"nats_url,omitempty"`

	TaxonomyPath   string `json:"taxonomy_path,omitempty"`   // JSON taxonomy file; built-in taxonomy when empty
	LogLevel       string `json:"log_level,omitempty"`       // debug|info|warn|error
	ScoringWorkers int    `json:"scoring_workers,omitempty"` // Parallelism for candidate search
}

// Defaults returns the built-in defaults.
func Defaults() Config {
	return Config{
		Port:           DefaultPort,
		SkillCacheTTL:  Duration(DefaultSkillCacheTTL),
		LogLevel:       DefaultLogLevel,
		ScoringWorkers: DefaultScoringWorkers,
	}
}

// Load reads configuration from environment variables. Unset variables stay zero
// so that file values and defaults can be merged underneath.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		NATSURL:       os.Getenv("NATS_URL"),
		TaxonomyPath:  os.Getenv("TAXONOMY_PATH"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}

	var err error
	if cfg.Port, err = envInt("PORT"); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = envInt("REDIS_DB"); err != nil {
		return nil, err
	}
	if cfg.ScoringWorkers, err = envInt("CANDIDATE_SCORING_WORKERS"); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(os.Getenv("SKILL_CACHE_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SKILL_CACHE_TTL: %w", err)
		}
		cfg.SkillCacheTTL = Duration(ttl)
	}

	return cfg, nil
}

// LoadFile loads configuration from a JSON file.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Resolve builds the effective configuration: environment over file over defaults.
// filePath may be empty.
func Resolve(filePath string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	merged := *cfg
	if filePath != "" {
		fileCfg, err := LoadFile(filePath)
		if err != nil {
			return nil, err
		}
		merged = merged.MergeWithDefaults(*fileCfg)
	}
	merged = merged.MergeWithDefaults(Defaults())

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("config error: 'redis_db' must be non-negative")
	}
	if c.SkillCacheTTL < 0 {
		return fmt.Errorf("config error: 'skill_cache_ttl' must be non-negative")
	}
	if c.ScoringWorkers < 0 {
		return fmt.Errorf("config error: 'scoring_workers' must be non-negative")
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config error: unknown log level %q", c.LogLevel)
	}

	if c.TaxonomyPath != "" {
		if _, err := os.Stat(c.TaxonomyPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: taxonomy file not found: %s", c.TaxonomyPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.RedisPassword == "" {
		result.RedisPassword = defaults.RedisPassword
	}
	if result.RedisDB == 0 {
		result.RedisDB = defaults.RedisDB
	}
	if result.SkillCacheTTL == 0 {
		result.SkillCacheTTL = defaults.SkillCacheTTL
	}
	if result.NATSURL == "" {
		result.NATSURL = defaults.NATSURL
	}
	if result.TaxonomyPath == "" {
		result.TaxonomyPath = defaults.TaxonomyPath
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.ScoringWorkers == 0 {
		result.ScoringWorkers = defaults.ScoringWorkers
	}

	return result
}

// CacheTTL returns the skill cache TTL as a time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.SkillCacheTTL)
}

func envInt(key string) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return v, nil
}
