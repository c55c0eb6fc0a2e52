package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultTokenMaxAgeHours bounds how old an accepted token may be when it has no exp claim.
const DefaultTokenMaxAgeHours = 24

// JWTConfig holds settings for validating bearer tokens issued elsewhere.
type JWTConfig struct {
	Secret          string
	ExpirationHours int // Maximum token age, measured from iat
}

// NewJWTConfig reads JWT_SECRET and JWT_EXPIRATION_HOURS (default 24).
// It returns (nil, nil) when JWT_SECRET is unset: user-scoped endpoints then
// reject every request.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, nil
	}

	expirationHours := DefaultTokenMaxAgeHours
	if raw := os.Getenv("JWT_EXPIRATION_HOURS"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		expirationHours = v
	}

	cfg := &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *JWTConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

// MaxAge returns the maximum accepted token age.
func (c *JWTConfig) MaxAge() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}
