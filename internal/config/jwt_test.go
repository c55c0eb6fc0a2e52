package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_DefaultValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "test-secret-key", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours)
	assert.Equal(t, 24*time.Hour, cfg.MaxAge())
}

func TestNewJWTConfig_SecretUnset(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := NewJWTConfig()
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestNewJWTConfig_Expiration(t *testing.T) {
	tests := []struct {
		name       string
		expiration string
		want       int
		wantErr    bool
	}{
		{"custom 12 hours", "12", 12, false},
		{"minimum 1 hour", "1", 1, false},
		{"one week", "168", 168, false},
		{"non-numeric", "invalid", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"float", "12.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret-key")
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)

			cfg, err := NewJWTConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, cfg)
				assert.Contains(t, err.Error(), "JWT_EXPIRATION_HOURS")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.ExpirationHours)
		})
	}
}

func TestJWTConfig_Validate(t *testing.T) {
	assert.Error(t, (&JWTConfig{ExpirationHours: 1}).Validate())
	assert.NoError(t, (&JWTConfig{Secret: "s", ExpirationHours: 1}).Validate())
}
