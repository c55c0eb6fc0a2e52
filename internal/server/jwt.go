package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/skill-matcher/internal/config"
	"github.com/jonathan/skill-matcher/internal/server/middleware"
)

// Claims represents JWT claims with user ID.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// GetUserID implements middleware.UserIDGetter.
func (c *Claims) GetUserID() uuid.UUID {
	return c.UserID
}

// JWTValidator validates HS256 bearer tokens. Tokens are issued by the
// account service; this service only checks them.
type JWTValidator struct {
	config *config.JWTConfig
	now    func() time.Time
}

// NewJWTValidator creates a validator. A nil config yields nil, which the
// auth middleware treats as "reject everything".
func NewJWTValidator(cfg *config.JWTConfig) *JWTValidator {
	if cfg == nil {
		return nil
	}
	return &JWTValidator{config: cfg, now: time.Now}
}

// AsTokenValidator adapts the validator to middleware.TokenValidator.
func (v *JWTValidator) AsTokenValidator() middleware.TokenValidator {
	if v == nil {
		return nil
	}
	return tokenValidatorFunc(func(token string) (middleware.UserIDGetter, error) {
		claims, err := v.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return claims, nil
	})
}

type tokenValidatorFunc func(string) (middleware.UserIDGetter, error)

func (f tokenValidatorFunc) ValidateToken(token string) (middleware.UserIDGetter, error) {
	return f(token)
}

// ValidateToken validates a JWT token and returns the claims.
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(v.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		default:
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	if claims.IssuedAt != nil && v.now().Sub(claims.IssuedAt.Time) > v.config.MaxAge() {
		return nil, fmt.Errorf("token older than %d hours", v.config.ExpirationHours)
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("token has no user_id claim")
	}

	return claims, nil
}
