package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the signed assertion carried by a bearer token: a user
// id plus the standard expiry/issue timestamps.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-signed session tokens.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewTokenManager(config JWTConfig) (*TokenManager, error) {
	if config.Secret == "" {
		return nil, fmt.Errorf("JWT secret is not configured")
	}

	expiryDays := config.ExpiryDays
	if expiryDays <= 0 {
		expiryDays = 30
	}

	return &TokenManager{
		secret: []byte(config.Secret),
		expiry: time.Duration(expiryDays) * 24 * time.Hour,
	}, nil
}

// Generate signs a token asserting the given user id and role. Returns
// the token string and its expiry time.
func (tm *TokenManager) Generate(userID uuid.UUID, role string) (string, time.Time, error) {
	expiresAt := time.Now().Add(tm.expiry)

	claims := TokenClaims{
		UserID: userID.String(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify parses and validates a token string. Tampered, expired or
// wrongly-signed tokens are rejected.
func (tm *TokenManager) Verify(tokenStr string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
