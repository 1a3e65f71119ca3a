package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var signingKey = []byte("defaultsecretkey")

// Init sets the HMAC signing key used to issue and validate tokens
func Init(key string) {
	if key != "" {
		signingKey = []byte(key)
	}
}

// Claims carries the authenticated actor identity. TenantID is nil for
// platform-level users.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	TenantID *uint  `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for the given user
func GenerateToken(userID uint, role string, tenantID *uint, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID:   userID,
		Role:     role,
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning its claims
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
