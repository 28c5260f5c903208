// Package token issues and verifies the signed bearer tokens used for API
// authentication. Tokens are stateless JWTs: there is no backing session
// store and no revocation before expiry.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prn-tf/shelfmark/internal/domain"
)

// Claims binds a user identifier to the registered JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// Manager issues and verifies tokens with a shared HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a Manager. ttl is the fixed token lifetime from
// issuance.
func NewManager(secret []byte, ttl time.Duration) *Manager {
	return &Manager{
		secret: secret,
		ttl:    ttl,
	}
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new token embedding userID, valid for the configured
// lifetime.
func (m *Manager) Issue(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates tokenString and returns the embedded user ID.
// Any failure (bad signature, expiry, malformed input, missing user ID)
// yields domain.ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (int64, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.UserID == 0 {
		return 0, domain.ErrInvalidToken
	}

	return claims.UserID, nil
}
