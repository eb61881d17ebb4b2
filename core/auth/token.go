package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and verifies the stateless session token. The signing
// key is fixed for the process lifetime; replacing it invalidates every
// outstanding token.
type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

const DefaultSessionTTL = 7 * 24 * time.Hour

func NewTokenManager(key []byte, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenManager{key: key, ttl: ttl, now: time.Now}
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) Issue(username string) (string, time.Time, error) {
	now := m.now().UTC()
	exp := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.key)
	return signed, exp, err
}

// Verify returns the embedded username and true only for a well-formed,
// correctly signed, unexpired token. All failure modes collapse to a single
// false result so callers cannot tell them apart.
func (m *TokenManager) Verify(token string) (string, bool) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", false
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
