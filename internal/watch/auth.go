package watch

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of issued preview tokens
const DefaultTokenTTL = 24 * time.Hour

// TokenAuth issues and checks HS256 bearer tokens for a preview server
// reachable beyond loopback
type TokenAuth struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenAuth creates token auth; a zero ttl selects DefaultTokenTTL
func NewTokenAuth(secret string, ttl time.Duration) *TokenAuth {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenAuth{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for subject
func (a *TokenAuth) Issue(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "genapi",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Validate checks signature and expiry and returns the token subject
func (a *TokenAuth) Validate(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid token. Browsers cannot set
// headers on websocket upgrades, so a token query parameter is accepted too.
func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if _, err := a.Validate(token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
