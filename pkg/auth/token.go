package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInspector reads claims from access tokens issued by the backend.
// It never verifies signatures: the backend does that on every call. It
// only lets the front end notice an expired session early.
type TokenInspector struct {
	parser *jwt.Parser
	now    func() time.Time
	leeway time.Duration
}

func NewTokenInspector(leeway time.Duration) *TokenInspector {
	return &TokenInspector{
		parser: jwt.NewParser(),
		now:    time.Now,
		leeway: leeway,
	}
}

// ExpiresAt returns the exp claim. ok is false when the token has none.
func (i *TokenInspector) ExpiresAt(tokenString string) (exp time.Time, ok bool, err error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := i.parser.ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, false, fmt.Errorf("cannot parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}

// Expired reports whether the token is past its exp claim. Tokens that
// cannot be parsed count as expired; tokens without exp never expire.
func (i *TokenInspector) Expired(tokenString string) bool {
	exp, ok, err := i.ExpiresAt(tokenString)
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return i.now().After(exp.Add(i.leeway))
}
