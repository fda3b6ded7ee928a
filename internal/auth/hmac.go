package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HMACProvider verifies HS256 tokens signed with a shared secret and can
// issue them. Roles live in the token, so a role change takes effect when
// the client gets a freshly issued token.
type HMACProvider struct {
	secret []byte
	ttl    time.Duration
}

func NewHMAC(secret string, ttl time.Duration) *HMACProvider {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	return &HMACProvider{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (p *HMACProvider) Verify(_ context.Context, tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, unauthenticated(errors.New("empty token"))
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return p.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, unauthenticated(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, unauthenticated(errors.New("invalid token claims"))
	}

	return claimsFromMap(claims)
}

func (p *HMACProvider) SetRole(context.Context, string, string) error {
	return nil
}

func (p *HMACProvider) Issue(uid, email, role string) (string, error) {
	if uid == "" {
		return "", errors.New("no user ID provided")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": uid,
		"iat": now.Unix(),
		"exp": now.Add(p.ttl).Unix(),
	}

	if email != "" {
		claims["email"] = email
	}
	if role != "" {
		claims["role"] = role
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
