// Package token handles bearer tokens on the client side.
//
// The trip service issues JWT access tokens carrying the actor's id and
// role. The client never verifies signatures (that is the server's job);
// it decodes claims unverified to pre-flight expiry before spending a
// network round trip and to derive the actor identity.
//
// Credential storage itself stays external: callers supply a Provider and
// the engine asks it for a token per request. There is no process-wide
// token singleton.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no access token available")
	ErrMalformed    = errors.New("malformed access token")
	ErrTokenExpired = errors.New("access token expired")
)

// Claims are the token claims the client cares about.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Expired reports whether the token's exp claim has passed at the given
// instant. Tokens without an exp claim never expire client-side.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(c.ExpiresAt.Time)
}

// Decode parses the token payload without verifying the signature.
func Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, ErrMalformed
	}
	return claims, nil
}

// Provider supplies the bearer token for outgoing requests.
type Provider interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticProvider returns a fixed token, typically one obtained from a
// login call or the environment.
type StaticProvider string

// AccessToken implements Provider.
func (p StaticProvider) AccessToken(context.Context) (string, error) {
	if p == "" {
		return "", ErrNoToken
	}
	return string(p), nil
}

// FuncProvider adapts a function into a Provider.
type FuncProvider func(ctx context.Context) (string, error)

// AccessToken implements Provider.
func (p FuncProvider) AccessToken(ctx context.Context) (string, error) {
	return p(ctx)
}
