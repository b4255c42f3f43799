package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Claim is the identity carried by a session token. It is never stored
// server-side.
type Claim struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// tokenClaims is the JWT payload: the claim plus registered sub/iat/exp.
type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// WithClaim returns a copy of ctx carrying c.
func WithClaim(ctx context.Context, c Claim) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// ClaimFromContext returns the claim attached by the gateway.
func ClaimFromContext(ctx context.Context) (Claim, bool) {
	c, ok := ctx.Value(ctxKey{}).(Claim)
	return c, ok
}
