package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = 7 * 24 * time.Hour

var (
	// ErrMissingSecret means the process was started without a signing
	// secret. It is a configuration error, fatal at startup.
	ErrMissingSecret = errors.New("token signing secret is not configured")
	// ErrInvalidToken covers every rejected token: bad signature or
	// algorithm, malformed input, missing identity, expired.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenService mints and validates HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

type Option func(*TokenService)

// WithClock replaces the wall clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(s *TokenService) { s.clock = c }
}

func NewTokenService(secret string, opts ...Option) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	s := &TokenService{secret: []byte(secret), ttl: TokenTTL, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for c that expires TokenTTL from now.
func (s *TokenService) Issue(c Claim) (string, error) {
	if c.UserID == "" {
		return "", errors.New("issue token: empty user id")
	}
	now := s.clock.Now()
	claims := tokenClaims{
		UserID: c.UserID,
		Email:  c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, algorithm and expiry and returns the embedded
// claim. All failures match ErrInvalidToken.
func (s *TokenService) Validate(token string) (Claim, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return Claim{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return Claim{}, ErrInvalidToken
	}
	return Claim{UserID: claims.UserID, Email: claims.Email}, nil
}
