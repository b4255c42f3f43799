package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*TokenService, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(t0)
	s, err := NewTokenService("super-secret", WithClock(clock))
	require.NoError(t, err)
	return s, clock
}

func TestNewTokenService_MissingSecret(t *testing.T) {
	_, err := NewTokenService("")
	require.ErrorIs(t, err, ErrMissingSecret)
	_, err = NewTokenService("   ")
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueAndValidate(t *testing.T) {
	s, _ := newTestService(t)

	tok, err := s.Issue(Claim{UserID: "1", Email: "a@x.com"})
	require.NoError(t, err)

	got, err := s.Validate(tok)
	require.NoError(t, err)
	require.Equal(t, Claim{UserID: "1", Email: "a@x.com"}, got)
}

func TestIssue_EmbedsSubjectAndSevenDayExpiry(t *testing.T) {
	s, _ := newTestService(t)
	tok, err := s.Issue(Claim{UserID: "42", Email: "b@x.com"})
	require.NoError(t, err)

	claims := &tokenClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.True(t, claims.ExpiresAt.Time.Equal(t0.Add(7*24*time.Hour)))
	require.True(t, claims.IssuedAt.Time.Equal(t0))
}

func TestIssue_RequiresUserID(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Issue(Claim{Email: "a@x.com"})
	require.Error(t, err)
}

func TestValidate_Expiry(t *testing.T) {
	s, clock := newTestService(t)
	tok, err := s.Issue(Claim{UserID: "1", Email: "a@x.com"})
	require.NoError(t, err)

	clock.Advance(TokenTTL - time.Second)
	_, err = s.Validate(tok)
	require.NoError(t, err, "still inside the window")

	clock.Advance(2 * time.Second)
	_, err = s.Validate(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidate_WrongSecret(t *testing.T) {
	s, clock := newTestService(t)
	other, err := NewTokenService("other-secret", WithClock(clock))
	require.NoError(t, err)

	tok, err := other.Issue(Claim{UserID: "1"})
	require.NoError(t, err)

	_, err = s.Validate(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	s, _ := newTestService(t)

	claims := tokenClaims{
		UserID: "1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour)),
		},
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Validate(none)
	require.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = s.Validate(hs512)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RequiresExpiryAndIdentity(t *testing.T) {
	s, _ := newTestService(t)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{UserID: "1"}).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = s.Validate(noExp)
	require.ErrorIs(t, err, ErrInvalidToken)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour))},
	}).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = s.Validate(noUser)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_MalformedInput(t *testing.T) {
	s, _ := newTestService(t)
	for _, in := range []string{"", "not.a.jwt", "a.b", "....", "Bearer x", "\x00\xff"} {
		_, err := s.Validate(in)
		require.True(t, errors.Is(err, ErrInvalidToken), "input %q: %v", in, err)
	}
}
