package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-daystatus/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-daystatus/internal/auth"
	"github.com/ovaphlow/pitchfork/service-daystatus/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-daystatus/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/utilities"
)

// DefaultCost is the bcrypt work factor used for new hashes.
const DefaultCost = 12

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (hash string, algo string, err error)
	Verify(hash, pw string) bool
	NeedsRehash(hash string) bool
}

// BcryptHasher implementation. A zero Cost means DefaultCost.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) cost() int {
	if b.Cost == 0 {
		return DefaultCost
	}
	return b.Cost
}

func (b BcryptHasher) Hash(pw string) (string, string, error) {
	h, err := bcrypt.GenerateFromPassword(bcryptInput(pw), b.cost())
	if err != nil {
		return "", "", err
	}
	return string(h), fmt.Sprintf("bcrypt:%d", b.cost()), nil
}

// Verify reports whether pw matches hash. Malformed hashes never match.
func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(pw)) == nil
}

// bcrypt only reads the first 72 bytes and x/crypto rejects longer input.
func bcryptInput(pw string) []byte {
	const maxBytes = 72
	b := []byte(pw)
	if len(b) > maxBytes {
		b = b[:maxBytes]
	}
	return b
}

func (b BcryptHasher) NeedsRehash(hash string) bool {
	c, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return c < b.cost()
}

// TokenIssuer mints session tokens for authenticated users.
type TokenIssuer interface {
	Issue(c auth.Claim) (string, error)
}

// Field limits for signup and login payloads.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 128
	MaxNameLen     = 100
)

var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrInvalidEmail   = errors.New("email is not a valid address")
	ErrInvalidPass    = fmt.Errorf("password must be %d to %d characters", MinPasswordLen, MaxPasswordLen)
	ErrInvalidName    = fmt.Errorf("name must be 1 to %d characters", MaxNameLen)
)

// UserService orchestrates signup and login.
type UserService struct {
	repo   *userrepo.UserRepo
	hasher PasswordHasher
	tokens TokenIssuer
	ids    *utilities.IDGenerator
	logger *zap.SugaredLogger
	clock  clockwork.Clock

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*UserService)

// WithClock replaces the wall clock used for account timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *UserService) { s.clock = c }
}

func NewUserService(r *userrepo.UserRepo, hasher PasswordHasher, tokens TokenIssuer, ids *utilities.IDGenerator, logger *zap.SugaredLogger, opts ...Option) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: DefaultCost}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &UserService{repo: r, hasher: hasher, tokens: tokens, ids: ids, logger: logger, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session is returned by a successful signup or login.
type Session struct {
	UserID string
	Token  string
}

// Signup creates an account and returns a session for it.
func (s *UserService) Signup(ctx context.Context, email, password, name string) (*Session, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(name); n < 1 || n > MaxNameLen {
		return nil, apperror.Validation(ErrInvalidName)
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if exists {
		return nil, apperror.Conflict(apperror.MsgEmailInUse, userrepo.ErrEmailTaken)
	}

	hash, _, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("hash password: %w", err))
	}
	u := &entity.User{
		ID:           s.ids.Next(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// lost the race against a concurrent signup with the same email
		if errors.Is(err, userrepo.ErrEmailTaken) {
			return nil, apperror.Conflict(apperror.MsgEmailInUse, err)
		}
		return nil, apperror.Storage(err)
	}
	s.logger.Infow("user signed up", "user_id", u.ID)
	return s.session(u)
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			s.hasher.Verify(s.dummy(), password)
			return nil, badCredentials()
		} // avoid user enumeration
		return nil, apperror.Storage(err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, badCredentials()
	}
	if s.hasher.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u.ID, password)
	}
	return s.session(u)
}

// rehash upgrades a stored hash to the current cost. Failures are logged
// and do not fail the login.
func (s *UserService) rehash(ctx context.Context, userID, password string) {
	hash, _, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warnw("rehash password", "user_id", userID, "err", err)
		return
	}
	if err := s.repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		s.logger.Warnw("store rehashed password", "user_id", userID, "err", err)
		return
	}
	s.logger.Infow("password hash upgraded", "user_id", userID)
}

func (s *UserService) session(u *entity.User) (*Session, error) {
	token, err := s.tokens.Issue(auth.Claim{UserID: u.ID, Email: u.Email})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &Session{UserID: u.ID, Token: token}, nil
}

// dummy returns a hash with the configured cost so that a login for an
// unknown email costs the same as a real comparison.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		h, _, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			s.logger.Warnw("dummy hash", "err", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func badCredentials() error {
	return apperror.New(apperror.KindAuthentication, apperror.MsgInvalidCredentials, ErrBadCredentials)
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperror.Validation(ErrInvalidEmail)
	}
	if n := utf8.RuneCountInString(password); n < MinPasswordLen || n > MaxPasswordLen {
		return apperror.Validation(ErrInvalidPass)
	}
	return nil
}
