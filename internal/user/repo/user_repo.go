package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-daystatus/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/database"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user with a caller-generated ID. A duplicate email
// returns ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, email, password_hash, name, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(q), u.ID, u.Email, u.PasswordHash, u.Name, u.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail returns the user with the given (already normalized) email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, email, password_hash, name, created_at FROM users WHERE email = ?`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(q), email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// UpdatePasswordHash replaces the stored hash of user id.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	const q = `UPDATE users SET password_hash = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), hash, id)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsByEmail reports whether an account already uses email.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const q = `SELECT COUNT(1) FROM users WHERE email = ?`
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(q), email); err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}
