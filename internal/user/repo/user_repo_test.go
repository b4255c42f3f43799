package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-daystatus/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/database/dbtest"
)

func newUser(id, email string) *entity.User {
	return &entity.User{
		ID:           id,
		Email:        email,
		PasswordHash: "$2a$04$hash",
		Name:         "User " + id,
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	r := NewUserRepo(dbtest.New(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newUser("100", "a@x.com")))

	got, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "100", got.ID)
	require.Equal(t, "User 100", got.Name)
	require.Equal(t, "$2a$04$hash", got.PasswordHash)
	require.True(t, got.CreatedAt.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))

	exists, err := r.ExistsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = r.ExistsByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestUserRepo_NotFound(t *testing.T) {
	r := NewUserRepo(dbtest.New(t))

	_, err := r.GetByEmail(context.Background(), "ghost@x.com")
	require.ErrorIs(t, err, ErrNotFound)
	err = r.UpdatePasswordHash(context.Background(), "ghost", "$2a$04$other")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	r := NewUserRepo(dbtest.New(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newUser("1", "a@x.com")))
	err := r.Create(ctx, newUser("2", "a@x.com"))
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRepo_Create_DBError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	r := NewUserRepo(sqlx.NewDb(db, "postgres"))

	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*password_hash,\s*name,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)$`
	mock.ExpectExec(q).WillReturnError(errors.New("db down"))

	err = r.Create(context.Background(), newUser("1", "a@x.com"))
	require.Error(t, err)
	require.Regexp(t, regexp.MustCompile(`insert user: .*db down`), err.Error())
	require.NotErrorIs(t, err, ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdatePasswordHash(t *testing.T) {
	r := NewUserRepo(dbtest.New(t))
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, newUser("1", "a@x.com")))

	require.NoError(t, r.UpdatePasswordHash(ctx, "1", "$2a$05$newer"))
	got, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "$2a$05$newer", got.PasswordHash)
}
