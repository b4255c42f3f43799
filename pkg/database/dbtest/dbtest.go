// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/database"
)

var seq atomic.Int64

// New returns a fresh, fully migrated database private to the calling test.
// It is closed when the test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	db := Open(t)
	_, err := database.Migrate(context.Background(), db)
	require.NoError(t, err)
	return db
}

// Open returns an empty database without running migrations.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, seq.Add(1))
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, DSN: dsn, MaxConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SeedUser inserts a bare user row so status rows can reference it.
func SeedUser(t testing.TB, db *sqlx.DB, id string) {
	t.Helper()
	_, err := db.Exec(
		db.Rebind(`INSERT INTO users (id, email, password_hash, name) VALUES (?, ?, ?, ?)`),
		id, id+"@example.com", "x", "user "+id,
	)
	require.NoError(t, err)
}
