package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/database"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "PORT", "JWT_SECRET", "CORS_ORIGIN", "SHUTDOWN_TIMEOUT",
		"MIGRATE_ON_START", "SNOWFLAKE_NODE", "DATABASE_DRIVER", "DATABASE_URL",
		"LOG_LEVEL", "LOG_FILE", "LOG_DEV",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("api", nil)
	require.NoError(t, err)
	require.Equal(t, DefaultAddr, cfg.Addr)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	require.False(t, cfg.MigrateOnStart)
	require.Equal(t, int64(1), cfg.SnowflakeNode)
	require.Equal(t, database.DriverPostgres, cfg.Database.Driver)
	require.Equal(t, "info", cfg.Log.Level)

	require.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGIN", "https://a.example, https://b.example")
	t.Setenv("SHUTDOWN_TIMEOUT", "12")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("SNOWFLAKE_NODE", "7")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := Load("api", nil)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", cfg.Addr)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.Equal(t, 12*time.Second, cfg.ShutdownTimeout)
	require.True(t, cfg.MigrateOnStart)
	require.Equal(t, int64(7), cfg.SnowflakeNode)
	require.Equal(t, database.DriverSQLite, cfg.Database.Driver)
	require.NoError(t, cfg.Validate())

	t.Setenv("HTTP_ADDR", "127.0.0.1:1234")
	cfg, err = Load("api", nil)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:1234", cfg.Addr, "HTTP_ADDR wins over PORT")
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", "0.0.0.0:1")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("api", []string{
		"--addr", ":8080",
		"--database-driver", "SQLite",
		"--database-url", "file:x.db",
		"--log-level", "debug",
		"--log-file", "/tmp/api.log",
		"--migrate",
		"--shutdown-timeout", "30s",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, database.DriverSQLite, cfg.Database.Driver)
	require.Equal(t, "file:x.db", cfg.Database.DSN)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "/tmp/api.log", cfg.Log.File)
	require.True(t, cfg.MigrateOnStart)
	require.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := Load("api", []string{"--help"})
	require.True(t, errors.Is(err, pflag.ErrHelp))

	_, err = Load("api", []string{"--no-such-flag"})
	require.Error(t, err)

	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	_, err = Load("api", nil)
	require.ErrorContains(t, err, "SHUTDOWN_TIMEOUT")

	t.Setenv("SHUTDOWN_TIMEOUT", "")
	t.Setenv("MIGRATE_ON_START", "maybe")
	_, err = Load("api", nil)
	require.ErrorContains(t, err, "MIGRATE_ON_START")
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("api", nil)
	require.NoError(t, err)
	cfg.JWTSecret = "x"
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.ShutdownTimeout = 0
	require.ErrorContains(t, bad.Validate(), "shutdown timeout")

	bad = cfg
	bad.Database.Driver = "mysql"
	require.ErrorContains(t, bad.Validate(), "unsupported database driver")

	bad = cfg
	bad.JWTSecret = "  "
	bad.ShutdownTimeout = -time.Second
	err = bad.Validate()
	require.ErrorIs(t, err, ErrMissingJWTSecret)
	require.ErrorContains(t, err, "shutdown timeout")
}
