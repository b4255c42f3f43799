// Package config assembles process settings from the environment and the
// command line. Flags win over environment variables, which win over
// defaults. Loading a .env file is left to main.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/database"
	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/utilities"
)

const (
	DefaultAddr            = "0.0.0.0:8431"
	DefaultShutdownTimeout = 5 * time.Second
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type Config struct {
	Addr            string
	JWTSecret       string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	MigrateOnStart  bool
	SnowflakeNode   int64

	Database database.Config
	Log      utilities.Config
}

// Load reads the environment and then parses args (without the program
// name). pflag.ErrHelp is returned unchanged when -h or --help is given.
func Load(name string, args []string) (Config, error) {
	cfg := Config{
		Addr:            addrFromEnv(),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		CORSOrigins:     splitList(os.Getenv("CORS_ORIGIN")),
		ShutdownTimeout: DefaultShutdownTimeout,
		SnowflakeNode:   utilities.NodeFromEnv(),
		Database:        database.ConfigFromEnv(),
		Log:             utilities.ConfigFromEnv(),
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if v := os.Getenv("MIGRATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("MIGRATE_ON_START: %w", err)
		}
		cfg.MigrateOnStart = b
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.Database.Driver, "database-driver", cfg.Database.Driver, "database driver (postgres|sqlite)")
	fs.StringVar(&cfg.Database.DSN, "database-url", cfg.Database.DSN, "database connection string")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "also write JSON logs to this file, rotated daily")
	fs.BoolVar(&cfg.MigrateOnStart, "migrate", cfg.MigrateOnStart, "apply pending migrations before serving")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "grace period for in-flight requests")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout))
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func addrFromEnv() string {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		return v
	}
	if port := os.Getenv("PORT"); port != "" {
		return "0.0.0.0:" + port
	}
	return DefaultAddr
}

// parseDuration accepts Go durations ("10s") and bare seconds ("10").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
