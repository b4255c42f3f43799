// Command migrate applies the embedded schema migrations and exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/database"
	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/utilities"
)

func main() {
	_ = godotenv.Load()

	cfg := database.ConfigFromEnv()
	logCfg := utilities.ConfigFromEnv()
	fs := pflag.NewFlagSet("daystatus-migrate", pflag.ContinueOnError)
	fs.StringVar(&cfg.Driver, "database-driver", cfg.Driver, "database driver (postgres|sqlite)")
	fs.StringVar(&cfg.DSN, "database-url", cfg.DSN, "database connection string")
	fs.StringVar(&logCfg.Level, "log-level", logCfg.Level, "log level (debug|info|warn|error)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	// init logger
	lg, err := utilities.Init(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	db, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		sugar.Fatalf("migrate: %v", err)
	}
	version, err := database.SchemaVersion(ctx, db)
	if err != nil {
		sugar.Fatalf("schema version: %v", err)
	}
	sugar.Infow("migrations complete", "applied", applied, "version", version, "driver", cfg.Driver)
}
