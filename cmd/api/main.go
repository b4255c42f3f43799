package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/ovaphlow/pitchfork/service-daystatus/internal/auth"
	"github.com/ovaphlow/pitchfork/service-daystatus/internal/config"
	"github.com/ovaphlow/pitchfork/service-daystatus/internal/router"
	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/database"
	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	cfg, err := config.Load("daystatus-api", os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// init logger
	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting daystatus api")

	if err := cfg.Validate(); err != nil {
		sugar.Fatalf("invalid configuration: %v", err)
	}
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		sugar.Fatalf("token service: %v", err)
	}

	// init db
	db, err := database.Connect(cfg.Database)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		applied, err := database.Migrate(context.Background(), db)
		if err != nil {
			sugar.Fatalf("migrate: %v", err)
		}
		sugar.Infow("migrations applied", "versions", applied)
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := router.RegisterRoutes(sugar, router.Deps{
		DB:          db,
		Tokens:      tokens,
		IDs:         utilities.NewIDGenerator(cfg.SnowflakeNode),
		CORSOrigins: cfg.CORSOrigins,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// run server in background
	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("listening", "addr", cfg.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		sugar.Errorf("http server failed: %v", err)
	}

	sugar.Info("shutting down")

	// in-flight requests finish, and with them their transactions, before the pool closes
	doneCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
