package router

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-daystatus/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-daystatus/internal/auth"
	"github.com/ovaphlow/pitchfork/service-daystatus/internal/status"
	"github.com/ovaphlow/pitchfork/service-daystatus/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-daystatus/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/utilities"
)

// readyTimeout bounds the storage probe behind /health/ready.
const readyTimeout = 2 * time.Second

// Deps are the process-wide objects the routes are built from.
type Deps struct {
	DB     *sqlx.DB
	Tokens *auth.TokenService
	IDs    *utilities.IDGenerator
	// Hasher defaults to bcrypt at user.DefaultCost.
	Hasher      user.PasswordHasher
	CORSOrigins []string
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux
// and wraps them in the middleware chain.
func RegisterRoutes(logger *zap.SugaredLogger, d Deps) http.Handler {
	mux := http.NewServeMux()
	gateway := auth.NewGateway(d.Tokens, logger)

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("GET /health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := d.DB.PingContext(ctx); err != nil {
			logger.Warnw("readiness probe failed", "err", err)
			apperror.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"connected": false, "error": "DB test failed"})
			return
		}
		apperror.WriteJSON(w, http.StatusOK, map[string]bool{"connected": true})
	})

	// auth routes
	userSvc := user.NewUserService(userrepo.NewUserRepo(d.DB), d.Hasher, d.Tokens, d.IDs, logger)
	userHandler := user.NewHandler(userSvc, logger)
	mux.HandleFunc("POST /api/auth/signup", userHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", userHandler.Login)

	// status routes; the public ones are more specific than {userId}
	statusHandler := status.NewHandler(status.NewStore(d.DB, nil, logger), logger)
	mux.HandleFunc("GET /api/status/public/all", statusHandler.Public)
	mux.HandleFunc("GET /api/status/public/summary", statusHandler.Summary)
	mux.HandleFunc("GET /api/status/public/labels", statusHandler.Labels)
	mux.Handle("GET /api/status/{userId}", gateway.Owner(status.PathParam, statusHandler.GetOwn))
	mux.Handle("POST /api/status/{userId}", gateway.Owner(status.PathParam, statusHandler.Replace))

	var handler http.Handler = mux
	handler = BodyLimitMiddleware(MaxBodyBytes)(handler)
	handler = CORSMiddleware(d.CORSOrigins)(handler)
	handler = SecurityHeadersMiddleware()(handler)
	handler = RecoverMiddleware(logger)(handler)
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}
