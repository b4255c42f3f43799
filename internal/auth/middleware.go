package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-daystatus/internal/apperror"
)

// TokenValidator is the part of TokenService the gateway needs.
type TokenValidator interface {
	Validate(token string) (Claim, error)
}

// Gateway authenticates requests and enforces that a caller only touches
// resources under their own user identifier.
type Gateway struct {
	tokens TokenValidator
	logger *zap.SugaredLogger
}

func NewGateway(tokens TokenValidator, logger *zap.SugaredLogger) *Gateway {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Gateway{tokens: tokens, logger: logger}
}

var (
	errNoCredential  = apperror.New(apperror.KindAuthentication, apperror.MsgAuthorizationRequired, errors.New("missing bearer credential"))
	errIdentityScope = apperror.New(apperror.KindAuthorization, apperror.MsgForbidden, errors.New("path user does not match token"))
)

// Authenticate rejects requests without a valid bearer token and attaches
// the validated claim to the request context.
func (g *Gateway) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			apperror.Write(w, errNoCredential)
			return
		}
		claim, err := g.tokens.Validate(token)
		if err != nil {
			g.logger.Debugw("token rejected", "path", r.URL.Path, "err", err)
			apperror.Write(w, apperror.New(apperror.KindAuthentication, apperror.MsgUnauthorized, err))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaim(r.Context(), claim)))
	})
}

// RequireOwner rejects requests whose path value named param differs from
// the authenticated user. It must run after Authenticate.
func (g *Gateway) RequireOwner(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claim, ok := ClaimFromContext(r.Context())
			if !ok {
				apperror.Write(w, errNoCredential)
				return
			}
			if claim.UserID != r.PathValue(param) {
				g.logger.Infow("cross-user access rejected",
					"user_id", claim.UserID,
					"path_user_id", r.PathValue(param),
					"method", r.Method,
				)
				apperror.Write(w, errIdentityScope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Owner chains Authenticate and RequireOwner around h.
func (g *Gateway) Owner(param string, h http.HandlerFunc) http.Handler {
	return g.Authenticate(g.RequireOwner(param)(h))
}

// bearerToken extracts the credential from "Bearer <token>". The scheme is
// matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
