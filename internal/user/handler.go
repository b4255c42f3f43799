package user

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-daystatus/internal/apperror"
)

// Handler exposes HTTP endpoints for user operations (signup / login).
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{svc: svc, logger: logger}
}

// SignupRequest request body for signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by both signup and login.
type SessionResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid signup payload", "err", err)
		apperror.Write(w, apperror.Validation(err))
		return
	}
	sess, err := h.svc.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.fail(w, "signup failed", err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, SessionResponse{UserID: sess.UserID, Token: sess.Token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		apperror.Write(w, apperror.Validation(err))
		return
	}
	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, "login failed", err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, SessionResponse{UserID: sess.UserID, Token: sess.Token})
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindStorage, apperror.KindInternal:
		h.logger.Errorw(msg, "err", err)
	default:
		h.logger.Debugw(msg, "err", err)
	}
	apperror.Write(w, err)
}
