package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-daystatus/internal/apperror"
)

// PathParam is the route parameter holding the owner's user id.
const PathParam = "userId"

var (
	errMissingStatusData = errors.New("statusData is required")
	errNullStatusValue   = errors.New("statusData values must be strings")
)

// Handler exposes the status endpoints. Owner routes expect the access
// gateway to have run already.
type Handler struct {
	store  *Store
	logger *zap.SugaredLogger
}

func NewHandler(store *Store, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{store: store, logger: logger}
}

// DataResponse wraps a merged status map.
type DataResponse struct {
	Data map[string]string `json:"data"`
}

// ReplaceRequest is the body of a replace-all call. Values are pointers so
// a JSON null can be told apart from "".
type ReplaceRequest struct {
	StatusData map[string]*string `json:"statusData"`
}

// values returns the status map, rejecting null entries.
func (req ReplaceRequest) values() (map[string]string, error) {
	if req.StatusData == nil {
		return nil, errMissingStatusData
	}
	out := make(map[string]string, len(req.StatusData))
	for k, v := range req.StatusData {
		if v == nil {
			return nil, fmt.Errorf("%w: key %q is null", errNullStatusValue, k)
		}
		out[k] = *v
	}
	return out, nil
}

func (h *Handler) GetOwn(w http.ResponseWriter, r *http.Request) {
	apperror.WriteJSON(w, http.StatusOK, DataResponse{Data: h.store.GetOwn(r.Context(), r.PathValue(PathParam))})
}

func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	var req ReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid status payload", "err", err)
		apperror.Write(w, apperror.Validation(err))
		return
	}
	data, err := req.values()
	if err != nil {
		h.logger.Debugw("invalid status payload", "err", err)
		apperror.Write(w, apperror.Validation(err))
		return
	}
	userID := r.PathValue(PathParam)
	if err := h.store.ReplaceAll(r.Context(), userID, data); err != nil {
		h.logger.Errorw("status replace failed", "user_id", userID, "err", err)
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Public(w http.ResponseWriter, r *http.Request) {
	apperror.WriteJSON(w, http.StatusOK, DataResponse{Data: h.store.GetPublic(r.Context())})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	apperror.WriteJSON(w, http.StatusOK, h.store.Summary(r.Context()))
}

func (h *Handler) Labels(w http.ResponseWriter, r *http.Request) {
	apperror.WriteJSON(w, http.StatusOK, map[string][]string{"labels": h.store.Labels()})
}
