package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"linguaai/internal/middleware"
	"linguaai/internal/model"
	"linguaai/internal/service"
	"linguaai/internal/webutil"
)

// SessionHandler は学習セッションのHTTPハンドラです。
type SessionHandler struct {
	service service.SessionService
}

func NewSessionHandler(s service.SessionService) *SessionHandler {
	return &SessionHandler{service: s}
}

// StartSession は POST /api/v1/sessions に対応します。
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	session, err := h.service.StartSession(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, session)
}

// GetSession は GET /api/v1/sessions/{session_id} に対応します。
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "session_id"))
	if err != nil {
		appErr := model.NewAppError("INVALID_PATH_PARAM", "セッションIDの形式が正しくありません。", "session_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	session, err := h.service.GetSession(r.Context(), userID, sessionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, session)
}
