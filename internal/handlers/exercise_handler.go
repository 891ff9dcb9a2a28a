package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"linguaai/internal/middleware"
	"linguaai/internal/model"
	"linguaai/internal/service"
	"linguaai/internal/webutil"
)

// ExerciseHandler は出題と採点のHTTPハンドラです。
type ExerciseHandler struct {
	service service.ExerciseService
}

func NewExerciseHandler(s service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{service: s}
}

// GetNextExercise は POST /api/v1/exercises/next に対応します。
func (h *ExerciseHandler) GetNextExercise(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.NextExerciseRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		webutil.HandleError(w, logger, translateValidationError(err))
		return
	}

	resp, err := h.service.GetNextExercise(r.Context(), userID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

// SubmitAnswer は POST /api/v1/attempts/{attempt_id}/answer に対応します。
func (h *ExerciseHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	attemptID, err := uuid.Parse(chi.URLParam(r, "attempt_id"))
	if err != nil {
		appErr := model.NewAppError("INVALID_PATH_PARAM", "挑戦IDの形式が正しくありません。", "attempt_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	var req model.SubmitAnswerRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		webutil.HandleError(w, logger, translateValidationError(err))
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), userID, attemptID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, result)
}

// translateValidationError はバリデーションエラーの最初の1件を
// 翻訳済みメッセージ付きのAppErrorに変換します。
func translateValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return model.NewAppError("VALIDATION_ERROR", fe.Translate(webutil.Trans), fe.Field(), model.ErrInvalidInput)
	}
	return model.NewAppError("VALIDATION_ERROR", "入力値が正しくありません。", "", model.ErrInvalidInput)
}
