package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"linguaai/internal/middleware"
	"linguaai/internal/model"
	"linguaai/internal/service/mocks"
)

// newExerciseRouter はテスト用のルーターを組み立てます。
// 認証は開発用ミドルウェア (X-User-IDヘッダー) で代替します。
func newExerciseRouter(svc *mocks.ExerciseService) *chi.Mux {
	h := NewExerciseHandler(svc)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.DevUserContextMiddleware)
		r.Post("/api/v1/exercises/next", h.GetNextExercise)
		r.Post("/api/v1/attempts/{attempt_id}/answer", h.SubmitAnswer)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, userID *uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestExerciseHandler_GetNextExercise(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()
	attemptID := uuid.New()

	validBody := fmt.Sprintf(`{"session_id":%q,"mode":"grammar","level":"beginner"}`, sessionID)

	tests := []struct {
		name       string
		userID     *uuid.UUID
		body       string
		setupMock  func(svc *mocks.ExerciseService)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "正常系: 次の問題を取得できる",
			userID: &userID,
			body:   validBody,
			setupMock: func(svc *mocks.ExerciseService) {
				svc.On("GetNextExercise", mock.Anything, userID, mock.MatchedBy(func(req *model.NextExerciseRequest) bool {
					return req.SessionID == sessionID && req.Mode == model.ModeGrammar && req.Level == model.LevelBeginner
				})).Return(&model.ExerciseResponse{
					AttemptID: attemptID,
					Item: &model.PoolItem{
						ItemID:        uuid.New(),
						Mode:          model.ModeGrammar,
						Level:         model.LevelBeginner,
						Kind:          model.KindCorrection,
						PromptText:    "She don't like tea.",
						CorrectAnswer: "She doesn't like tea.",
						Explanation:   "secret explanation",
					},
				}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "異常系: 認証ヘッダーなしは403",
			userID:     nil,
			body:       validBody,
			setupMock:  func(svc *mocks.ExerciseService) {},
			wantStatus: http.StatusForbidden,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "異常系: 不正なモードはバリデーションで400",
			userID:     &userID,
			body:       fmt.Sprintf(`{"session_id":%q,"mode":"listening","level":"beginner"}`, sessionID),
			setupMock:  func(svc *mocks.ExerciseService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "異常系: session_id欠落は400",
			userID:     &userID,
			body:       `{"mode":"grammar","level":"beginner"}`,
			setupMock:  func(svc *mocks.ExerciseService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "異常系: 壊れたJSONは400",
			userID:     &userID,
			body:       `{"session_id":`,
			setupMock:  func(svc *mocks.ExerciseService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST_BODY",
		},
		{
			name:   "異常系: 完了済みセッションは409",
			userID: &userID,
			body:   validBody,
			setupMock: func(svc *mocks.ExerciseService) {
				svc.On("GetNextExercise", mock.Anything, userID, mock.Anything).
					Return(nil, model.NewAppError("SESSION_COMPLETED", "このセッションはすでに完了しています。", "session_id", model.ErrConflict)).Once()
			},
			wantStatus: http.StatusConflict,
			wantCode:   "SESSION_COMPLETED",
		},
		{
			name:   "異常系: 生成AI障害は503",
			userID: &userID,
			body:   validBody,
			setupMock: func(svc *mocks.ExerciseService) {
				svc.On("GetNextExercise", mock.Anything, userID, mock.Anything).
					Return(nil, model.NewAppError("GENERATION_UNAVAILABLE", "生成AIの呼び出しに失敗しました", "", model.ErrGenerationUnavailable)).Once()
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "GENERATION_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewExerciseService(t)
			tt.setupMock(svc)
			router := newExerciseRouter(svc)

			rec := doJSON(t, router, http.MethodPost, "/api/v1/exercises/next", tt.userID, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				var errResp model.APIErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
				assert.Equal(t, tt.wantCode, errResp.Error.Code)
			}
		})
	}
}

// 正答と解説はレスポンスボディに漏れてはならない
func TestExerciseHandler_GetNextExercise_正答は漏れない(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()

	svc := mocks.NewExerciseService(t)
	svc.On("GetNextExercise", mock.Anything, userID, mock.Anything).Return(&model.ExerciseResponse{
		AttemptID: uuid.New(),
		Item: &model.PoolItem{
			ItemID:        uuid.New(),
			Mode:          model.ModeGrammar,
			Level:         model.LevelBeginner,
			Kind:          model.KindCorrection,
			PromptText:    "He go to school.",
			CorrectAnswer: "He goes to school.",
			Explanation:   "secret explanation",
			GrammarRule:   "secret rule",
		},
	}, nil).Once()

	router := newExerciseRouter(svc)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/exercises/next", &userID,
		fmt.Sprintf(`{"session_id":%q,"mode":"grammar","level":"beginner"}`, sessionID))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "He go to school.")
	assert.NotContains(t, body, "He goes to school.")
	assert.NotContains(t, body, "secret explanation")
	assert.NotContains(t, body, "secret rule")
}

func TestExerciseHandler_SubmitAnswer(t *testing.T) {
	userID := uuid.New()
	attemptID := uuid.New()

	tests := []struct {
		name       string
		path       string
		body       string
		setupMock  func(svc *mocks.ExerciseService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "正常系: 採点結果が返る",
			path: "/api/v1/attempts/" + attemptID.String() + "/answer",
			body: `{"answer":"He goes to school.","duration_ms":4200}`,
			setupMock: func(svc *mocks.ExerciseService) {
				svc.On("SubmitAnswer", mock.Anything, userID, attemptID, mock.MatchedBy(func(req *model.SubmitAnswerRequest) bool {
					return req.Answer == "He goes to school." && req.DurationMs == 4200
				})).Return(&model.GradedResult{
					AttemptID:     attemptID,
					IsCorrect:     true,
					CorrectAnswer: "He goes to school.",
					Explanation:   "Third person singular takes -es.",
				}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "異常系: attempt_idがUUIDでないなら400",
			path:       "/api/v1/attempts/not-a-uuid/answer",
			body:       `{"answer":"x"}`,
			setupMock:  func(svc *mocks.ExerciseService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PATH_PARAM",
		},
		{
			name:       "異常系: answer欠落は400",
			path:       "/api/v1/attempts/" + attemptID.String() + "/answer",
			body:       `{"duration_ms":100}`,
			setupMock:  func(svc *mocks.ExerciseService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name: "異常系: 二重採点は409",
			path: "/api/v1/attempts/" + attemptID.String() + "/answer",
			body: `{"answer":"x"}`,
			setupMock: func(svc *mocks.ExerciseService) {
				svc.On("SubmitAnswer", mock.Anything, userID, attemptID, mock.Anything).
					Return(nil, model.NewAppError("ALREADY_GRADED", "この問題はすでに採点済みです。", "attempt_id", model.ErrAlreadyGraded)).Once()
			},
			wantStatus: http.StatusConflict,
			wantCode:   "ALREADY_GRADED",
		},
		{
			name: "異常系: 存在しないAttemptは404",
			path: "/api/v1/attempts/" + attemptID.String() + "/answer",
			body: `{"answer":"x"}`,
			setupMock: func(svc *mocks.ExerciseService) {
				svc.On("SubmitAnswer", mock.Anything, userID, attemptID, mock.Anything).
					Return(nil, model.NewAppError("ATTEMPT_NOT_FOUND", "挑戦記録が見つかりません。", "attempt_id", model.ErrNotFound)).Once()
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "ATTEMPT_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewExerciseService(t)
			tt.setupMock(svc)
			router := newExerciseRouter(svc)

			rec := doJSON(t, router, http.MethodPost, tt.path, &userID, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				var errResp model.APIErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
				assert.Equal(t, tt.wantCode, errResp.Error.Code)
			} else {
				assert.True(t, strings.Contains(rec.Header().Get("Content-Type"), "application/json"))
			}
		})
	}
}
