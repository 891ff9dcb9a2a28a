// internal/model/error.go
package model

import "errors"

// アプリケーション固有のエラー
var (
	ErrNotFound              = errors.New("resource not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInternalServer        = errors.New("internal server error")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("resource conflict")
	ErrAlreadyGraded         = errors.New("attempt already graded")          // 二重採点の防止用
	ErrGenerationUnavailable = errors.New("exercise generation unavailable") // 生成AI側の失敗（リトライしない）
)

// コンテキストキー
type ctxKey string

const UserIDKey ctxKey = "user_id"

// ErrorDetail はAPIエラーレスポンスに含める詳細情報です。
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse はAPIエラーレスポンスの構造体
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError はエラーコード・ユーザー向けメッセージ・原因エラーをまとめた
// アプリケーション共通のエラー型です。webutil.HandleError がHTTPステータスに変換します。
type AppError struct {
	Detail ErrorDetail
	Err    error // 判定用のセンチネルエラーをラップする
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Detail.Code + ": " + e.Detail.Message + ": " + e.Err.Error()
	}
	return e.Detail.Code + ": " + e.Detail.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
		Err: err,
	}
}
