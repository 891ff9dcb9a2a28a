// internal/model/attempt.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt はあるユーザーがあるプール問題に1回挑戦した記録です。
// 採点（is_correct の設定）はちょうど1回だけ行われ、以降は変更されません。
type Attempt struct {
	AttemptID  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"attempt_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	SessionID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	PoolItemID uuid.UUID  `gorm:"type:uuid;not null;index" json:"pool_item_id"`
	UserAnswer *string    `json:"user_answer,omitempty"`
	IsCorrect  *bool      `json:"is_correct,omitempty"` // 未採点の間は NULL
	CreatedAt  time.Time  `json:"created_at"`
	GradedAt   *time.Time `json:"graded_at,omitempty"`

	// 関連 (Preload用)
	PoolItem *PoolItem `gorm:"foreignKey:PoolItemID;references:ItemID" json:"-"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// 回答送信リクエストDTO
type SubmitAnswerRequest struct {
	Answer     string `json:"answer" validate:"required"`
	DurationMs int64  `json:"duration_ms" validate:"omitempty,gte=0"` // クライアント計測の経過時間
}

// GradedResult は採点結果のレスポンスDTOです。
type GradedResult struct {
	AttemptID     uuid.UUID `json:"attempt_id"`
	IsCorrect     bool      `json:"is_correct"`
	CorrectAnswer string    `json:"correct_answer"`
	Explanation   string    `json:"explanation,omitempty"`
	GrammarRule   string    `json:"grammar_rule,omitempty"`
}
