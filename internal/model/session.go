// internal/model/session.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Session は学習セッションを表し、セッション内のAttemptの集計値を持ちます。
// 集計値は採点トランザクションの中で加算されます。
type Session struct {
	SessionID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"session_id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ExercisesCompleted int       `gorm:"not null;default:0" json:"exercises_completed"`
	TotalScore         int       `gorm:"not null;default:0" json:"total_score"`
	TotalDurationMs    int64     `gorm:"not null;default:0" json:"total_duration_ms"`
	Completed          bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}
