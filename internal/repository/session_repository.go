//go:generate mockery --name SessionRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"linguaai/internal/middleware"
	"linguaai/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionRepository は学習セッションへのアクセスを提供します。
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *model.Session) error
	FindByID(ctx context.Context, db *gorm.DB, userID, sessionID uuid.UUID) (*model.Session, error)
	// ApplyResult は採点1回分の結果をセッション集計に加算します。
	// 採点の書き込みと同一トランザクションで呼び出してください。
	ApplyResult(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, scoreDelta int, durationDeltaMs int64, completionCap int) error
}

type gormSessionRepository struct{}

func NewGormSessionRepository() SessionRepository {
	return &gormSessionRepository{}
}

func (r *gormSessionRepository) Create(ctx context.Context, tx *gorm.DB, session *model.Session) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(session)
	if result.Error != nil {
		logger.Error("Error creating session in DB",
			"error", result.Error,
			"user_id", session.UserID.String(),
		)
		return fmt.Errorf("gormSessionRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormSessionRepository) FindByID(ctx context.Context, db *gorm.DB, userID, sessionID uuid.UUID) (*model.Session, error) {
	logger := middleware.GetLogger(ctx)
	var session model.Session
	result := db.WithContext(ctx).Where("user_id = ? AND session_id = ?", userID, sessionID).First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding session by ID in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"session_id", sessionID.String(),
		)
		return nil, fmt.Errorf("gormSessionRepository.FindByID: %w", result.Error)
	}
	return &session, nil
}

func (r *gormSessionRepository) ApplyResult(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, scoreDelta int, durationDeltaMs int64, completionCap int) error {
	logger := middleware.GetLogger(ctx)

	// 加算はSQL側で行う。アプリ側のスナップショットを書き戻すと、
	// 同一セッションへの並行した採点で片方の加算が消える。
	// completed は加算後の値に対して判定する（右辺は更新前の値を参照する）。
	result := tx.WithContext(ctx).Model(&model.Session{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"exercises_completed": gorm.Expr("exercises_completed + 1"),
			"total_score":         gorm.Expr("total_score + ?", scoreDelta),
			"total_duration_ms":   gorm.Expr("total_duration_ms + ?", durationDeltaMs),
			"completed":           gorm.Expr("exercises_completed + 1 >= ?", completionCap),
		})
	if result.Error != nil {
		logger.Error("Error applying result to session in DB",
			"error", result.Error,
			"session_id", sessionID.String(),
		)
		return fmt.Errorf("gormSessionRepository.ApplyResult: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
