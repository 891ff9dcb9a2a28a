//go:generate mockery --name AttemptRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linguaai/internal/middleware"
	"linguaai/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttemptRepository はユーザーごとの挑戦記録へのアクセスを提供します。
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *model.Attempt) error
	FindByID(ctx context.Context, db *gorm.DB, userID, attemptID uuid.UUID) (*model.Attempt, error)
	// MarkGraded は未採点のAttemptにだけ採点結果を書き込みます。
	// すでに採点済みの場合は model.ErrAlreadyGraded を返します。
	MarkGraded(ctx context.Context, tx *gorm.DB, userID, attemptID uuid.UUID, userAnswer string, isCorrect bool) error
	// ListAttemptedItemIDs はユーザーが挑戦済みのプール問題IDを返します（除外リスト用）。
	ListAttemptedItemIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
}

type gormAttemptRepository struct{}

func NewGormAttemptRepository() AttemptRepository {
	return &gormAttemptRepository{}
}

func (r *gormAttemptRepository) Create(ctx context.Context, tx *gorm.DB, attempt *model.Attempt) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(attempt)
	if result.Error != nil {
		logger.Error("Error creating attempt in DB",
			"error", result.Error,
			"user_id", attempt.UserID.String(),
			"pool_item_id", attempt.PoolItemID.String(),
		)
		return fmt.Errorf("gormAttemptRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormAttemptRepository) FindByID(ctx context.Context, db *gorm.DB, userID, attemptID uuid.UUID) (*model.Attempt, error) {
	logger := middleware.GetLogger(ctx)
	var attempt model.Attempt
	result := db.WithContext(ctx).Where("user_id = ? AND attempt_id = ?", userID, attemptID).First(&attempt)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding attempt by ID in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"attempt_id", attemptID.String(),
		)
		return nil, fmt.Errorf("gormAttemptRepository.FindByID: %w", result.Error)
	}
	return &attempt, nil
}

func (r *gormAttemptRepository) MarkGraded(ctx context.Context, tx *gorm.DB, userID, attemptID uuid.UUID, userAnswer string, isCorrect bool) error {
	logger := middleware.GetLogger(ctx)
	now := time.Now()

	// is_correct IS NULL を条件に含めることで、並行した二重採点でも
	// 勝者がちょうど1つになる（条件付きUPDATE）。
	result := tx.WithContext(ctx).Model(&model.Attempt{}).
		Where("user_id = ? AND attempt_id = ? AND is_correct IS NULL", userID, attemptID).
		Updates(map[string]interface{}{
			"user_answer": userAnswer,
			"is_correct":  isCorrect,
			"graded_at":   now,
		})
	if result.Error != nil {
		logger.Error("Error marking attempt graded in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"attempt_id", attemptID.String(),
		)
		return fmt.Errorf("gormAttemptRepository.MarkGraded: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// 行が存在しないのか、すでに採点済みなのかを切り分ける
		var count int64
		if err := tx.WithContext(ctx).Model(&model.Attempt{}).
			Where("user_id = ? AND attempt_id = ?", userID, attemptID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("gormAttemptRepository.MarkGraded: %w", err)
		}
		if count == 0 {
			return model.ErrNotFound
		}
		return model.ErrAlreadyGraded
	}
	return nil
}

func (r *gormAttemptRepository) ListAttemptedItemIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	logger := middleware.GetLogger(ctx)
	var ids []uuid.UUID
	result := db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("user_id = ?", userID).
		Pluck("pool_item_id", &ids)
	if result.Error != nil {
		logger.Error("Error listing attempted item IDs in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormAttemptRepository.ListAttemptedItemIDs: %w", result.Error)
	}
	return ids, nil
}
