//go:generate mockery --name PoolRepository --output ./mocks --outpkg mocks --case=underscore
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

// PoolRepository は共有問題プールへのアクセスを提供します。
// プールは追記専用で、Update / Delete は存在しません。
type PoolRepository interface {
	Insert(ctx context.Context, tx *gorm.DB, item *model.PoolItem) error
	FindByID(ctx context.Context, db *gorm.DB, itemID uuid.UUID) (*model.PoolItem, error)
	// FindCandidates はモード・レベルが一致し、excludedIDs に含まれない問題を返します。
	FindCandidates(ctx context.Context, db *gorm.DB, mode model.ExerciseMode, level model.Level, excludedIDs []uuid.UUID, limit int) ([]*model.PoolItem, error)
	// ListPromptTexts は指定した問題IDのうち、モード・レベルが一致するものの
	// 出題文を返します（生成プロンプトの除外ヒント用）。
	ListPromptTexts(ctx context.Context, db *gorm.DB, mode model.ExerciseMode, level model.Level, itemIDs []uuid.UUID) ([]string, error)
}

type gormPoolRepository struct{}

func NewGormPoolRepository() PoolRepository {
	return &gormPoolRepository{}
}

func (r *gormPoolRepository) Insert(ctx context.Context, tx *gorm.DB, item *model.PoolItem) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(item)
	if result.Error != nil {
		logger.Error("Error inserting pool item in DB",
			"error", result.Error,
			"mode", string(item.Mode),
			"level", string(item.Level),
		)
		return fmt.Errorf("gormPoolRepository.Insert: %w", result.Error)
	}
	return nil
}

func (r *gormPoolRepository) FindByID(ctx context.Context, db *gorm.DB, itemID uuid.UUID) (*model.PoolItem, error) {
	logger := middleware.GetLogger(ctx)
	var item model.PoolItem
	result := db.WithContext(ctx).Where("item_id = ?", itemID).First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding pool item by ID in DB",
			"error", result.Error,
			"item_id", itemID.String(),
		)
		return nil, fmt.Errorf("gormPoolRepository.FindByID: %w", result.Error)
	}
	return &item, nil
}

func (r *gormPoolRepository) FindCandidates(ctx context.Context, db *gorm.DB, mode model.ExerciseMode, level model.Level, excludedIDs []uuid.UUID, limit int) ([]*model.PoolItem, error) {
	logger := middleware.GetLogger(ctx)
	var items []*model.PoolItem

	query := db.WithContext(ctx).
		Where("mode = ? AND level = ?", mode, level).
		Order("created_at ASC")
	if len(excludedIDs) > 0 {
		query = query.Where("item_id NOT IN ?", excludedIDs)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	result := query.Find(&items)
	if result.Error != nil {
		logger.Error("Error finding candidate pool items in DB",
			"error", result.Error,
			"mode", string(mode),
			"level", string(level),
			"excluded_count", len(excludedIDs),
		)
		return nil, fmt.Errorf("gormPoolRepository.FindCandidates: %w", result.Error)
	}
	return items, nil
}

func (r *gormPoolRepository) ListPromptTexts(ctx context.Context, db *gorm.DB, mode model.ExerciseMode, level model.Level, itemIDs []uuid.UUID) ([]string, error) {
	logger := middleware.GetLogger(ctx)
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var texts []string
	result := db.WithContext(ctx).
		Model(&model.PoolItem{}).
		Where("mode = ? AND level = ?", mode, level).
		Where("item_id IN ?", itemIDs).
		Order("created_at DESC").
		Pluck("prompt_text", &texts)
	if result.Error != nil {
		logger.Error("Error listing prompt texts in DB",
			"error", result.Error,
			"item_count", len(itemIDs),
		)
		return nil, fmt.Errorf("gormPoolRepository.ListPromptTexts: %w", result.Error)
	}
	return texts, nil
}
