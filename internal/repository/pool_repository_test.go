package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"linguaai/internal/model"
)

// setupTestDB はテストごとに独立したインメモリSQLiteのDBを返します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func newPoolItem(mode model.ExerciseMode, level model.Level, prompt string) *model.PoolItem {
	item := &model.PoolItem{
		ItemID:        uuid.New(),
		Mode:          mode,
		Level:         level,
		Kind:          model.KindCorrection,
		PromptText:    prompt,
		CorrectAnswer: "answer of " + prompt,
	}
	if mode == model.ModeVocabulary {
		item.Kind = model.KindContext
	}
	return item
}

func TestGormPoolRepository_InsertとFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPoolRepository()
	ctx := context.Background()

	item := &model.PoolItem{
		ItemID:          uuid.New(),
		Mode:            model.ModeVocabulary,
		Level:           model.LevelIntermediate,
		Kind:            model.KindSynonym,
		PromptText:      "happy",
		CorrectAnswer:   "glad",
		Options:         model.StringList{"glad", "angry", "tired", "hungry"},
		Explanation:     "both mean feeling pleasure",
		ExampleSentence: "I am happy to see you.",
	}
	require.NoError(t, repo.Insert(ctx, db, item))

	got, err := repo.FindByID(ctx, db, item.ItemID)
	require.NoError(t, err)

	// 選択肢(JSON格納)を含め、全フィールドが往復できること
	assert.Equal(t, item.ItemID, got.ItemID)
	assert.Equal(t, model.KindSynonym, got.Kind)
	assert.Equal(t, model.StringList{"glad", "angry", "tired", "hungry"}, got.Options)
	assert.Equal(t, "glad", got.CorrectAnswer)
	assert.Equal(t, "I am happy to see you.", got.ExampleSentence)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGormPoolRepository_FindByID_存在しない場合(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPoolRepository()

	_, err := repo.FindByID(context.Background(), db, uuid.New())

	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGormPoolRepository_FindCandidates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPoolRepository()
	ctx := context.Background()

	a := newPoolItem(model.ModeGrammar, model.LevelBeginner, "a")
	b := newPoolItem(model.ModeGrammar, model.LevelBeginner, "b")
	c := newPoolItem(model.ModeGrammar, model.LevelAdvanced, "c")
	d := newPoolItem(model.ModeVocabulary, model.LevelBeginner, "d")
	for _, item := range []*model.PoolItem{a, b, c, d} {
		require.NoError(t, repo.Insert(ctx, db, item))
	}

	t.Run("正常系: モードとレベルで絞り込む", func(t *testing.T) {
		items, err := repo.FindCandidates(ctx, db, model.ModeGrammar, model.LevelBeginner, nil, 10)
		require.NoError(t, err)
		require.Len(t, items, 2)
	})

	t.Run("正常系: 除外IDを候補から外す", func(t *testing.T) {
		items, err := repo.FindCandidates(ctx, db, model.ModeGrammar, model.LevelBeginner, []uuid.UUID{a.ItemID}, 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, b.ItemID, items[0].ItemID)
	})

	t.Run("正常系: すべて除外されると空になる", func(t *testing.T) {
		items, err := repo.FindCandidates(ctx, db, model.ModeGrammar, model.LevelBeginner, []uuid.UUID{a.ItemID, b.ItemID}, 10)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("正常系: limitが効く", func(t *testing.T) {
		items, err := repo.FindCandidates(ctx, db, model.ModeGrammar, model.LevelBeginner, nil, 1)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestGormPoolRepository_ListPromptTexts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPoolRepository()
	ctx := context.Background()

	a := newPoolItem(model.ModeGrammar, model.LevelBeginner, "first")
	b := newPoolItem(model.ModeGrammar, model.LevelBeginner, "second")
	vocab := newPoolItem(model.ModeVocabulary, model.LevelBeginner, "vocab word")
	advanced := newPoolItem(model.ModeGrammar, model.LevelAdvanced, "advanced prompt")
	for _, item := range []*model.PoolItem{a, b, vocab, advanced} {
		require.NoError(t, repo.Insert(ctx, db, item))
	}
	allIDs := []uuid.UUID{a.ItemID, b.ItemID, vocab.ItemID, advanced.ItemID}

	// モード・レベルが一致する出題文だけが返る
	texts, err := repo.ListPromptTexts(ctx, db, model.ModeGrammar, model.LevelBeginner, allIDs)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first", "second"}, texts)

	texts, err = repo.ListPromptTexts(ctx, db, model.ModeVocabulary, model.LevelBeginner, allIDs)
	require.NoError(t, err)
	assert.Equal(t, []string{"vocab word"}, texts)

	// 空のID列では問い合わせない
	texts, err = repo.ListPromptTexts(ctx, db, model.ModeGrammar, model.LevelBeginner, nil)
	require.NoError(t, err)
	assert.Empty(t, texts)
}
