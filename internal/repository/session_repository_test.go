package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguaai/internal/model"
)

func TestGormSessionRepository_CreateとFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSessionRepository()
	ctx := context.Background()

	userID := uuid.New()
	session := &model.Session{SessionID: uuid.New(), UserID: userID}
	require.NoError(t, repo.Create(ctx, db, session))

	got, err := repo.FindByID(ctx, db, userID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, got.SessionID)
	assert.Zero(t, got.ExercisesCompleted)
	assert.False(t, got.Completed)

	t.Run("異常系: 他人のセッションはErrNotFound", func(t *testing.T) {
		_, err := repo.FindByID(ctx, db, uuid.New(), session.SessionID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestGormSessionRepository_ApplyResult(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSessionRepository()
	ctx := context.Background()

	userID := uuid.New()
	session := &model.Session{SessionID: uuid.New(), UserID: userID}
	require.NoError(t, repo.Create(ctx, db, session))

	require.NoError(t, repo.ApplyResult(ctx, db, session.SessionID, 10, 5000, 20))

	got, err := repo.FindByID(ctx, db, userID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ExercisesCompleted)
	assert.Equal(t, 10, got.TotalScore)
	assert.Equal(t, int64(5000), got.TotalDurationMs)
	assert.False(t, got.Completed)

	t.Run("正常系: 上限に達するとcompletedになる", func(t *testing.T) {
		s := &model.Session{SessionID: uuid.New(), UserID: userID}
		require.NoError(t, repo.Create(ctx, db, s))

		require.NoError(t, repo.ApplyResult(ctx, db, s.SessionID, 0, 0, 2))
		got, err := repo.FindByID(ctx, db, userID, s.SessionID)
		require.NoError(t, err)
		assert.False(t, got.Completed)

		require.NoError(t, repo.ApplyResult(ctx, db, s.SessionID, 0, 0, 2))
		got, err = repo.FindByID(ctx, db, userID, s.SessionID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.ExercisesCompleted)
		assert.True(t, got.Completed)
	})

	t.Run("異常系: 存在しないセッションはErrNotFound", func(t *testing.T) {
		err := repo.ApplyResult(ctx, db, uuid.New(), 0, 0, 20)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

// 同一セッションに対する並行した採点は、それぞれ古いスナップショットしか
// 持っていなくても加算を失わないこと。加算はSQL側で行われる。
func TestGormSessionRepository_ApplyResult_加算は失われない(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSessionRepository()
	ctx := context.Background()

	userID := uuid.New()
	session := &model.Session{SessionID: uuid.New(), UserID: userID}
	require.NoError(t, repo.Create(ctx, db, session))

	// 2つの採点処理がどちらも exercises_completed=0 の状態を読んでいる
	snapshot1, err := repo.FindByID(ctx, db, userID, session.SessionID)
	require.NoError(t, err)
	snapshot2, err := repo.FindByID(ctx, db, userID, session.SessionID)
	require.NoError(t, err)
	require.Zero(t, snapshot1.ExercisesCompleted)
	require.Zero(t, snapshot2.ExercisesCompleted)

	require.NoError(t, repo.ApplyResult(ctx, db, session.SessionID, 10, 3000, 20))
	require.NoError(t, repo.ApplyResult(ctx, db, session.SessionID, 0, 2000, 20))

	got, err := repo.FindByID(ctx, db, userID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ExercisesCompleted)
	assert.Equal(t, 10, got.TotalScore)
	assert.Equal(t, int64(5000), got.TotalDurationMs)
}
