package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguaai/internal/model"
	"linguaai/internal/repository"
)

func TestSessionService_StartSessionとGetSession(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(db, repository.NewGormSessionRepository())
	userID := uuid.New()

	created, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.SessionID)
	assert.Zero(t, created.ExercisesCompleted)
	assert.Zero(t, created.TotalScore)
	assert.False(t, created.Completed)

	got, err := svc.GetSession(context.Background(), userID, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, created.SessionID, got.SessionID)
}

func TestSessionService_GetSession_異常系(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(db, repository.NewGormSessionRepository())
	userID := uuid.New()

	t.Run("異常系: 存在しないセッション", func(t *testing.T) {
		_, err := svc.GetSession(context.Background(), userID, uuid.New())
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("異常系: 他人のセッションは取得できない", func(t *testing.T) {
		other, err := svc.StartSession(context.Background(), uuid.New())
		require.NoError(t, err)

		_, err = svc.GetSession(context.Background(), userID, other.SessionID)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
