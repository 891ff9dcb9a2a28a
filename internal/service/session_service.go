package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"linguaai/internal/middleware"
	"linguaai/internal/model"
	"linguaai/internal/repository"
)

// SessionService は学習セッションのユースケースを提供します。
type SessionService interface {
	StartSession(ctx context.Context, userID uuid.UUID) (*model.Session, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*model.Session, error)
}

type sessionService struct {
	db          *gorm.DB
	sessionRepo repository.SessionRepository
}

func NewSessionService(db *gorm.DB, sessionRepo repository.SessionRepository) SessionService {
	return &sessionService{db: db, sessionRepo: sessionRepo}
}

func (s *sessionService) StartSession(ctx context.Context, userID uuid.UUID) (*model.Session, error) {
	logger := middleware.GetLogger(ctx)

	session := &model.Session{
		SessionID: uuid.New(),
		UserID:    userID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.sessionRepo.Create(ctx, tx, session)
	})
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", fmt.Errorf("StartSession: %w", err))
	}

	logger.Info("セッションを開始しました",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.SessionID.String()),
	)

	return session, nil
}

func (s *sessionService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, s.db, userID, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("SESSION_NOT_FOUND", "セッションが見つかりません。", "session_id", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", fmt.Errorf("GetSession: %w", err))
	}
	return session, nil
}
