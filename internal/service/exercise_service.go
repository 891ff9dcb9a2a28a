package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"linguaai/internal/config"
	"linguaai/internal/generator"
	"linguaai/internal/middleware"
	"linguaai/internal/model"
	"linguaai/internal/repository"
)

// ExerciseService は出題と採点のユースケースを提供します。
type ExerciseService interface {
	// GetNextExercise は次の問題を1件選び、未採点のAttemptを作成して返します。
	// プールに未挑戦の問題がなければ生成AIで新しい問題を作り、プールへ追加します。
	GetNextExercise(ctx context.Context, userID uuid.UUID, req *model.NextExerciseRequest) (*model.ExerciseResponse, error)
	// SubmitAnswer は回答を採点し、セッション集計を更新します。
	// 同じAttemptへの2回目以降の回答は model.ErrAlreadyGraded で拒否します。
	SubmitAnswer(ctx context.Context, userID, attemptID uuid.UUID, req *model.SubmitAnswerRequest) (*model.GradedResult, error)
}

type exerciseService struct {
	db          *gorm.DB
	poolRepo    repository.PoolRepository
	attemptRepo repository.AttemptRepository
	sessionRepo repository.SessionRepository
	gen         generator.Generator
	cfg         *config.Config

	// randIntn はテストで差し替えるための乱数フックです。
	randIntn func(n int) int
}

func NewExerciseService(
	db *gorm.DB,
	poolRepo repository.PoolRepository,
	attemptRepo repository.AttemptRepository,
	sessionRepo repository.SessionRepository,
	gen generator.Generator,
	cfg *config.Config,
) ExerciseService {
	return &exerciseService{
		db:          db,
		poolRepo:    poolRepo,
		attemptRepo: attemptRepo,
		sessionRepo: sessionRepo,
		gen:         gen,
		cfg:         cfg,
		randIntn:    rand.IntN,
	}
}

func (s *exerciseService) GetNextExercise(ctx context.Context, userID uuid.UUID, req *model.NextExerciseRequest) (*model.ExerciseResponse, error) {
	logger := middleware.GetLogger(ctx)

	// セッションの存在と所有者を確認する
	session, err := s.sessionRepo.FindByID(ctx, s.db, userID, req.SessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("SESSION_NOT_FOUND", "セッションが見つかりません。", "session_id", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", fmt.Errorf("GetNextExercise: %w", err))
	}
	if session.Completed {
		return nil, model.NewAppError("SESSION_COMPLETED", "このセッションはすでに完了しています。", "session_id", model.ErrConflict)
	}

	// 挑戦済みの問題は候補から除外する
	excludedIDs, err := s.attemptRepo.ListAttemptedItemIDs(ctx, s.db, userID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", fmt.Errorf("GetNextExercise: %w", err))
	}

	candidates, err := s.poolRepo.FindCandidates(ctx, s.db, req.Mode, req.Level, excludedIDs, s.cfg.App.CandidateLimit)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", fmt.Errorf("GetNextExercise: %w", err))
	}

	var item *model.PoolItem
	generated := false

	if len(candidates) > 0 {
		// 候補から一様ランダムに1件選ぶ
		item = candidates[s.randIntn(len(candidates))]
	} else {
		// プールが尽きたので生成AIにフォールバックする。
		// 生成はトランザクションの外で行う（外部API呼び出し中にDBロックを持たない）。
		// 除外ヒントには要求されたモード・レベルの既出問題だけを載せる。
		prompts, err := s.poolRepo.ListPromptTexts(ctx, s.db, req.Mode, req.Level, excludedIDs)
		if err != nil {
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", fmt.Errorf("GetNextExercise: %w", err))
		}

		item, err = s.gen.Generate(ctx, generator.GenerateInput{
			Mode:            req.Mode,
			Level:           req.Level,
			ExcludedPrompts: prompts,
		})
		if err != nil {
			// generator側でAppError化済み
			return nil, err
		}
		item.ItemID = uuid.New()
		generated = true
	}

	attempt := &model.Attempt{
		AttemptID:  uuid.New(),
		UserID:     userID,
		SessionID:  session.SessionID,
		PoolItemID: item.ItemID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if generated {
			if err := s.poolRepo.Insert(ctx, tx, item); err != nil {
				return err
			}
		}
		return s.attemptRepo.Create(ctx, tx, attempt)
	})
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", fmt.Errorf("GetNextExercise: %w", err))
	}

	logger.Info("次の問題を払い出しました",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.SessionID.String()),
		slog.String("item_id", item.ItemID.String()),
		slog.Bool("generated", generated),
	)

	return &model.ExerciseResponse{
		AttemptID: attempt.AttemptID,
		Item:      item,
	}, nil
}

func (s *exerciseService) SubmitAnswer(ctx context.Context, userID, attemptID uuid.UUID, req *model.SubmitAnswerRequest) (*model.GradedResult, error) {
	logger := middleware.GetLogger(ctx)

	var result *model.GradedResult

	// 採点の書き込みとセッション集計の加算は必ず同一トランザクションで行う
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := s.attemptRepo.FindByID(ctx, tx, userID, attemptID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("ATTEMPT_NOT_FOUND", "挑戦記録が見つかりません。", "attempt_id", model.ErrNotFound)
			}
			return err
		}

		item, err := s.poolRepo.FindByID(ctx, tx, attempt.PoolItemID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("ITEM_NOT_FOUND", "問題が見つかりません。", "", model.ErrNotFound)
			}
			return err
		}

		isCorrect := s.gradeAnswer(req.Answer, item.CorrectAnswer)

		if err := s.attemptRepo.MarkGraded(ctx, tx, userID, attemptID, req.Answer, isCorrect); err != nil {
			if errors.Is(err, model.ErrAlreadyGraded) {
				return model.NewAppError("ALREADY_GRADED", "この問題はすでに採点済みです。", "attempt_id", model.ErrAlreadyGraded)
			}
			return err
		}

		// 集計の加算はリポジトリ内のSQLで行う（スナップショットの書き戻し禁止）。
		// Attemptはユーザー所有が確認済みなので、そのSessionIDをそのまま使える。
		scoreDelta := 0
		if isCorrect {
			scoreDelta = s.cfg.App.PointsPerCorrect
		}
		if err := s.sessionRepo.ApplyResult(ctx, tx, attempt.SessionID, scoreDelta, req.DurationMs, s.cfg.App.SessionExerciseCap); err != nil {
			return err
		}

		result = &model.GradedResult{
			AttemptID:     attempt.AttemptID,
			IsCorrect:     isCorrect,
			CorrectAnswer: item.CorrectAnswer,
			Explanation:   item.Explanation,
			GrammarRule:   item.GrammarRule,
		}
		return nil
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", fmt.Errorf("SubmitAnswer: %w", err))
	}

	logger.Info("回答を採点しました",
		slog.String("user_id", userID.String()),
		slog.String("attempt_id", attemptID.String()),
		slog.Bool("is_correct", result.IsCorrect),
	)

	return result, nil
}

// gradeAnswer は回答と正答を比較します。
// normalize_answers が有効な場合は前後の空白と大文字小文字の違いを無視します。
func (s *exerciseService) gradeAnswer(answer, correct string) bool {
	if s.cfg.App.NormalizeAnswers {
		return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(correct))
	}
	return answer == correct
}
