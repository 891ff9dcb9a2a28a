// internal/model/pool_item.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ExerciseMode は出題モード（文法 / 語彙）です。
type ExerciseMode string

const (
	ModeGrammar    ExerciseMode = "grammar"
	ModeVocabulary ExerciseMode = "vocabulary"
)

func (m ExerciseMode) Valid() bool {
	return m == ModeGrammar || m == ModeVocabulary
}

// Level は習熟度レベルです。プールはレベル単位で分割されます。
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

func (l Level) Valid() bool {
	return l == LevelBeginner || l == LevelIntermediate || l == LevelAdvanced
}

// ExerciseKind は問題の形式です。モードごとに取りうる値が異なります。
type ExerciseKind string

const (
	// grammar モード
	KindCorrection ExerciseKind = "correction"
	KindFillBlank  ExerciseKind = "fill_blank"
	KindQuiz       ExerciseKind = "quiz"
	// vocabulary モード
	KindSynonym     ExerciseKind = "synonym"
	KindAntonym     ExerciseKind = "antonym"
	KindContext     ExerciseKind = "context"
	KindRecognition ExerciseKind = "recognition"
)

// KindsForMode はモードごとの有効な問題形式を返します。
func KindsForMode(mode ExerciseMode) []ExerciseKind {
	switch mode {
	case ModeGrammar:
		return []ExerciseKind{KindCorrection, KindFillBlank, KindQuiz}
	case ModeVocabulary:
		return []ExerciseKind{KindSynonym, KindAntonym, KindContext, KindRecognition}
	default:
		return nil
	}
}

// IsMultipleChoice は選択肢を持つ問題形式かどうかを返します。
func (k ExerciseKind) IsMultipleChoice() bool {
	switch k {
	case KindQuiz, KindSynonym, KindAntonym, KindRecognition:
		return true
	default:
		return false
	}
}

// StringList は文字列スライスをJSONとしてTEXTカラムに保存するための型です。
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("StringList.Value: %w", err)
	}
	return string(b), nil
}

func (s *StringList) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("StringList.Scan: unsupported type %T", src)
	}
	if len(b) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(b, s)
}

// PoolItem は共有プールに属する再利用可能な問題1件を表します。
// 一度作成されたら変更されません（追記専用）。
type PoolItem struct {
	ItemID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"item_id"`
	Mode            ExerciseMode `gorm:"not null;index:idx_pool_mode_level" json:"mode"`
	Level           Level        `gorm:"not null;index:idx_pool_mode_level" json:"level"`
	Kind            ExerciseKind `gorm:"column:exercise_kind;not null" json:"exercise_kind"`
	PromptText      string       `gorm:"not null" json:"prompt_text"` // 出題文（例文・単語など）
	CorrectAnswer   string       `gorm:"not null" json:"-"`           // クライアントには返さない
	Options         StringList   `gorm:"type:text" json:"options,omitempty"`
	Explanation     string       `json:"-"` // 採点結果と一緒に返す解説
	GrammarRule     string       `json:"-"`
	ExampleSentence string       `json:"example_sentence,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

func (PoolItem) TableName() string {
	return "pool_items"
}

// Validate はプールへ保存できる状態かを検証します。
// 選択式の問題は正答が選択肢に含まれている必要があります。
func (p *PoolItem) Validate() error {
	if !p.Mode.Valid() {
		return fmt.Errorf("invalid mode %q: %w", p.Mode, ErrInvalidInput)
	}
	if !p.Level.Valid() {
		return fmt.Errorf("invalid level %q: %w", p.Level, ErrInvalidInput)
	}
	if !slices.Contains(KindsForMode(p.Mode), p.Kind) {
		return fmt.Errorf("kind %q is not valid for mode %q: %w", p.Kind, p.Mode, ErrInvalidInput)
	}
	if p.PromptText == "" {
		return errors.New("prompt_text is empty")
	}
	if p.CorrectAnswer == "" {
		return errors.New("correct_answer is empty")
	}
	if p.Kind.IsMultipleChoice() {
		if len(p.Options) < 2 {
			return fmt.Errorf("kind %q requires at least 2 options", p.Kind)
		}
		if !slices.Contains(p.Options, p.CorrectAnswer) {
			return errors.New("correct_answer is not a member of options")
		}
	}
	return nil
}

// 次の問題取得リクエストDTO
type NextExerciseRequest struct {
	SessionID uuid.UUID    `json:"session_id" validate:"required"`
	Mode      ExerciseMode `json:"mode" validate:"required,oneof=grammar vocabulary"`
	Level     Level        `json:"level" validate:"required,oneof=beginner intermediate advanced"`
}

// 次の問題レスポンスDTO（正答は含めない）
type ExerciseResponse struct {
	AttemptID uuid.UUID `json:"attempt_id"`
	Item      *PoolItem `json:"item"`
}
