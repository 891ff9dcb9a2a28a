package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"linguaai/internal/llm"
	"linguaai/internal/middleware"
	"linguaai/internal/model"
)

// Generator は練習問題を1件生成するインターフェースです。
type Generator interface {
	Generate(ctx context.Context, input GenerateInput) (*model.PoolItem, error)
}

// GenerateInput は生成リクエストの入力です。
type GenerateInput struct {
	Mode  model.ExerciseMode
	Level model.Level
	// ExcludedPrompts はこの学習者が既に解いた問題の出題文です。
	// 重複出題を避けるヒントとして生成AIへ渡します。
	ExcludedPrompts []string
}

// Options はLLMGeneratorの動作設定です。
type Options struct {
	MaxTokens          int
	Temperature        float64
	Timeout            time.Duration
	MaxExcludedPrompts int
}

// LLMGenerator は生成AIプロバイダを使ったGenerator実装です。
type LLMGenerator struct {
	provider llm.Provider
	opts     Options
}

func NewLLMGenerator(provider llm.Provider, opts Options) *LLMGenerator {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &LLMGenerator{provider: provider, opts: opts}
}

// itemOutput は生成AIが返すJSONの構造です。
type itemOutput struct {
	PromptText      string   `json:"prompt_text"`
	ExerciseKind    string   `json:"exercise_kind"`
	CorrectAnswer   string   `json:"correct_answer"`
	Options         []string `json:"options"`
	Explanation     string   `json:"explanation"`
	GrammarRule     string   `json:"grammar_rule"`
	ExampleSentence string   `json:"example_sentence"`
}

// Generate は生成AIに問題を1件生成させ、検証済みのPoolItemを返します。
// プロバイダ障害や不正な応答は model.ErrGenerationUnavailable として返します。
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*model.PoolItem, error) {
	logger := middleware.GetLogger(ctx)

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	req := llm.Request{
		System: systemPromptFor(input.Mode),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.opts.MaxExcludedPrompts)},
		},
		Schema:      ItemSchema,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		logger.Warn("生成AIの呼び出しに失敗しました",
			slog.String("mode", string(input.Mode)),
			slog.String("level", string(input.Level)),
			slog.Any("error", err),
		)
		return nil, generationError("生成AIの呼び出しに失敗しました", err)
	}

	item, err := parseItem(resp.Content, input)
	if err != nil {
		logger.Warn("生成AIの応答の解析に失敗しました",
			slog.String("mode", string(input.Mode)),
			slog.Any("error", err),
		)
		return nil, generationError("生成された問題が不正です", err)
	}

	logger.Info("問題を生成しました",
		slog.String("mode", string(input.Mode)),
		slog.String("level", string(input.Level)),
		slog.String("kind", string(item.Kind)),
		slog.String("model", resp.Model),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return item, nil
}

// parseItem は生成AIの応答をPoolItemへ変換し、内容を検証します。
func parseItem(raw json.RawMessage, input GenerateInput) (*model.PoolItem, error) {
	cleaned := stripCodeFence(string(raw))

	var out itemOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("JSONの解析に失敗: %w", err)
	}

	kind := model.ExerciseKind(out.ExerciseKind)
	if !kindAllowed(kind, input.Mode) {
		return nil, fmt.Errorf("モード %s に対して不正な種別 %q が返されました", input.Mode, out.ExerciseKind)
	}

	item := &model.PoolItem{
		Mode:            input.Mode,
		Level:           input.Level,
		Kind:            kind,
		PromptText:      strings.TrimSpace(out.PromptText),
		CorrectAnswer:   strings.TrimSpace(out.CorrectAnswer),
		Options:         out.Options,
		Explanation:     strings.TrimSpace(out.Explanation),
		GrammarRule:     strings.TrimSpace(out.GrammarRule),
		ExampleSentence: strings.TrimSpace(out.ExampleSentence),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// kindAllowed は種別がモードの許可リストに含まれるかを判定します。
func kindAllowed(kind model.ExerciseKind, mode model.ExerciseMode) bool {
	for _, k := range model.KindsForMode(mode) {
		if k == kind {
			return true
		}
	}
	return false
}

// stripCodeFence はマークダウンのコードフェンスで囲まれた応答から中身を取り出します。
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func generationError(message string, err error) error {
	// 連鎖させるセンチネルは ErrGenerationUnavailable のみ。原因はメッセージに残す。
	return model.NewAppError(
		"GENERATION_UNAVAILABLE",
		message,
		"",
		fmt.Errorf("%w: %v", model.ErrGenerationUnavailable, err),
	)
}
