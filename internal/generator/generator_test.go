package generator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguaai/internal/llm"
	"linguaai/internal/model"
)

const validGrammarJSON = `{
	"prompt_text": "She don't like coffee.",
	"exercise_kind": "correction",
	"correct_answer": "She doesn't like coffee.",
	"options": [],
	"explanation": "Third person singular subjects take 'doesn't' in the present simple.",
	"grammar_rule": "subject-verb agreement",
	"example_sentence": ""
}`

const validVocabJSON = `{
	"prompt_text": "happy",
	"exercise_kind": "synonym",
	"correct_answer": "glad",
	"options": ["glad", "angry", "tired", "hungry"],
	"explanation": "'Glad' means feeling pleasure, the same as 'happy'.",
	"grammar_rule": "",
	"example_sentence": "I am happy to see you."
}`

func newTestGenerator(provider llm.Provider) *LLMGenerator {
	return NewLLMGenerator(provider, Options{
		MaxTokens:          1024,
		Timeout:            5 * time.Second,
		MaxExcludedPrompts: 3,
	})
}

func TestLLMGenerator_Generate(t *testing.T) {
	tests := []struct {
		name      string
		input     GenerateInput
		response  llm.MockResponse
		wantErr   error
		checkItem func(t *testing.T, item *model.PoolItem)
	}{
		{
			name:  "正常系: 文法問題を生成できる",
			input: GenerateInput{Mode: model.ModeGrammar, Level: model.LevelBeginner},
			response: llm.MockResponse{
				Content: json.RawMessage(validGrammarJSON),
			},
			checkItem: func(t *testing.T, item *model.PoolItem) {
				assert.Equal(t, model.ModeGrammar, item.Mode)
				assert.Equal(t, model.LevelBeginner, item.Level)
				assert.Equal(t, model.KindCorrection, item.Kind)
				assert.Equal(t, "She don't like coffee.", item.PromptText)
				assert.Equal(t, "She doesn't like coffee.", item.CorrectAnswer)
				assert.Equal(t, "subject-verb agreement", item.GrammarRule)
			},
		},
		{
			name:  "正常系: 語彙問題（選択式）を生成できる",
			input: GenerateInput{Mode: model.ModeVocabulary, Level: model.LevelIntermediate},
			response: llm.MockResponse{
				Content: json.RawMessage(validVocabJSON),
			},
			checkItem: func(t *testing.T, item *model.PoolItem) {
				assert.Equal(t, model.KindSynonym, item.Kind)
				assert.Len(t, item.Options, 4)
				assert.Contains(t, []string(item.Options), item.CorrectAnswer)
				assert.Equal(t, "I am happy to see you.", item.ExampleSentence)
			},
		},
		{
			name:  "正常系: コードフェンスで囲まれた応答も解析できる",
			input: GenerateInput{Mode: model.ModeGrammar, Level: model.LevelAdvanced},
			response: llm.MockResponse{
				Content: json.RawMessage("```json\n" + validGrammarJSON + "\n```"),
			},
			checkItem: func(t *testing.T, item *model.PoolItem) {
				assert.Equal(t, model.KindCorrection, item.Kind)
			},
		},
		{
			name:  "異常系: JSONでない応答は生成失敗になる",
			input: GenerateInput{Mode: model.ModeGrammar, Level: model.LevelBeginner},
			response: llm.MockResponse{
				Content: json.RawMessage(`Sure! Here is an exercise for you.`),
			},
			wantErr: model.ErrGenerationUnavailable,
		},
		{
			name:  "異常系: モードに合わない種別は拒否される",
			input: GenerateInput{Mode: model.ModeVocabulary, Level: model.LevelBeginner},
			response: llm.MockResponse{
				// correction は grammar モード専用
				Content: json.RawMessage(validGrammarJSON),
			},
			wantErr: model.ErrGenerationUnavailable,
		},
		{
			name:  "異常系: 正答が選択肢に含まれない応答は拒否される",
			input: GenerateInput{Mode: model.ModeVocabulary, Level: model.LevelBeginner},
			response: llm.MockResponse{
				Content: json.RawMessage(`{
					"prompt_text": "happy",
					"exercise_kind": "synonym",
					"correct_answer": "joyful",
					"options": ["glad", "angry", "tired", "hungry"],
					"explanation": "x",
					"grammar_rule": "",
					"example_sentence": ""
				}`),
			},
			wantErr: model.ErrGenerationUnavailable,
		},
		{
			name:  "異常系: プロバイダのエラーは生成失敗として返す",
			input: GenerateInput{Mode: model.ModeGrammar, Level: model.LevelBeginner},
			response: llm.MockResponse{
				Err: &llm.ErrRateLimit{Err: errors.New("429")},
			},
			wantErr: model.ErrGenerationUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := llm.NewMockProvider(tt.response)
			gen := newTestGenerator(provider)

			item, err := gen.Generate(context.Background(), tt.input)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, item)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, item)
			require.NoError(t, item.Validate())
			if tt.checkItem != nil {
				tt.checkItem(t, item)
			}
		})
	}
}

func TestLLMGenerator_Generate_除外リストがプロンプトに載る(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(validGrammarJSON),
	})
	gen := newTestGenerator(provider) // MaxExcludedPrompts=3

	_, err := gen.Generate(context.Background(), GenerateInput{
		Mode:            model.ModeGrammar,
		Level:           model.LevelBeginner,
		ExcludedPrompts: []string{"one", "two", "three", "four"},
	})
	require.NoError(t, err)

	require.Equal(t, 1, provider.CallCount())
	msg := provider.Calls[0].Messages[0].Content
	assert.Contains(t, msg, "one")
	assert.Contains(t, msg, "three")
	// 上限を超えた分は載せない
	assert.NotContains(t, msg, "four")
	assert.Contains(t, msg, "Level: beginner")
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"フェンスなし", `{"a":1}`, `{"a":1}`},
		{"jsonフェンス", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"言語指定なしフェンス", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"前後の空白", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripCodeFence(tt.in)
			assert.Equal(t, tt.want, strings.TrimSpace(got))
		})
	}
}
