package generator

import "linguaai/internal/llm"

// ItemSchema は生成AIに要求する問題1件のJSONスキーマです。
var ItemSchema = &llm.Schema{
	Name:        "exercise-item",
	Description: "A single English practice exercise with its answer and explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt_text": map[string]any{
				"type":        "string",
				"description": "The stimulus shown to the learner: a sentence for grammar exercises, a word for vocabulary exercises",
			},
			"exercise_kind": map[string]any{
				"type":        "string",
				"enum":        []any{"correction", "fill_blank", "quiz", "synonym", "antonym", "context", "recognition"},
				"description": "The interaction pattern of the exercise",
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"description": "The correct answer. For multiple choice kinds: the text of the correct option.",
			},
			"options": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
				},
				"description": "Exactly 4 options for multiple choice kinds. Empty array otherwise.",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "A short explanation of why the answer is correct, shown after grading",
			},
			"grammar_rule": map[string]any{
				"type":        "string",
				"description": "The grammar rule being practiced. Empty for vocabulary exercises.",
			},
			"example_sentence": map[string]any{
				"type":        "string",
				"description": "An example sentence using the target word. Empty for grammar exercises.",
			},
		},
		"required":             []any{"prompt_text", "exercise_kind", "correct_answer", "options", "explanation", "grammar_rule", "example_sentence"},
		"additionalProperties": false,
	},
}
