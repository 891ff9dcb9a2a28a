package generator

import (
	"fmt"
	"strings"

	"linguaai/internal/model"
)

const grammarSystemPrompt = `You are an English teacher creating grammar practice exercises for language learners.

Rules:
- Generate a single grammar exercise appropriate for the given proficiency level.
- Choose one kind: "correction" (the learner rewrites an incorrect sentence), "fill_blank" (the learner fills a blank marked with ___), or "quiz" (the learner picks from 4 options).
- The prompt text must be a single self-contained English sentence.
- For "quiz", provide exactly 4 options where exactly one is correct. Distractors should reflect common learner mistakes.
- For "correction" and "fill_blank", leave the options array empty.
- The explanation should state the grammar rule in one or two simple sentences.
- Fill grammar_rule with the name of the rule being practiced. Leave example_sentence empty.
- Do not repeat any exercise from the "already seen" list.`

const vocabularySystemPrompt = `You are an English teacher creating vocabulary practice exercises for language learners.

Rules:
- Generate a single vocabulary exercise appropriate for the given proficiency level.
- Choose one kind: "synonym" (pick the synonym of the word), "antonym" (pick the antonym), "recognition" (pick the correct definition), or "context" (type the word that fits the sentence).
- For "synonym", "antonym" and "recognition", provide exactly 4 options where exactly one is correct.
- For "context", leave the options array empty and put the sentence with a blank in prompt_text.
- The explanation should briefly describe the target word's meaning and usage.
- Fill example_sentence with a natural sentence using the target word. Leave grammar_rule empty.
- Do not repeat any word from the "already seen" list.`

// systemPromptFor はモードに応じたシステムプロンプトを返します。
func systemPromptFor(mode model.ExerciseMode) string {
	if mode == model.ModeGrammar {
		return grammarSystemPrompt
	}
	return vocabularySystemPrompt
}

// buildUserMessage は生成リクエストのユーザーメッセージを組み立てます。
// 除外リストは生成AIへのヒントであり、厳密な制約ではありません。
func buildUserMessage(input GenerateInput, maxExcluded int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Level: %s\n", input.Level)
	fmt.Fprintf(&b, "Mode: %s\n", input.Mode)

	b.WriteString("\nAlready seen by this learner:\n")
	b.WriteString(buildExclusions(input.ExcludedPrompts, maxExcluded))

	return b.String()
}

// buildExclusions は既出の出題文を上限件数まで整形します。
func buildExclusions(prompts []string, max int) string {
	if len(prompts) == 0 {
		return "None"
	}

	// 直近N件だけをプロンプトに載せる
	if max > 0 && len(prompts) > max {
		prompts = prompts[:max]
	}

	var b strings.Builder
	for i, p := range prompts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n")
}
