package llm

import (
	"fmt"
	"os"
)

// Config は生成AIプロバイダの設定です。
// APIキーは設定ファイルに書かず、環境変数から読み込みます。
type Config struct {
	// Provider は使用するプロバイダです ("openai", "anthropic", "gemini", "mock")。
	Provider string

	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Gemini    GeminiConfig
}

// OpenAIConfig はOpenAI固有の設定です。
type OpenAIConfig struct {
	APIKey  string
	Model   string // デフォルト: "gpt-4o-mini"
	BaseURL string // OpenAI互換APIを使う場合に上書き
}

// AnthropicConfig はAnthropic固有の設定です。
type AnthropicConfig struct {
	APIKey string
	Model  string // デフォルト: "claude-haiku"
}

// GeminiConfig はGemini固有の設定です。
type GeminiConfig struct {
	APIKey string
	Model  string // デフォルト: "gemini-flash"
}

// DefaultConfig はデフォルト値入りのConfigを返します。
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
	}
}

// ConfigFromEnv は環境変数からConfigを構築します。未設定の値はデフォルトのまま。
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("LINGUAAI_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("LINGUAAI_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("LINGUAAI_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("LINGUAAI_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("LINGUAAI_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	return cfg
}

// Validate は選択中のプロバイダに必要なAPIキーが設定されているか確認します。
func (c Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
		// APIキー不要
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
