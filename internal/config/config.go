// internal/config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	CORS struct {
		AllowedOrigins   []string `mapstructure:"allowed_origins"`
		AllowedMethods   []string `mapstructure:"allowed_methods"`
		AllowedHeaders   []string `mapstructure:"allowed_headers"`
		ExposedHeaders   []string `mapstructure:"exposed_headers"`
		AllowCredentials bool     `mapstructure:"allow_credentials"`
		MaxAge           int      `mapstructure:"max_age"`
	} `mapstructure:"cors"`
	Auth struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"auth"`
	JWT struct {
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"jwt"`
	App struct {
		SessionExerciseCap int  `mapstructure:"session_exercise_cap"` // この回数でセッション完了
		PointsPerCorrect   int  `mapstructure:"points_per_correct"`
		CandidateLimit     int  `mapstructure:"candidate_limit"`      // プール検索の取得上限
		MaxExcludedPrompts int  `mapstructure:"max_excluded_prompts"` // 生成プロンプトに載せる既出問題数の上限
		NormalizeAnswers   bool `mapstructure:"normalize_answers"`    // 採点時に大文字小文字・前後空白を無視する
	} `mapstructure:"app"`
	LLM struct {
		Provider       string  `mapstructure:"provider"` // openai / anthropic / gemini / mock
		Model          string  `mapstructure:"model"`
		BaseURL        string  `mapstructure:"base_url"`
		MaxTokens      int     `mapstructure:"max_tokens"`
		Temperature    float64 `mapstructure:"temperature"`
		TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	} `mapstructure:"llm"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 環境変数でも上書きできるようにする (例: APP_AUTH_ENABLED)
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("auth.enabled", "AUTH_ENABLED")
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("llm.provider", "LLM_PROVIDER")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.Server.Port == "" {
		log.Println("Server port not set, using default ':8080'")
		Cfg.Server.Port = ":8080"
	}
	if Cfg.App.SessionExerciseCap <= 0 {
		log.Println("Session exercise cap not set or invalid, using default '20'")
		Cfg.App.SessionExerciseCap = 20
	}
	if Cfg.App.PointsPerCorrect <= 0 {
		Cfg.App.PointsPerCorrect = 10
	}
	if Cfg.App.CandidateLimit <= 0 {
		Cfg.App.CandidateLimit = 50
	}
	if Cfg.App.MaxExcludedPrompts <= 0 {
		Cfg.App.MaxExcludedPrompts = 20
	}
	if Cfg.LLM.Provider == "" {
		Cfg.LLM.Provider = "openai"
	}
	if Cfg.LLM.MaxTokens <= 0 {
		Cfg.LLM.MaxTokens = 1024
	}
	if Cfg.LLM.TimeoutSeconds <= 0 {
		Cfg.LLM.TimeoutSeconds = 30
	}
	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	// Auth.Enabled のデフォルト値を設定 (未設定なら true = 有効 にする)
	if !viper.IsSet("auth.enabled") {
		log.Println("Auth enabled flag not set, defaulting to true (enabled)")
		Cfg.Auth.Enabled = true
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Session Exercise Cap: %d", Cfg.App.SessionExerciseCap)
	log.Printf("LLM Provider: %s", Cfg.LLM.Provider)
	log.Printf("Auth Enabled: %t", Cfg.Auth.Enabled)

	return nil
}
