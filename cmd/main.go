// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"linguaai/internal/config"
	"linguaai/internal/generator"
	"linguaai/internal/handlers"
	"linguaai/internal/llm"
	"linguaai/internal/middleware"
	"linguaai/internal/repository"
	"linguaai/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// 設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)

	// .env があれば環境変数として読み込む (ローカル開発用)
	if err := godotenv.Load(); err == nil {
		log.Println(".env file loaded")
	}

	// Configを読み込み
	if err := config.LoadConfig("./configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		// 開発時は色付きのテキストログ
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...")

	// 2. Initialize Database Connection (GORM)
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	if err := repository.AutoMigrate(db); err != nil {
		slog.Error("Error migrating database schema", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Initialize LLM Provider
	llmCfg := llm.ConfigFromEnv()
	if config.Cfg.LLM.Provider != "" {
		llmCfg.Provider = config.Cfg.LLM.Provider
	}
	if config.Cfg.LLM.Model != "" {
		llmCfg.OpenAI.Model = config.Cfg.LLM.Model
		llmCfg.Anthropic.Model = config.Cfg.LLM.Model
		llmCfg.Gemini.Model = config.Cfg.LLM.Model
	}
	if config.Cfg.LLM.BaseURL != "" {
		llmCfg.OpenAI.BaseURL = config.Cfg.LLM.BaseURL
	}
	if err := llmCfg.Validate(); err != nil {
		slog.Error("Invalid LLM configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	provider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		slog.Error("Error initializing LLM provider", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("LLM provider initialized", slog.String("provider", llmCfg.Provider), slog.String("model", provider.ModelID()))

	gen := generator.NewLLMGenerator(provider, generator.Options{
		MaxTokens:          config.Cfg.LLM.MaxTokens,
		Temperature:        config.Cfg.LLM.Temperature,
		Timeout:            time.Duration(config.Cfg.LLM.TimeoutSeconds) * time.Second,
		MaxExcludedPrompts: config.Cfg.App.MaxExcludedPrompts,
	})

	// 4. Dependency Injection
	poolRepo := repository.NewGormPoolRepository()
	attemptRepo := repository.NewGormAttemptRepository()
	sessionRepo := repository.NewGormSessionRepository()

	sessionService := service.NewSessionService(db, sessionRepo)
	exerciseService := service.NewExerciseService(db, poolRepo, attemptRepo, sessionRepo, gen, &config.Cfg)

	sessionHandler := handlers.NewSessionHandler(sessionService)
	exerciseHandler := handlers.NewExerciseHandler(exerciseService)

	// 5. Setup Router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	// CORS 設定と適用 (設定ファイルから読み込んだ値を使用)
	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	corsHandler := cors.New(corsOptions)
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			// 本番はJWT認証、開発時は X-User-ID ヘッダーで代替できる
			if config.Cfg.Auth.Enabled {
				slog.Info("Applying JWT authentication middleware")
				r.Use(middleware.JWTAuthMiddleware(&config.Cfg))
			} else {
				slog.Warn("Auth disabled: applying development user-context middleware")
				r.Use(middleware.DevUserContextMiddleware)
			}

			// Session routes
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.StartSession)
				r.Get("/{session_id}", sessionHandler.GetSession)
			})

			// Exercise routes
			r.Post("/exercises/next", exerciseHandler.GetNextExercise)
			r.Post("/attempts/{attempt_id}/answer", exerciseHandler.SubmitAnswer)
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 6. Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // 生成AI呼び出しを含むため長め
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
