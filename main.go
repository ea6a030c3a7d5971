package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/macro-tracker/internal/ai"
	"github.com/vladimiradmaev/macro-tracker/internal/api"
	"github.com/vladimiradmaev/macro-tracker/internal/auth"
	"github.com/vladimiradmaev/macro-tracker/internal/bot"
	"github.com/vladimiradmaev/macro-tracker/internal/bot/handlers"
	"github.com/vladimiradmaev/macro-tracker/internal/config"
	"github.com/vladimiradmaev/macro-tracker/internal/database"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
	"github.com/vladimiradmaev/macro-tracker/internal/realtime"
	"github.com/vladimiradmaev/macro-tracker/internal/repository"
	"github.com/vladimiradmaev/macro-tracker/internal/services"
	"github.com/vladimiradmaev/macro-tracker/internal/state"
	"github.com/vladimiradmaev/macro-tracker/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	logger.Info("Starting Macro Tracker", "addr", cfg.HTTP.Addr, "identifier", cfg.AI.Identifier)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connection established and migrations completed")

	userRepo := repository.NewUserRepository(db)
	mealRepo := repository.NewMealRepository(db)
	weightRepo := repository.NewWeightRepository(db)

	sessions, closeSessions := newSessionStore(cfg)
	defer closeSessions()

	photos, err := storage.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to create photo storage", "error", err)
	}

	gemini, err := ai.NewGeminiClient(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
	if err != nil {
		logger.Fatal("Failed to create Gemini client", "error", err)
	}
	defer gemini.Close()

	var identifier domain.FoodIdentifier = gemini
	if cfg.AI.Identifier == "rekognition" {
		identifier, err = ai.NewRekognitionIdentifier(ctx, cfg.AI.AWSRegion)
		if err != nil {
			logger.Fatal("Failed to create Rekognition client", "error", err)
		}
	}

	// Initialize services
	hub := realtime.NewHub()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService := services.NewUserService(userRepo, weightRepo, cfg.Location)
	authService := services.NewAuthService(userRepo, tokens)
	mealService := services.NewMealService(mealRepo, photos, cfg.Location)
	analyticsService := services.NewAnalyticsService(mealRepo, userRepo, cfg.Location)
	identifyService := services.NewIdentifyService(identifier, gemini, sessions, mealService, hub, cfg.AI.LookupTimeout)
	logger.Info("Services initialized successfully")

	router := api.NewRouter(cfg.HTTP, api.Dependencies{
		Auth:      authService,
		Users:     userService,
		Meals:     mealService,
		Analytics: analyticsService,
		Identify:  identifyService,
		Hub:       hub,
	})
	server := api.NewServer(cfg.HTTP, router)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped with error", "error", err)
			stop()
		}
	}()

	if cfg.TelegramToken != "" {
		telegramBot, err := bot.NewBot(cfg.TelegramToken, handlers.Dependencies{
			Users:     userService,
			Analytics: analyticsService,
			Identify:  identifyService,
		})
		if err != nil {
			logger.Fatal("Failed to create bot", "error", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Bot stopped with error", "error", err)
			}
		}()
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set, Telegram bot disabled")
	}

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	wg.Wait()
	logger.Info("Stopped")
}

func newSessionStore(cfg *config.Config) (state.SessionStore, func()) {
	if !cfg.Redis.Enabled() {
		logger.Info("Using in-memory identification sessions")
		return state.NewMemoryStore(), func() {}
	}

	store, err := state.NewRedisStore(cfg.Redis, cfg.SessionTTL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	logger.Info("Using Redis identification sessions", "addr", cfg.Redis.Addr)
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close Redis", "error", err)
		}
	}
}
