package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/outlast/internal/common/clock"
	"github.com/KirkDiggler/outlast/internal/common/uuid"
	"github.com/KirkDiggler/outlast/internal/config"
	"github.com/KirkDiggler/outlast/internal/handlers/rest"
	"github.com/KirkDiggler/outlast/internal/handlers/ws"
	"github.com/KirkDiggler/outlast/internal/repositories/directory"
	"github.com/KirkDiggler/outlast/internal/services/broadcast"
	"github.com/KirkDiggler/outlast/internal/services/evaluation"
	"github.com/KirkDiggler/outlast/internal/services/evaluator"
	"github.com/KirkDiggler/outlast/internal/services/room"
	"github.com/arl/statsviz"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("Failed to load config")
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("Failed to build logger")
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}

	dir, err := directory.NewRedis(&directory.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create room directory")
	}

	eval, err := newEvaluator(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create evaluator")
	}

	rooms, err := room.New(&room.Config{
		Directory:     dir,
		Clock:         &clock.DefaultClock{},
		UUIDGenerator: uuid.New(),
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create room manager")
	}

	coordinator, err := evaluation.New(&evaluation.Config{
		Rooms:       rooms,
		Evaluator:   eval,
		Timeout:     cfg.EvaluationTimeout,
		Concurrency: cfg.EvaluationConcurrency,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create evaluation coordinator")
	}

	broadcaster := broadcast.New(&broadcast.Config{Logger: logger})

	wsHandler, err := ws.New(&ws.Config{
		Rooms:         rooms,
		Coordinator:   coordinator,
		Broadcaster:   broadcaster,
		UUIDGenerator: uuid.New(),
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create websocket handler")
	}

	restHandler, err := rest.New(&rest.Config{
		Operator:  wsHandler,
		Rooms:     rooms,
		Directory: dir,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create REST handler")
	}

	router := restHandler.Routes()
	router.Get("/ws/game", wsHandler.ServeGame)
	router.Get("/ws/rooms", wsHandler.ServeMonitor)

	mux := http.NewServeMux()
	mux.Handle("/", router)
	if cfg.StatsvizEnabled {
		if err := statsviz.Register(mux); err != nil {
			logger.Fatal().Err(err).Msg("Failed to register statsviz")
		}
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	logger.Info().Msg("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
	wsHandler.Shutdown()
}

// newEvaluator picks OpenRouter when a token is configured and the offline evaluator otherwise
func newEvaluator(cfg *config.Config, logger zerolog.Logger) (evaluator.Evaluator, error) {
	if cfg.OpenRouterToken == "" {
		logger.Warn().Msg("OPENROUTER_TOKEN not set, using random evaluator")
		return evaluator.NewRandom(&evaluator.RandomConfig{}), nil
	}

	openRouter, err := evaluator.NewOpenRouter(&evaluator.OpenRouterConfig{
		BaseURL:    cfg.OpenRouterURL,
		Token:      cfg.OpenRouterToken,
		Model:      cfg.OpenRouterModel,
		MaxRetries: cfg.OpenRouterMaxRetries,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	return openRouter, nil
}
