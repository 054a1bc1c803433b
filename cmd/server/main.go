package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramgerassy/ace-ai-sub001/internal/config"
	"github.com/ramgerassy/ace-ai-sub001/internal/database"
	"github.com/ramgerassy/ace-ai-sub001/internal/event"
	"github.com/ramgerassy/ace-ai-sub001/internal/generator"
	"github.com/ramgerassy/ace-ai-sub001/internal/handler"
	"github.com/ramgerassy/ace-ai-sub001/internal/logger"
	"github.com/ramgerassy/ace-ai-sub001/internal/middleware"
	"github.com/ramgerassy/ace-ai-sub001/internal/router"
	"github.com/ramgerassy/ace-ai-sub001/internal/scoring"
	"github.com/ramgerassy/ace-ai-sub001/internal/service"
	"github.com/ramgerassy/ace-ai-sub001/internal/validator"
	"github.com/ramgerassy/ace-ai-sub001/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("version", cfg.ServiceVersion).
		Msg("Starting ace-ai quiz API")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	policy, err := scoring.ParsePolicy(cfg.ExplanationPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid EXPLANATION_POLICY")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty, content generation requests will fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	client, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	var rdb redis.Cmdable
	if client != nil {
		rdb = client
		defer client.Close()
	}

	// ─── Connect to Broker (optional) ──────────────────────────────────
	publisher, err := event.NewAMQPPublisher(cfg.AMQPURL, cfg.EventExchange, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to message broker")
	}
	defer publisher.Close()

	// ─── Content Generator ────────────────────────────────────────────
	var gen generator.Generator = generator.NewOpenAIGenerator(generator.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	}, log)
	if rdb != nil {
		gen = generator.NewCachedGenerator(gen, rdb, cfg.SubjectCacheTTL, log)
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	eventWorker := worker.NewEventWorker(publisher, cfg.EventQueueSize, log)
	go eventWorker.Start(workerCtx)

	// ─── Initialize Services & Handlers ───────────────────────────────
	quizService := service.NewQuizService(gen, policy, eventWorker, cfg.GenerationTimeout, log)

	handlers := &router.Handlers{
		Quiz:   handler.NewQuizHandler(quizService),
		System: handler.NewSystemHandler(cfg, rdb, publisher.Enabled()),
	}
	limiters := &router.Limiters{
		Global:              middleware.NewLimiter(rdb, "global", cfg.GlobalRateLimit),
		SubjectVerification: middleware.NewLimiter(rdb, "subjectVerification", cfg.SubjectRateLimit),
		QuizGeneration:      middleware.NewLimiter(rdb, "quizGeneration", cfg.GenerateRateLimit),
		QuizReview:          middleware.NewLimiter(rdb, "quizReview", cfg.ReviewRateLimit),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, limiters, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	// WriteTimeout covers the slowest collaborator call plus encoding.
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.GenerationTimeout + 15*time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. In-flight generations may take
	// up to GenerationTimeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.GenerationTimeout+5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the event worker and wait for its queue to drain.
	workerCancel()
	select {
	case <-eventWorker.Done():
	case <-time.After(worker.EventDrainTimeout + time.Second):
		log.Warn().Msg("Event worker did not finish draining")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
