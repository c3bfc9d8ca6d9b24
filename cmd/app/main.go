// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asklaw-backend/internal/config"
	"asklaw-backend/internal/domain/ports/adapter"
	"asklaw-backend/internal/infra/adapters/embedding"
	"asklaw-backend/internal/infra/adapters/generation"
	"asklaw-backend/internal/infra/adapters/retrieval"
	"asklaw-backend/internal/infra/logging"
	"asklaw-backend/internal/infra/metrics"
	red "asklaw-backend/internal/infra/redis"
	"asklaw-backend/internal/infra/web"
	"asklaw-backend/internal/infra/worker"
	"asklaw-backend/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no auth)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	jobRepo := red.NewJobRepo(redisClient, cfg.Jobs.AnswerTTL)
	answerRepo := red.NewAnswerRepo(redisClient, cfg.Jobs.AnswerTTL)
	questionCache := red.NewQuestionCacheRepo(redisClient, cfg.Jobs.QuestionCacheTTL)
	jobQueue := red.NewJobQueue(redisClient, 2*time.Second, cfg.Jobs.AckTimeout, logger)

	// ---- Retrieval ----
	embedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding.OpenAIKey, cfg.Embedding.Model, cfg.Embedding.Dimension)
	if err != nil {
		logger.Fatal().Err(err).Msg("embedder")
	}
	retriever, err := retrieval.NewQdrantRetriever(cfg.Retrieval.QdrantURL, cfg.Retrieval.Collection, embedder, cfg.Retrieval.Timeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("qdrant retriever")
	}

	// ---- Generator (Groq -> Gemini -> OpenAI -> extractive fallback) ----
	var gen adapter.Generator
	switch {
	case cfg.Generation.GroqKey != "":
		gen, err = generation.NewGroqAdapter(cfg.Generation.GroqKey, cfg.Generation.Model, cfg.Generation.GroqBaseURL,
			cfg.Generation.MaxContextChars, cfg.Generation.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("groq adapter")
		}
	case cfg.Generation.GeminiKey != "":
		gen, err = generation.NewGeminiAdapter(ctx, cfg.Generation.GeminiKey, cfg.Generation.Model,
			cfg.Generation.MaxContextChars, cfg.Generation.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
	case cfg.Generation.OpenAIKey != "":
		gen, err = generation.NewOpenAIAdapter(cfg.Generation.OpenAIKey, cfg.Generation.Model,
			cfg.Generation.MaxContextChars, cfg.Generation.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
	default:
		logger.Warn().Msg("no generation provider configured; using extractive fallback answers")
		gen = generation.NewExtractiveGenerator(cfg.Generation.MaxContextChars)
	}
	logger.Info().Str("generator", gen.Name()).Str("model", cfg.Generation.Model).Msg("generation strategy selected")

	// ---- Use cases ----
	askUC := usecase.NewAskUseCase(jobRepo, answerRepo, jobQueue, logger)
	pipelineUC := usecase.NewPipelineUseCase(jobRepo, answerRepo, questionCache, retriever, gen, cfg.Retrieval.TopK, logger)

	// ---- Workers ----
	pool := worker.NewPool(cfg.Jobs.Workers, logger)
	pool.Start(ctx)
	defer pool.Stop()

	retry := worker.NewRetryPolicy(cfg.Jobs.MaxRetries, cfg.Jobs.RetryBaseDelay)
	processor := worker.NewAskJobProcessor(jobQueue, jobRepo, pipelineUC, retry, logger)
	go processor.Start(ctx, pool)

	// ---- HTTP ----
	var auth *web.AuthManager
	if cfg.Auth.JWTSecret != "" && !cfg.Runtime.Dev {
		auth = web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	} else {
		logger.Warn().Msg("auth disabled; /api/ask is open")
	}
	srv := web.NewServer(askUC, auth, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
