package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/config"
	dbRedis "github.com/neo-assistant/portfolio-chat/internal/db/redis"
	"github.com/neo-assistant/portfolio-chat/internal/domain"
	logpkg "github.com/neo-assistant/portfolio-chat/internal/logger"
	"github.com/neo-assistant/portfolio-chat/internal/metrics"
	"github.com/neo-assistant/portfolio-chat/internal/repository/embcache"
	chiTransport "github.com/neo-assistant/portfolio-chat/internal/transport/chi"
	"github.com/neo-assistant/portfolio-chat/internal/transport/hf"
	openaiEmb "github.com/neo-assistant/portfolio-chat/internal/transport/openai"
	healthuc "github.com/neo-assistant/portfolio-chat/internal/usecase/health"
	perceptionuc "github.com/neo-assistant/portfolio-chat/internal/usecase/perception"
	"github.com/neo-assistant/portfolio-chat/internal/version"
)

func main() {
	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.New(env, "perception", cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting perception service",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("intent_model", cfg.Intent.Model),
	)

	metrics.RegisterEmbeddingMetrics()

	provider := openaiEmb.NewEmbedder(&openaiEmb.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	// Embedder chain: provider, optionally wrapped in a Redis-backed cache.
	var emb domain.Embedder = provider
	if !cfg.Embedding.CacheOff {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}

		emb = embcache.New(
			provider, store, cfg.Storage.KeyPrefix, cfg.Embedding.Model,
			metrics.EmbeddingCacheTotal, logger,
		)
		logger.Info("Embedding cache enabled", zap.String("key_prefix", cfg.Storage.KeyPrefix))
	}

	classifier := hf.New(&hf.Config{
		APIKey:  cfg.Intent.APIKey,
		BaseURL: cfg.Intent.BaseURL,
		Model:   cfg.Intent.Model,
		Logger:  logger,
	})

	svc := perceptionuc.New(emb, classifier, cfg.Embedding.Dimensions, cfg.Embedding.BatchSize, logger)

	healthSvc := healthuc.New(time.Duration(cfg.Services.HealthTimeoutSec) * time.Second).
		Register("embedding", healthuc.CheckerFunc(provider.HealthCheck)).
		Register("classifier", healthuc.CheckerFunc(classifier.HealthCheck))

	server := chiTransport.NewPerceptionServer(svc, healthSvc, chiTransport.NewErrorMapper(logger))

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(metrics.Middleware("perception"))
	server.Routes(r)

	runServer(r, cfg, logger)
}

func runServer(handler http.Handler, cfg config.Config, logger *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
