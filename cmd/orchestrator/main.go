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

	"github.com/neo-assistant/portfolio-chat/internal/client"
	"github.com/neo-assistant/portfolio-chat/internal/config"
	logpkg "github.com/neo-assistant/portfolio-chat/internal/logger"
	"github.com/neo-assistant/portfolio-chat/internal/metrics"
	chiTransport "github.com/neo-assistant/portfolio-chat/internal/transport/chi"
	orchestratoruc "github.com/neo-assistant/portfolio-chat/internal/usecase/orchestrator"
	"github.com/neo-assistant/portfolio-chat/internal/version"
)

func main() {
	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.New(env, "orchestrator", cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting orchestrator service",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("perception_url", cfg.Services.PerceptionURL),
		zap.String("memory_url", cfg.Services.MemoryURL),
		zap.String("reasoning_url", cfg.Services.ReasoningURL),
		zap.String("safety_url", cfg.Services.SafetyURL),
	)

	metrics.RegisterPipelineMetrics()

	timeout := time.Duration(cfg.Services.TimeoutSec) * time.Second

	svc := orchestratoruc.New(
		client.NewPerception(cfg.Services.PerceptionURL, timeout),
		client.NewMemory(cfg.Services.MemoryURL, timeout),
		client.NewReasoning(cfg.Services.ReasoningURL, timeout),
		client.NewSafety(cfg.Services.SafetyURL, timeout),
		orchestratoruc.Config{
			AssistantName: cfg.Assistant.Name,
			TopK:          cfg.Retrieval.DefaultTopK,
			TopKPerDomain: cfg.Retrieval.TopKPerDomain,
		},
		logger,
	)

	server := chiTransport.NewOrchestratorServer(svc, chiTransport.NewErrorMapper(logger))

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(metrics.Middleware("orchestrator"))
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
