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
	logpkg "github.com/neo-assistant/portfolio-chat/internal/logger"
	"github.com/neo-assistant/portfolio-chat/internal/metrics"
	chiTransport "github.com/neo-assistant/portfolio-chat/internal/transport/chi"
	openaiGen "github.com/neo-assistant/portfolio-chat/internal/transport/openai"
	healthuc "github.com/neo-assistant/portfolio-chat/internal/usecase/health"
	reasoninguc "github.com/neo-assistant/portfolio-chat/internal/usecase/reasoning"
	"github.com/neo-assistant/portfolio-chat/internal/version"
)

func main() {
	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.New(env, "reasoning", cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting reasoning service",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("generation_model", cfg.Generation.Model),
	)

	generator := openaiGen.NewGenerator(&openaiGen.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
		Logger:      logger,
	})

	svc := reasoninguc.New(generator, cfg.Assistant.Name, logger)

	healthSvc := healthuc.New(time.Duration(cfg.Services.HealthTimeoutSec) * time.Second).
		Register("generation", healthuc.CheckerFunc(generator.HealthCheck))

	server := chiTransport.NewReasoningServer(svc, healthSvc, chiTransport.NewErrorMapper(logger))

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(metrics.Middleware("reasoning"))
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
