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
	logpkg "github.com/neo-assistant/portfolio-chat/internal/logger"
	"github.com/neo-assistant/portfolio-chat/internal/metrics"
	documentrepo "github.com/neo-assistant/portfolio-chat/internal/repository/document"
	historyrepo "github.com/neo-assistant/portfolio-chat/internal/repository/history"
	chiTransport "github.com/neo-assistant/portfolio-chat/internal/transport/chi"
	healthuc "github.com/neo-assistant/portfolio-chat/internal/usecase/health"
	memoryuc "github.com/neo-assistant/portfolio-chat/internal/usecase/memory"
	"github.com/neo-assistant/portfolio-chat/internal/version"
)

func main() {
	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.New(env, "memory", cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting memory service",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	docRepo := documentrepo.New(store, documentrepo.Config{
		KeyPrefix:           cfg.Storage.KeyPrefix,
		Dimensions:          cfg.Embedding.Dimensions,
		HNSWM:               cfg.Retrieval.HNSWM,
		HNSWEFConstruct:     cfg.Retrieval.HNSWEFConstruct,
		MaxCandidates:       cfg.Retrieval.MaxCandidates,
		CandidateMultiplier: cfg.Retrieval.CandidateMultiplier,
	})
	if err := docRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to ensure vector indexes", zap.Error(err))
	}
	logger.Info("Vector indexes ready", zap.Int("dimensions", cfg.Embedding.Dimensions))

	histRepo := historyrepo.New(store, cfg.Storage.KeyPrefix)

	svc := memoryuc.New(docRepo, histRepo, cfg.Retrieval.TopKPerDomain, logger)

	healthSvc := healthuc.New(time.Duration(cfg.Services.HealthTimeoutSec) * time.Second).
		Register("database", healthuc.CheckerFunc(store.Ping))

	server := chiTransport.NewMemoryServer(svc, healthSvc, chiTransport.NewErrorMapper(logger))

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(metrics.Middleware("memory"))
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
