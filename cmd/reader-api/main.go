// Package main 阅读会话服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"z-reader-session-api/internal/application/session"
	"z-reader-session-api/internal/config"
	"z-reader-session-api/internal/infrastructure/llm"
	"z-reader-session-api/internal/infrastructure/persistence/postgres"
	"z-reader-session-api/internal/infrastructure/persistence/redis"
	"z-reader-session-api/internal/interfaces/http/handler"
	"z-reader-session-api/internal/interfaces/http/router"
	"z-reader-session-api/pkg/logger"
	"z-reader-session-api/pkg/tracer"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting reader-api",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 基础设施
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to connect postgres", err)
	}
	defer pgClient.Close()

	if err := pgClient.AutoMigrate(); err != nil {
		logger.Fatal(ctx, "failed to migrate schema", err)
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to connect redis", err)
	}
	defer redisClient.Close()

	// 领域依赖，显式构造注入
	kvStore := redis.NewKVStore(redisClient)
	bookRepo := postgres.NewBookRepository(pgClient)
	bookmarkRepo := postgres.NewBookmarkRepository(pgClient)
	einoFactory := llm.NewEinoFactory(cfg)
	aiClient := llm.NewEnrichmentClient(einoFactory, &cfg.LLM)

	registry := session.NewRegistry(session.Deps{
		Books:           bookRepo,
		Bookmarks:       bookmarkRepo,
		KV:              kvStore,
		AI:              aiClient,
		ScrollSaveDelta: cfg.Reader.ScrollSaveDelta,
		RecentBooksCap:  cfg.Reader.RecentBooksCap,
	})
	recentBooks := session.NewRecentBooks(kvStore, cfg.Reader.RecentBooksCap)

	// HTTP 层
	r := router.New(cfg, router.Handlers{
		Health:     handler.NewHealthHandler(pgClient, redisClient),
		Session:    handler.NewSessionHandler(registry, recentBooks),
		Bookmark:   handler.NewBookmarkHandler(registry),
		Enrichment: handler.NewEnrichmentHandler(registry),
	}, redis.NewRateLimiter(redisClient))

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
