// Command server starts the MockInvi interview evaluation HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	ai "github.com/raxzrrr/mockinvi/internal/adapter/ai"
	"github.com/raxzrrr/mockinvi/internal/adapter/ai/gemini"
	"github.com/raxzrrr/mockinvi/internal/adapter/ai/stub"
	rediscache "github.com/raxzrrr/mockinvi/internal/adapter/cache"
	httpserver "github.com/raxzrrr/mockinvi/internal/adapter/httpserver"
	"github.com/raxzrrr/mockinvi/internal/adapter/observability"
	"github.com/raxzrrr/mockinvi/internal/adapter/repo/postgres"
	tikaext "github.com/raxzrrr/mockinvi/internal/adapter/textextractor/tika"
	"github.com/raxzrrr/mockinvi/internal/app"
	"github.com/raxzrrr/mockinvi/internal/config"
	"github.com/raxzrrr/mockinvi/internal/domain"
	"github.com/raxzrrr/mockinvi/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	// Infra: DB pool and schema
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		slog.Error("schema setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Infra: Redis cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	defer func() { _ = rdb.Close() }()
	cache := rediscache.New(rdb)

	// Repositories
	sessionRepo := postgres.NewSessionRepo(pool)
	settingsRepo := postgres.NewSettingsRepo(pool)
	courseRepo := postgres.NewCourseRepo(pool)

	// Settings service first: the AI client resolves its key through it.
	settingsSvc := usecase.NewSettingsService(settingsRepo, cache, cfg.SettingsCacheTTL)

	var client domain.AIClient
	switch cfg.AIProvider {
	case "stub":
		client = stub.New()
		slog.Info("AI client initialized", slog.String("provider", "stub"))
	default:
		client = gemini.New(cfg, settingsSvc.GenerationKey)
		slog.Info("AI client initialized",
			slog.String("provider", "gemini"), slog.String("model", cfg.GeminiModel))
	}

	evaluator := ai.NewBatchEvaluator(client, cfg.PromptTokenBudget)
	scorer := ai.NewFallbackScorer()
	questionGen := ai.NewQuestionGen(client)

	// Usecases
	interviewSvc := usecase.NewInterviewService(sessionRepo, evaluator, scorer, questionGen, cfg.MaxQuestionCount, cfg.DefaultQuestionCount)
	courseSvc := usecase.NewCourseService(courseRepo, cache, cfg.CatalogCacheTTL)

	// External text extractor (Apache Tika)
	ext := tikaext.New(cfg.TikaURL)

	dbCheck, redisCheck := app.BuildReadinessChecks(pool, rdb)

	srv := httpserver.NewServer(cfg, interviewSvc, courseSvc, settingsSvc, ext, dbCheck, redisCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
