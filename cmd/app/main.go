package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/application"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/config"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/adapter"
	aiAdapters "github.com/hi9ne/reviews-wb-bot-tg/internal/infra/adapters/ai"
	tele "github.com/hi9ne/reviews-wb-bot-tg/internal/infra/adapters/telegram"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/infra/adapters/wb"
	pg "github.com/hi9ne/reviews-wb-bot-tg/internal/infra/db/postgres"
	opshttp "github.com/hi9ne/reviews-wb-bot-tg/internal/infra/http"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/infra/logging"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/infra/metrics"
	red "github.com/hi9ne/reviews-wb-bot-tg/internal/infra/redis"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/infra/sched"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, unredacted keys")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema migration failed")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()
	stateRepo := red.NewStateRepo(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	storeRepo := pg.NewStoreRepo(pool)
	statsRepo := pg.NewStatisticsRepo(pool)

	// ---- AI provider (OpenAI -> Gemini -> any OpenAI-compatible gateway) ----
	var ai adapter.AIServiceAdapter
	switch {
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.Model, cfg.AI.Temperature, cfg.AI.MaxTokens, cfg.AI.Timeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter init failed")
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("AI provider: OpenAI")
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.Model, cfg.AI.Temperature, cfg.AI.MaxTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter init failed")
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("AI provider: Gemini")
	case cfg.AI.CompatKey != "":
		ai, err = aiAdapters.NewCompatAdapter(cfg.AI.CompatKey, cfg.AI.CompatBaseURL, cfg.AI.Model, cfg.AI.Temperature, cfg.AI.MaxTokens, cfg.AI.Timeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("compat adapter init failed")
		}
		logger.Info().Str("base", cfg.AI.CompatBaseURL).Str("model", cfg.AI.Model).Msg("AI provider: OpenAI-compatible")
	default:
		// LoadConfig guarantees one key is present.
		logger.Fatal().Msg("no AI provider configured")
	}
	ai = aiAdapters.NewLimitedAI(ai, cfg.AI.ConcurrentMax)

	// ---- Marketplace ----
	wbClient := wb.NewClient(&cfg.WB, logger)

	// ---- Use cases ----
	storeUC := usecase.NewStoreUseCase(storeRepo, logger)
	statsUC := usecase.NewStatsUseCase(storeRepo, statsRepo, logger)
	processorUC := usecase.NewStoreProcessorUseCase(wbClient, ai, statsRepo, cfg.AI.Model, logger)
	fleetUC := usecase.NewFleetUseCase(storeRepo, processorUC, logger)

	// ---- Telegram ----
	facade := application.NewBotFacade(storeUC, statsUC, stateRepo, cfg.Worker.CheckInterval, logger)
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram init failed")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Review worker ----
	worker := sched.NewReviewWorker(cfg.Worker.CheckInterval, fleetUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Ops server (/health, /metrics) ----
	ops := opshttp.NewServer(&cfg.Ops, logger)
	go func() {
		if err := ops.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	botAdapter.StopPolling()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := ops.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("ops server shutdown failed")
	}
}
