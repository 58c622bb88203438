// cmd/weekend-planner/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"weekend-planner/internal/common/config"
	"weekend-planner/internal/common/database"
	commonerrors "weekend-planner/internal/common/errors"
	commonhttp "weekend-planner/internal/common/http"
	"weekend-planner/internal/common/llm"
	"weekend-planner/internal/common/logger"
	"weekend-planner/internal/common/metrics"
	"weekend-planner/internal/common/weather"
	"weekend-planner/internal/history"
	"weekend-planner/internal/pipeline"
	"weekend-planner/internal/tools"
	"weekend-planner/pkg/registry"

	ep "weekend-planner/internal/tasks/history/extract-and-persist"
	do "weekend-planner/internal/tasks/delivery/deliver-output"
	fo "weekend-planner/internal/tasks/delivery/format-output"
	bp "weekend-planner/internal/tasks/planning/build-prompt"
	gr "weekend-planner/internal/tasks/planning/generate-recommendation"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console", "stdout")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Error("config load failed", zap.Error(commonerrors.NewConfigInvalidError(err)))
		_ = bootLog.Sync()
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := 0
	if err := run(ctx, cfg, zapLog, log); err != nil {
		log.Error("weekend planner run failed", commonerrors.Normalize(err).Fields())
		code = 1
	}

	pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := metrics.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.JobName); err != nil {
		log.Warn("metrics push failed", map[string]interface{}{"error": err.Error()})
	}
	cancel()
	stop()

	_ = zapLog.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, log logger.Logger) error {
	// --- History store ---
	backend, closeBackend, err := newHistoryBackend(ctx, cfg, zapLog)
	if err != nil {
		return commonerrors.NewConfigInvalidError(err)
	}
	defer closeBackend()

	store := history.NewClient(backend, config.GetDuration(cfg.History.Timeout), log)

	// --- Models ---
	llmTimeout := config.GetDuration(cfg.LLM.Timeout)
	agentModel := llm.NewOpenAIClient(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.BaseURL, cfg.LLM.Agent, llmTimeout)

	extractionModel, err := llm.NewTextModel(cfg.LLM, cfg.LLM.Extraction)
	if err != nil {
		return commonerrors.NewConfigInvalidError(err)
	}
	scraperModel, err := llm.NewTextModel(cfg.LLM, cfg.LLM.Scraper)
	if err != nil {
		return commonerrors.NewConfigInvalidError(err)
	}

	// --- Fetch tools and weather ---
	venues, err := registry.LoadRegistry(cfg.Tools.RegistryPath)
	if err != nil {
		return commonerrors.NewConfigInvalidError(err)
	}
	toolHTTP := commonhttp.NewClient(config.GetDuration(cfg.Tools.Timeout), cfg.Tools.UserAgent)
	toolRegistry, err := tools.NewScraperRegistry(venues, tools.ScraperConfig{
		MaxPageChars: cfg.Tools.MaxPageChars,
		MaxFailures:  cfg.Tools.CircuitBreaker.MaxFailures,
		OpenTimeout:  config.GetDuration(cfg.Tools.CircuitBreaker.OpenTimeout),
	}, toolHTTP, scraperModel, log)
	if err != nil {
		return commonerrors.NewConfigInvalidError(err)
	}

	forecaster, err := weather.NewClient(cfg.Weather, commonhttp.NewClient(config.GetDuration(cfg.Weather.Timeout), cfg.Tools.UserAgent))
	if err != nil {
		return commonerrors.NewConfigInvalidError(err)
	}

	// --- Delivery ---
	deliverCfg := do.LoadConfig(cfg)
	sender, err := do.NewSender(ctx, deliverCfg, log)
	if err != nil {
		return commonerrors.NewConfigInvalidError(err)
	}

	// --- Stages ---
	promptCfg, err := bp.LoadConfig(cfg)
	if err != nil {
		return commonerrors.NewConfigInvalidError(err)
	}

	p := pipeline.New(pipeline.Stages{
		BuildPrompt: bp.NewHandler(promptCfg, store, forecaster, log),
		Generate:    gr.NewHandler(gr.LoadConfig(cfg), agentModel, toolRegistry, log),
		Persist:     ep.NewHandler(ep.LoadConfig(cfg), extractionModel, store, log),
		Format:      fo.NewHandler(fo.LoadConfig(cfg), log),
		Deliver:     do.NewHandler(deliverCfg, sender, log),
	}, log)

	log.Info("starting weekend planner run", map[string]interface{}{
		"historyBackend": backend.Name(),
		"tools":          toolRegistry.Names(),
		"channel":        sender.Channel(),
		"region":         cfg.Integrations.AWS.Region,
	})

	_, err = p.Run(ctx)
	return err
}

// newHistoryBackend connects the configured store. An unreachable store only
// degrades the run, so ping failures are logged rather than returned.
func newHistoryBackend(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (history.Backend, func(), error) {
	switch cfg.History.Backend {
	case "firestore":
		fs, err := database.NewFirestore(ctx, cfg.Database.Firestore)
		if err != nil {
			return nil, nil, err
		}
		return history.NewFirestoreBackend(fs.Client, cfg.History.Collection), func() { _ = fs.Close() }, nil

	case "postgres":
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, nil, err
		}
		backend, err := history.NewPostgresBackend(pg, cfg.History.Collection)
		if err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		err = retryWithBackoff(func() error {
			return backend.EnsureSchema(ctx)
		}, 3, time.Second, zapLog, "PostgreSQL schema check")
		if err != nil {
			zapLog.Warn("postgres unavailable, history will be degraded", zap.Error(err))
		}
		return backend, func() { _ = pg.Close() }, nil

	case "redis":
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, nil, err
		}
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, 3, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, history will be degraded", zap.Error(err))
		}
		return history.NewRedisBackend(rdb), func() { _ = rdb.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported history backend %q", cfg.History.Backend)
	}
}
