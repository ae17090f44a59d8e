package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/radiusdt/ads-insights/internal/analytics"
	"github.com/radiusdt/ads-insights/internal/config"
	"github.com/radiusdt/ads-insights/internal/database"
	"github.com/radiusdt/ads-insights/internal/insightsapi"
	"github.com/radiusdt/ads-insights/internal/logging"
	"github.com/radiusdt/ads-insights/internal/metrics"
	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/radiusdt/ads-insights/internal/pipeline"
	"github.com/radiusdt/ads-insights/internal/storage"
	"go.uber.org/zap"
)

func main() {
	mode := flag.String("mode", "batch", "run mode: batch, distribute or refresh")
	period := flag.String("period", "", "reporting month as YYYY-MM (default: current month)")
	clientID := flag.Int64("client", 0, "restrict the run to one client id (0 = all active)")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log, cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monthYear, err := resolvePeriod(*period)
	if err != nil {
		logger.Fatal("invalid period", zap.String("period", *period), zap.Error(err))
	}

	logger.Info("starting ads-insights",
		zap.String("env", cfg.Env),
		zap.String("mode", *mode),
		zap.String("period", monthYear.String()),
	)

	db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	rdb, err := database.NewRedisDB(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics("ads_insights")
		go serveMetrics(cfg.Metrics, logger)
	}

	clients := storage.NewPostgresClientRepo(db.Pool)
	reports := storage.NewPostgresReportRepo(db.Pool)
	dims := storage.NewPostgresDimensionStore(db.Pool)
	store := storage.NewNormalizedStore(dims, logger, m)

	engine := analytics.NewEngine(cfg.ROI, logger)
	snapshots := analytics.NewRedisSnapshotStore(rdb.Client)
	cache := analytics.NewCache(snapshots, reports, store, engine, cfg.Cache.TTL, logger, m)

	var exit int
	switch *mode {
	case "batch":
		exit = runBatch(ctx, cfg, clients, store, reports, cache, logger, m, monthYear, *clientID)
	case "distribute":
		exit = runDistribute(ctx, reports, store, logger, *clientID, monthYear)
	case "refresh":
		exit = runRefresh(ctx, clients, cache, logger, *clientID)
	default:
		logger.Error("unknown mode", zap.String("mode", *mode))
		exit = 2
	}

	os.Exit(exit)
}

// resolvePeriod parses the -period flag, defaulting to the current month.
func resolvePeriod(raw string) (models.Period, error) {
	if raw == "" {
		return models.PeriodOf(time.Now().UTC()), nil
	}
	return models.ParsePeriod(raw)
}

// runBatch collects, validates, transforms and stores insights for the
// selected clients, then refreshes each successful client's snapshot.
func runBatch(
	ctx context.Context,
	cfg *config.Config,
	clientRepo storage.ClientRepo,
	store *storage.NormalizedStore,
	reports storage.ReportRepo,
	cache *analytics.Cache,
	logger *zap.Logger,
	m *metrics.Metrics,
	period models.Period,
	onlyClient int64,
) int {
	clients, err := selectClients(ctx, clientRepo, onlyClient)
	if err != nil {
		logger.Error("failed to select clients", zap.Error(err))
		return 1
	}
	if len(clients) == 0 {
		logger.Warn("no active clients to collect")
		return 0
	}

	api := insightsapi.NewClient(cfg.Platform, logger, m)
	collector := pipeline.NewCollector(api, logger, m)
	validator := pipeline.NewValidator(logger)
	transformer := pipeline.NewTransformer(logger)
	orchestrator := pipeline.NewBatchOrchestrator(collector, validator, transformer, store, reports, logger, m)

	result := orchestrator.BatchCollectAndStore(ctx, clients, period, pipeline.OptionsFromConfig(cfg.Batch))

	for _, cr := range result.Results {
		if !cr.Success {
			continue
		}
		if _, err := cache.Refresh(ctx, cr.ClientID); err != nil {
			logger.Warn("snapshot refresh after batch failed",
				zap.Int64("client_id", cr.ClientID),
				zap.Error(err),
			)
		}
	}

	printJSON(result)
	if !result.Success {
		return 1
	}
	return 0
}

// runDistribute re-projects consolidated reports into the dimension tables.
func runDistribute(
	ctx context.Context,
	reports storage.ReportRepo,
	store *storage.NormalizedStore,
	logger *zap.Logger,
	onlyClient int64,
	period models.Period,
) int {
	distributor := storage.NewDistributor(reports, store, logger)

	var result *storage.DistributeResult
	if onlyClient > 0 {
		result = distributor.DistributeOne(ctx, onlyClient, period)
	} else {
		result = distributor.DistributeAll(ctx)
	}

	printJSON(result)
	if !result.Success {
		return 1
	}
	return 0
}

// runRefresh rebuilds analytics snapshots from stored rows, bypassing TTL.
func runRefresh(
	ctx context.Context,
	clientRepo storage.ClientRepo,
	cache *analytics.Cache,
	logger *zap.Logger,
	onlyClient int64,
) int {
	clients, err := selectClients(ctx, clientRepo, onlyClient)
	if err != nil {
		logger.Error("failed to select clients", zap.Error(err))
		return 1
	}

	exit := 0
	for _, client := range clients {
		if ctx.Err() != nil {
			logger.Warn("refresh aborted", zap.Error(ctx.Err()))
			return 1
		}
		result, err := cache.Refresh(ctx, client.ID)
		if err != nil {
			logger.Error("snapshot refresh failed",
				zap.Int64("client_id", client.ID),
				zap.String("slug", client.Slug),
				zap.Error(err),
			)
			exit = 1
			continue
		}
		logger.Info("snapshot refreshed",
			zap.Int64("client_id", client.ID),
			zap.String("month_year", result.Snapshot.MonthYear.String()),
		)
	}
	return exit
}

// selectClients returns either one client by id or all active clients.
func selectClients(ctx context.Context, repo storage.ClientRepo, onlyClient int64) ([]*models.Client, error) {
	if onlyClient > 0 {
		client, err := repo.GetByID(ctx, onlyClient)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, fmt.Errorf("client %d not found", onlyClient)
		}
		return []*models.Client{client}, nil
	}
	return repo.ListActive(ctx)
}

// serveMetrics exposes Prometheus metrics on its own listener.
func serveMetrics(cfg config.MetricsConfig, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.Handler())

	addr := ":" + cfg.Port
	logger.Info("metrics server listening",
		zap.String("addr", addr),
		zap.String("path", cfg.Path),
	)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server failed", zap.Error(err))
	}
}

// printJSON writes a run result to stdout for operators and cron logs.
func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(out))
}
