package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/provider"
	"github.com/wonny/trendscreen/internal/report"
	"github.com/wonny/trendscreen/internal/screener"
	"github.com/wonny/trendscreen/internal/store"
	"github.com/wonny/trendscreen/internal/strategyconfig"
	"github.com/wonny/trendscreen/pkg/config"
	"github.com/wonny/trendscreen/pkg/database"
	"github.com/wonny/trendscreen/pkg/logger"
	"github.com/wonny/trendscreen/pkg/redis"
)

const cachePrefix = "screener"

// appOptions overrides process config for one command.
type appOptions struct {
	DataDir     string
	ReportDir   string
	TopN        int
	NoReport    bool
	RequireDB   bool // fail instead of falling back to the memory store
	MemoryStore bool // skip the database even if configured
}

// app holds the wired components shared by screen, schedule and serve.
type app struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	log      *logger.Logger
	runner   *screener.Runner
	store    contracts.ResultStore
	db       *database.DB
	redis    *redis.Client
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if opts.DataDir != "" {
		cfg.Screen.DataDir = opts.DataDir
	}
	if opts.ReportDir != "" {
		cfg.Screen.ReportDir = opts.ReportDir
	}

	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	path := strategyFile
	if path == "" {
		path = cfg.Screen.StrategyFile
	}
	strategy, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	if opts.TopN > 0 || strategy.Workers == 0 {
		strategy = strategy.Clone()
		if opts.TopN > 0 {
			strategy.Scoring.TopN = opts.TopN
		}
		if strategy.Workers == 0 {
			strategy.Workers = cfg.Screen.Workers
		}
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}
	a.strategy = strategy

	s, err := screener.New(strategy, log)
	if err != nil {
		return nil, err
	}

	a.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		a.redis = redis.Disabled()
	}
	cache := redis.NewCache(a.redis, cachePrefix)

	var dp contracts.DataProvider = provider.NewCSVProvider(cfg.Screen.DataDir, log)
	if cache.Enabled() {
		dp = provider.NewCachedProvider(dp, cache, redis.TTLLong, log)
	}
	loader := provider.NewLoader(dp, timeframes(strategy), cfg.Screen.Workers, log)

	if err := a.openStore(ctx, opts, cache); err != nil {
		a.Close()
		return nil, err
	}

	var reports *report.Writer
	if !opts.NoReport {
		reports = report.NewWriter(cfg.Screen.ReportDir, log)
	}

	a.runner = screener.NewRunner(s, loader, a.store, reports, log)
	return a, nil
}

func (a *app) openStore(ctx context.Context, opts appOptions, cache *redis.Cache) error {
	if opts.MemoryStore || !a.cfg.Database.Enabled() {
		if opts.RequireDB {
			return fmt.Errorf("DATABASE_URL is required to save results")
		}
		a.store = store.NewMemoryStore(100)
		return nil
	}

	db, err := database.New(ctx, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	a.db = db

	pg := store.NewPostgresStore(db.Pool)
	if err := pg.Migrate(ctx); err != nil {
		return err
	}

	a.store = pg
	if cache.Enabled() {
		a.store = store.NewCachedStore(pg, cache, a.log)
	}
	a.log.Info("Connected to database")
	return nil
}

// Close releases database and Redis connections.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// timeframes lists what the strategy reads beyond daily.
func timeframes(cfg *strategyconfig.Config) []contracts.Timeframe {
	if cfg.WeeklyTrend.Enabled {
		return []contracts.Timeframe{contracts.Weekly}
	}
	return nil
}

// splitTickers parses a comma separated ticker list.
func splitTickers(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, strings.ToUpper(t))
		}
	}
	return out
}
