package main

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"StockRanker/internal/collector"
	"StockRanker/internal/config"
	"StockRanker/internal/metrics"
	"StockRanker/internal/notifier"
	"StockRanker/internal/recorder"
	"StockRanker/internal/scheduler"
	"StockRanker/internal/screener"
	"StockRanker/internal/strategy"
)

// app bundles the components shared by run and serve.
type app struct {
	cfg      *config.Config
	screener *screener.Screener
	metrics  *metrics.Metrics
	recorder recorder.Recorder
	notifier *notifier.TelegramNotifier
	redis    *redis.Client
}

func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	a := &app{cfg: cfg, metrics: metrics.New()}

	fetcher, err := a.buildFetcher()
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", fetcher.Name()).Int("symbols", len(cfg.Symbols)).Msg("data source ready")

	engine := strategy.NewEngine(cfg.StrategyParams(), a.metrics.IndicatorFailed)
	col := collector.NewCollector(fetcher, cfg.DataSource.Concurrency)
	a.screener = screener.New(col, engine, cfg.Scoring.Workers)

	a.recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			a.recorder = sr
		}
	}

	if cfg.Telegram.BotToken != "" {
		a.notifier = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}
	return a, nil
}

// buildFetcher selects the data source; remote sources are guarded and,
// when Redis is configured, cached.
func (a *app) buildFetcher() (collector.Fetcher, error) {
	ds := a.cfg.DataSource
	var f collector.Fetcher
	switch ds.Type {
	case "csv":
		return collector.NewCSVFetcher(ds.CSVDir), nil
	case "mock":
		return &collector.MockFetcher{Price: 100, Days: 250}, nil
	case "yahoo":
		f = collector.NewGuardedFetcher(
			collector.NewYahooFetcher(ds.YahooRange, ds.YahooSuffix, a.cfg.Proxy),
			collector.GuardOptions{RatePerSecond: ds.RatePerSecond, Burst: ds.Burst},
		)
	default:
		return nil, fmt.Errorf("unknown data source %q", ds.Type)
	}

	if a.cfg.Cache.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: a.cfg.Cache.RedisAddr})
		f = collector.NewCachedFetcher(f, a.redis, a.cfg.Cache.TTL)
		log.Info().Str("addr", a.cfg.Cache.RedisAddr).Dur("ttl", a.cfg.Cache.TTL).Msg("redis bar cache enabled")
	}
	return f, nil
}

// sender returns the notifier as a scheduler sink, or nil when Telegram is off.
// A nil *TelegramNotifier must not leak into the interface.
func (a *app) sender() scheduler.Sender {
	if a.notifier == nil {
		return nil
	}
	return a.notifier
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Warn().Err(err).Msg("close recorder")
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
