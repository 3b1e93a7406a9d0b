package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hiremetrics/hirestats/internal/adapters/aggregator"
	"github.com/hiremetrics/hirestats/internal/data"
	"github.com/hiremetrics/hirestats/internal/observability/statsd"
	"github.com/hiremetrics/hirestats/internal/service/failurenotifier"
	"github.com/redis/go-redis/v9"
)

// AggregatorRunnerConfig contains configuration for the aggregation loop.
type AggregatorRunnerConfig struct {
	DB              *sql.DB
	RedisClient     redis.UniversalClient
	Logger          *slog.Logger
	Interval        time.Duration
	MinThreshold    int
	RunOnStart      bool
	LockTTL         time.Duration
	Metrics         statsd.Sink
	FailureNotifier *failurenotifier.Service
}

// RunAggregator starts the periodic days-to-hire aggregation loop.
func RunAggregator(ctx context.Context, cfg AggregatorRunnerConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := aggregator.RunnerOptions{
		DB:              cfg.DB,
		Interval:        cfg.Interval,
		MinThreshold:    cfg.MinThreshold,
		RunOnStart:      cfg.RunOnStart,
		LockTTL:         cfg.LockTTL,
		Logger:          slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		SlogLogger:      logger,
		Metrics:         cfg.Metrics,
		FailureNotifier: cfg.FailureNotifier,
	}

	// Wire the pass lock when a Redis client is available.
	if cfg.RedisClient != nil {
		opts.Cache = data.NewRedisCacheRepo(cfg.RedisClient)
	}

	runner, err := aggregator.NewRunner(opts)
	if err != nil {
		return fmt.Errorf("create aggregator runner: %w", err)
	}

	return runner.Run(ctx)
}
