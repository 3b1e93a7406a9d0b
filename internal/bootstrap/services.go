package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hiremetrics/hirestats/config"
	"github.com/hiremetrics/hirestats/internal/core"
	"github.com/hiremetrics/hirestats/internal/data"
	"github.com/hiremetrics/hirestats/internal/observability/notify/pagerduty"
	"github.com/hiremetrics/hirestats/internal/observability/notify/slack"
	"github.com/hiremetrics/hirestats/internal/observability/statsd"
	"github.com/hiremetrics/hirestats/internal/service"
	"github.com/hiremetrics/hirestats/internal/service/failurenotifier"
)

// shutdownWaitTimeout bounds how long graceful shutdown waits for each
// component.
const shutdownWaitTimeout = 15 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Stats         *service.StatsService
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	MetricsConfig   config.ObservabilityMetricsConfig
	FailureNotifier *failurenotifier.Service
	NotifierConfig  config.ObservabilityNotificationsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires repositories, observability adapters, and domain
// services from raw connections.
func NewServices(deps *ServiceDeps) ServiceContainer {
	if deps == nil {
		return ServiceContainer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.AppConfig{}
	}

	obs := buildObservability(logger, cfg.Observability)
	repos := buildRepositories(deps.DB, deps.RedisClient)

	statsOpts := service.StatsServiceOptions{
		Stats:  repos.StatsRepo,
		Logger: logger,
	}
	if cache := newStatsCacheService(repos, cfg.Cache); cache != nil {
		statsOpts.Cache = cache
	}

	return ServiceContainer{
		Stats:         service.NewStatsService(statsOpts),
		Observability: obs,
	}
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB          *sql.DB
	Redis       redis.UniversalClient
	PostingRepo *data.PostingRepo
	StatsRepo   *data.StatsRepo
	CacheRepo   *data.RedisCacheRepo
}

func buildRepositories(db *sql.DB, redisClient redis.UniversalClient) *serviceRepositories {
	repos := &serviceRepositories{
		DB:          db,
		Redis:       redisClient,
		PostingRepo: data.NewPostingRepo(db),
		StatsRepo:   data.NewStatsRepo(db),
	}
	// Leave the cache repo nil without Redis so downstream nil checks hold.
	if redisClient != nil {
		repos.CacheRepo = data.NewRedisCacheRepo(redisClient)
	}
	return repos
}

func newStatsCacheService(repos *serviceRepositories, cfg config.CacheConfig) *core.StatsCacheService {
	if repos.CacheRepo == nil {
		return nil
	}
	cacheCfg := core.DefaultStatsCacheConfig()
	if cfg.StatsTTL > 0 {
		cacheCfg.TTL = cfg.StatsTTL
	}
	return core.NewStatsCacheService(core.StatsCacheServiceOptions{
		Cache:  repos.CacheRepo,
		Config: cacheCfg,
	})
}

// buildObservability configures the metrics sink and failure notifier. Both
// degrade to no-ops when disabled or misconfigured; a bad statsd address
// must not keep the service from starting.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obs := ObservabilityContainer{
		MetricsConfig:   cfg.Metrics,
		NotifierConfig:  cfg.Notifications,
		FailureNotifier: buildFailureNotifier(logger, cfg.Notifications),
	}

	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  statsd.DefaultPrefix,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		} else {
			obs.MetricsSink = client
		}
	}

	return obs
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *failurenotifier.Service {
	notifierLogger := logger.With("component", "failure_notifier")

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{Logger: notifierLogger})
	}

	var sinks []failurenotifier.SinkRegistration

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "pagerduty", Sink: client})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger: notifierLogger,
		Sinks:  sinks,
	})
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// RunServicesWithShutdown starts the enabled services and blocks until a
// shutdown signal arrives or one of them fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, errorChannelBufferSize(enabled))

	var httpServer *http.Server
	if enabled[config.ServiceModeHTTP] {
		httpServer = startHTTP(cfg, logger)
	}

	var aggregatorDone <-chan struct{}
	if enabled[config.ServiceModeAggregator] {
		aggregatorDone = startAggregatorLoop(serviceCtx, cfg, logger, errCh)
	}

	return waitForShutdown(shutdownState{
		ctx:            serviceCtx,
		cancel:         cancel,
		errCh:          errCh,
		httpServer:     httpServer,
		aggregatorDone: aggregatorDone,
		logger:         logger,
	})
}

func startHTTP(cfg *ServiceOrchestrationConfig, logger *slog.Logger) *http.Server {
	httpCfg := &HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		DB:       cfg.DB,
		Logger:   logger,
	}
	if cfg.RedisClient != nil {
		httpCfg.Cache = data.NewRedisCacheRepo(cfg.RedisClient)
	}
	return StartHTTPServer(httpCfg)
}

// startAggregatorLoop runs the periodic aggregation loop in a goroutine and
// returns a channel closed when the loop exits.
func startAggregatorLoop(ctx context.Context, cfg *ServiceOrchestrationConfig, logger *slog.Logger, errCh chan<- error) <-chan struct{} {
	aggCfg := cfg.Config.Aggregator

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := RunAggregator(ctx, AggregatorRunnerConfig{
			DB:              cfg.DB,
			RedisClient:     cfg.RedisClient,
			Logger:          logger,
			Interval:        aggCfg.Interval,
			MinThreshold:    aggCfg.MinThreshold,
			RunOnStart:      aggCfg.RunOnStart,
			LockTTL:         aggCfg.LockTTL,
			Metrics:         cfg.Services.Observability.MetricsSink,
			FailureNotifier: cfg.Services.Observability.FailureNotifier,
		})
		if err == nil {
			return
		}
		select {
		case errCh <- fmt.Errorf("aggregator failed: %w", err):
		case <-ctx.Done():
		}
	}()

	logger.InfoContext(ctx, "background service started", "service", "aggregator")
	return done
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range []config.ServiceMode{config.ServiceModeHTTP, config.ServiceModeAggregator} {
		if enabled[mode] {
			count++
		}
	}
	return count
}

// errorChannelBufferSize leaves one slot of headroom so a service failing
// during shutdown never blocks.
func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

type shutdownState struct {
	ctx            context.Context
	cancel         context.CancelFunc
	errCh          <-chan error
	httpServer     *http.Server
	aggregatorDone <-chan struct{}
	logger         *slog.Logger
}

// waitForShutdown blocks until SIGINT/SIGTERM or a service error, then runs
// the graceful stop sequence. A service error is returned to the caller
// even when the stop itself succeeds.
func waitForShutdown(st shutdownState) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		st.logger.Info("shutting down services...")
		st.cancel()
		return gracefulStop(st)
	case err := <-st.errCh:
		st.logger.Error("service error", "error", err)
		st.cancel()
		if stopErr := gracefulStop(st); stopErr != nil {
			st.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

func gracefulStop(st shutdownState) error {
	if st.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(st.ctx, shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  st.httpServer,
			Logger:  st.logger,
		}); err != nil {
			return err
		}
	}

	if st.aggregatorDone != nil {
		select {
		case <-st.aggregatorDone:
			st.logger.Info("aggregator stopped")
		case <-time.After(shutdownWaitTimeout):
			st.logger.Warn("timeout waiting for aggregator to stop")
		}
	}

	return nil
}
