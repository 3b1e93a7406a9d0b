package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hiremetrics/hirestats/config"
	"github.com/hiremetrics/hirestats/internal/data"
	httpx "github.com/hiremetrics/hirestats/internal/http"
)

// HTTPServerConfig carries everything the HTTP service needs.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	// DB and Cache back the readiness probes; nil entries are skipped.
	DB     *sql.DB
	Cache  *data.RedisCacheRepo
	Logger *slog.Logger
}

// StartHTTPServer builds the router with its middleware stack and starts
// listening in a background goroutine. The returned server is used later
// for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Stats:  cfg.Services.Stats,
		Logger: logger,
	}
	// Leave probe fields nil rather than assigning a typed-nil pointer,
	// so the router's interface nil checks hold.
	if cfg.DB != nil {
		services.DB = cfg.DB
	}
	if cfg.Cache != nil {
		services.Cache = cfg.Cache
	}

	server := &http.Server{
		Addr:         listenAddr(appCfg.HTTP),
		Handler:      wrapRouter(logger, services, appCfg.HTTP),
		ReadTimeout:  appCfg.HTTP.ReadTimeout,
		WriteTimeout: appCfg.HTTP.WriteTimeout,
		IdleTimeout:  appCfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// wrapRouter layers the middleware as Recover -> Logging -> Compression ->
// Router, compression innermost so the access log records compressed sizes.
func wrapRouter(logger *slog.Logger, services httpx.RouterServices, cfg config.HTTPConfig) http.Handler {
	var h http.Handler = httpx.NewRouter(services)

	if cfg.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", cfg.CompressionLevel)
		h = httpx.Compression(httpx.CompressionConfig{Level: cfg.CompressionLevel})(h)
	}
	h = httpx.Logging(logger)(h)
	return httpx.Recover(logger)(h)
}

func listenAddr(cfg config.HTTPConfig) string {
	if cfg.Addr == "" {
		return ":8080"
	}
	return cfg.Addr
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer drains in-flight requests, giving up after ten seconds.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(cfg.Context, 10*time.Second)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
