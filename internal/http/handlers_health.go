package httpx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// DBPinger is the subset of *sql.DB consulted by the readiness probe.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// CacheHealth is the subset of the cache repository consulted by the readiness probe.
type CacheHealth interface {
	Health(ctx context.Context) error
}

const readinessProbeTimeout = 5 * time.Second

// ReadinessHandlers reports whether the backing stores can serve lookups.
// Probes run concurrently; any failing dependency makes the endpoint report
// 503 with the failing probe in the message.
type ReadinessHandlers struct {
	DB     DBPinger
	Cache  CacheHealth
	Logger *slog.Logger
}

// Ready handles readiness checks by pinging Postgres and Redis in parallel.
// Dependencies that are not wired are skipped.
func (h *ReadinessHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessProbeTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if h.DB != nil {
		g.Go(func() error {
			if err := h.DB.PingContext(gctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			return nil
		})
	}
	if h.Cache != nil {
		g.Go(func() error {
			if err := h.Cache.Health(gctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if h.Logger != nil {
			h.Logger.WarnContext(r.Context(), "readiness probe failed", "error", err)
		}
		WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "not_ready", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
