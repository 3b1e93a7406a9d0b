package httpx

import (
	"bytes"
	"errors"
	"log"
	"log/slog"
	"net/http"

	"github.com/hiremetrics/hirestats/internal/service"
)

// RouterServices holds the services and dependency probes needed by the HTTP router.
type RouterServices struct {
	Stats *service.StatsService
	// DB and Cache back the readiness endpoint; nil entries are skipped.
	DB     DBPinger
	Cache  CacheHealth
	Logger *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	statsHandlers := &StatsHandlers{Svc: services.Stats}
	readiness := &ReadinessHandlers{
		DB:     services.DB,
		Cache:  services.Cache,
		Logger: services.Logger,
	}

	registerStatsRoutes(mux, statsHandlers)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", http.HandlerFunc(readiness.Ready))

	// Unmatched paths get the JSON error envelope instead of the mux's
	// plain-text 404.
	return jsonNotFound{mux: mux}
}

func registerStatsRoutes(mux *http.ServeMux, h *StatsHandlers) {
	mux.HandleFunc("GET /api/stats/days-to-hire", h.GetDaysToHire)
}

// jsonNotFound buffers each response so the ServeMux default 404 can be
// replaced after dispatch. Handler-written 404s already carry the JSON
// envelope and are replayed untouched.
type jsonNotFound struct {
	mux *http.ServeMux
}

func (h jsonNotFound) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var rec responseBuffer
	h.mux.ServeHTTP(&rec, r)

	if rec.status() == http.StatusNotFound && rec.header.Get("Content-Type") != "application/json" {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("resource not found")})
		return
	}
	rec.replay(w)
}

// responseBuffer is an http.ResponseWriter that holds the whole response in
// memory until replay. Responses here are small JSON bodies.
type responseBuffer struct {
	header http.Header
	code   int
	body   bytes.Buffer
}

func (b *responseBuffer) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}

func (b *responseBuffer) WriteHeader(code int) {
	if b.code == 0 {
		b.code = code
	}
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *responseBuffer) status() int {
	if b.code == 0 {
		return http.StatusOK
	}
	return b.code
}

func (b *responseBuffer) replay(w http.ResponseWriter) {
	dst := w.Header()
	for k, vs := range b.header {
		dst[k] = vs
	}
	w.WriteHeader(b.status())
	if _, err := w.Write(b.body.Bytes()); err != nil {
		log.Printf("failed to write buffered response: %v", err)
	}
}
