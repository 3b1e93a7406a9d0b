package httpx

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Logging returns a middleware that logs one line per request with the
// final status and elapsed time.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusRecorder remembers the status code a handler wrote. Handlers that
// never call WriteHeader implicitly produce 200, which is the initial value.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that turns handler panics into 500 responses
// and logs the stack.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.Error("panic",
						slog.Any("error", v),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	// Level is the gzip level, 1 (fastest) to 9 (best). Out-of-range values
	// fall back to gzip.DefaultCompression.
	Level int
	// MinSize buffers the response until this many bytes have been written
	// before committing to gzip. Zero compresses unconditionally.
	MinSize int
	Logger  *slog.Logger
}

// compressibleTypes lists the media types worth gzipping. Anything not
// listed, notably images and archives, passes through untouched.
var compressibleTypes = map[string]struct{}{
	"application/atom+xml":     {},
	"application/javascript":   {},
	"application/json":         {},
	"application/rss+xml":      {},
	"application/x-javascript": {},
	"application/xml":          {},
	"image/svg+xml":            {},
	"text/css":                 {},
	"text/html":                {},
	"text/javascript":          {},
	"text/plain":               {},
	"text/xml":                 {},
}

// Compression returns a middleware that gzips responses for clients that
// accept it. The decision is made per response at WriteHeader time:
// informational, 204, and 304 statuses, HEAD requests, responses that
// already carry a Content-Encoding, and non-compressible content types all
// pass through uncompressed.
func Compression(cfg CompressionConfig) func(http.Handler) http.Handler {
	level := cfg.Level
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// One pool per middleware instance; the level is fixed at construction.
	pool := &sync.Pool{
		New: func() any {
			w, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				return gzip.NewWriter(io.Discard)
			}
			return w
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !clientAcceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Accept-Encoding")

			gz := &gzipWriter{
				ResponseWriter: w,
				pool:           pool,
				minSize:        cfg.MinSize,
			}
			next.ServeHTTP(gz, r)

			if err := gz.finish(); err != nil {
				logger.ErrorContext(r.Context(), "closing gzip writer failed", "error", err)
			}
		})
	}
}

// clientAcceptsGzip reports whether the Accept-Encoding header admits gzip,
// honoring an explicit q=0 opt-out.
func clientAcceptsGzip(header string) bool {
	for _, entry := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(entry, ";")
		if !strings.EqualFold(strings.TrimSpace(coding), "gzip") {
			continue
		}
		q := strings.ReplaceAll(strings.ToLower(params), " ", "")
		if strings.HasPrefix(q, "q=0") && !strings.HasPrefix(q, "q=0.") {
			return false
		}
		if strings.HasPrefix(q, "q=0.0") {
			return false
		}
		return true
	}
	return false
}

func compressible(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	_, ok := compressibleTypes[strings.ToLower(strings.TrimSpace(mediaType))]
	return ok
}

// gzipWriter wraps a ResponseWriter and routes the body through a pooled
// gzip.Writer once WriteHeader commits to compression.
type gzipWriter struct {
	http.ResponseWriter
	pool    *sync.Pool
	minSize int

	gz          *gzip.Writer
	wroteHeader bool
	pending     []byte
}

func (w *gzipWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	skip := status < http.StatusOK ||
		status == http.StatusNoContent ||
		status == http.StatusNotModified ||
		w.Header().Get("Content-Encoding") != "" ||
		!compressible(w.Header().Get("Content-Type"))
	if skip {
		w.ResponseWriter.WriteHeader(status)
		return
	}

	gz, ok := w.pool.Get().(*gzip.Writer)
	if !ok {
		w.ResponseWriter.WriteHeader(status)
		return
	}
	gz.Reset(w.ResponseWriter)
	w.gz = gz

	w.Header().Set("Content-Encoding", "gzip")
	// The compressed length is unknown up front.
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(status)
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.gz == nil {
		return w.ResponseWriter.Write(b)
	}

	// Hold back small responses until the threshold is met.
	if w.minSize > 0 && len(w.pending) < w.minSize {
		w.pending = append(w.pending, b...)
		if len(w.pending) < w.minSize {
			return len(b), nil
		}
		_, err := w.gz.Write(w.pending)
		w.pending = nil
		return len(b), err
	}

	return w.gz.Write(b)
}

// finish flushes any held-back bytes, closes the gzip stream, and returns
// the writer to the pool.
func (w *gzipWriter) finish() error {
	if w.gz == nil {
		return nil
	}
	var err error
	if len(w.pending) > 0 {
		_, err = w.gz.Write(w.pending)
		w.pending = nil
	}
	if closeErr := w.gz.Close(); err == nil {
		err = closeErr
	}
	w.pool.Put(w.gz)
	w.gz = nil
	return err
}

// Flush implements http.Flusher for streaming handlers.
func (w *gzipWriter) Flush() {
	if w.gz != nil {
		_ = w.gz.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker.
func (w *gzipWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("http.Hijacker not supported")
}

// Push implements http.Pusher.
func (w *gzipWriter) Push(target string, opts *http.PushOptions) error {
	if p, ok := w.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return errors.New("http.Pusher not supported")
}
