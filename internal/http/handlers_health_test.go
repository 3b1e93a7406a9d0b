package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthHandlerGET(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	healthHandler(rec, req)

	resp := rec.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %q", ct)
	}

	body := rec.Body.String()
	if body != `{"status":"ok"}` {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestHealthHandlerHEAD(t *testing.T) {
	req := httptest.NewRequest(http.MethodHead, "/healthz", nil)
	rec := httptest.NewRecorder()

	healthHandler(rec, req)

	resp := rec.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %q", ct)
	}

	if bodyLen := rec.Body.Len(); bodyLen != 0 {
		t.Fatalf("expected empty body for HEAD request, got %d bytes", bodyLen)
	}
}

type stubDBPinger struct{ err error }

func (s stubDBPinger) PingContext(_ context.Context) error { return s.err }

type stubCacheHealth struct{ err error }

func (s stubCacheHealth) Health(_ context.Context) error { return s.err }

func runReadiness(t *testing.T, h *ReadinessHandlers) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)
	return rec
}

func TestReadiness_AllProbesHealthy(t *testing.T) {
	h := &ReadinessHandlers{DB: stubDBPinger{}, Cache: stubCacheHealth{}}

	rec := runReadiness(t, h)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ready" {
		t.Fatalf("expected status ready, got %q", body["status"])
	}
}

func TestReadiness_DatabaseDown(t *testing.T) {
	h := &ReadinessHandlers{
		DB:    stubDBPinger{err: errors.New("connection refused")},
		Cache: stubCacheHealth{},
	}

	rec := runReadiness(t, h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "not_ready" {
		t.Fatalf("expected error not_ready, got %q", body["error"])
	}
	if !strings.Contains(body["message"], "postgres") {
		t.Fatalf("expected message to name the failing probe, got %q", body["message"])
	}
}

func TestReadiness_CacheDown(t *testing.T) {
	h := &ReadinessHandlers{
		DB:    stubDBPinger{},
		Cache: stubCacheHealth{err: errors.New("redis: connection pool exhausted")},
	}

	rec := runReadiness(t, h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !strings.Contains(body["message"], "redis") {
		t.Fatalf("expected message to name the failing probe, got %q", body["message"])
	}
}

func TestReadiness_UnwiredProbesSkipped(t *testing.T) {
	h := &ReadinessHandlers{DB: stubDBPinger{}}

	rec := runReadiness(t, h)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
