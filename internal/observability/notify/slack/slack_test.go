package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hiremetrics/hirestats/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatTextIncludesFields(t *testing.T) {
	text := formatText(notify.PassFailurePayload{
		Component:  "aggregator",
		Trigger:    "interval",
		Processed:  12,
		Saved:      9,
		Skipped:    2,
		Failed:     1,
		Error:      "boom",
		ErrorClass: "test_error",
	})

	for _, want := range []string{
		"Aggregation pass failed",
		"aggregator",
		"interval",
		"12 processed, 9 saved, 2 skipped, 1 failed",
		"boom",
		"test_error",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("message text missing %q:\n%s", want, text)
		}
	}
}

func TestFormatTextOmitsEmptySummary(t *testing.T) {
	text := formatText(notify.PassFailurePayload{
		Component: "aggregator",
		Error:     "boom",
	})

	if strings.Contains(text, "Combinations") {
		t.Fatalf("expected no combinations line for an empty summary, got: %s", text)
	}
}

func TestFormatTextEscapesError(t *testing.T) {
	text := formatText(notify.PassFailurePayload{
		Error: "lookup <stats> failed & aborted",
	})

	if !strings.Contains(text, "lookup &lt;stats&gt; failed &amp; aborted") {
		t.Fatalf("expected escaped error text, got: %s", text)
	}
}

func TestFormatTextDefaultsSeverity(t *testing.T) {
	text := formatText(notify.PassFailurePayload{
		Component: "aggregator",
		Error:     "boom",
	})

	if !strings.Contains(text, "Severity: "+notify.SeverityCritical) {
		t.Fatalf("expected severity default in text: %s", text)
	}
}

func TestSendPassFailureDelivers(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		WebhookURL: srv.URL,
		Channel:    "#alerts",
		Username:   "bot",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	err = client.SendPassFailure(context.Background(), notify.PassFailurePayload{
		Component: "aggregator",
		Error:     "boom",
	})
	if err != nil {
		t.Fatalf("SendPassFailure: %v", err)
	}

	if got["channel"] != "#alerts" {
		t.Errorf("channel = %v, want #alerts", got["channel"])
	}
	if got["username"] != "bot" {
		t.Errorf("username = %v, want bot", got["username"])
	}
	text, _ := got["text"].(string)
	if !strings.Contains(text, "Aggregation pass failed") {
		t.Errorf("text missing header: %q", text)
	}
}

func TestSendPassFailureRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		WebhookURL: srv.URL,
		RetryLimit: 1,
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	err = client.SendPassFailure(context.Background(), notify.PassFailurePayload{Error: "boom"})
	if err != nil {
		t.Fatalf("SendPassFailure after retry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
