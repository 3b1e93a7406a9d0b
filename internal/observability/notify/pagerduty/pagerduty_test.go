package pagerduty

import (
	"strings"
	"testing"
	"time"

	"github.com/hiremetrics/hirestats/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when routing key missing")
	}
}

func TestBuildEventDefaults(t *testing.T) {
	client, err := NewClient(Config{
		RoutingKey: "key",
		Source:     "",
		Component:  "",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := notify.PassFailurePayload{
		Component:  "aggregator",
		Trigger:    "interval",
		Error:      "boom",
		ErrorClass: "err_class",
	}
	event := client.buildEvent(payload)

	payloadSection, ok := event["payload"].(map[string]any)
	if !ok {
		t.Fatalf("expected payload section")
	}
	if payloadSection["severity"] != notify.SeverityCritical {
		t.Fatalf("expected default severity, got %v", payloadSection["severity"])
	}
	if payloadSection["source"] != "hirestats" {
		t.Fatalf("expected default source, got %v", payloadSection["source"])
	}
	if payloadSection["component"] != "hirestats" {
		t.Fatalf("expected default component, got %v", payloadSection["component"])
	}

	custom, ok := payloadSection["custom_details"].(map[string]any)
	if !ok {
		t.Fatalf("expected custom details")
	}

	required := []string{"component", "trigger", "processed", "saved", "skipped", "failed", "error", "error_class"}
	for _, key := range required {
		if _, exists := custom[key]; !exists {
			t.Fatalf("expected key %s in custom details", key)
		}
	}

	dedup, _ := event["dedup_key"].(string)
	if dedup != "aggregator:interval" {
		t.Fatalf("expected dedup key to pair component and trigger, got %s", dedup)
	}
}

func TestBuildEventDedupTrimsMissingTrigger(t *testing.T) {
	client, err := NewClient(Config{RoutingKey: "key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	event := client.buildEvent(notify.PassFailurePayload{Component: "aggregator"})

	dedup, _ := event["dedup_key"].(string)
	if dedup != "aggregator" {
		t.Fatalf("expected trailing separator trimmed, got %s", dedup)
	}
}

func TestBuildEventMetadataDoesNotOverrideCoreFields(t *testing.T) {
	client, err := NewClient(Config{RoutingKey: "key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	event := client.buildEvent(notify.PassFailurePayload{
		Component: "aggregator",
		Error:     "boom",
		Metadata: map[string]string{
			"error":         "overridden",
			"min_threshold": "5",
		},
	})

	payloadSection, ok := event["payload"].(map[string]any)
	if !ok {
		t.Fatalf("expected payload section")
	}
	custom, ok := payloadSection["custom_details"].(map[string]any)
	if !ok {
		t.Fatalf("expected custom details")
	}

	if custom["error"] != "boom" {
		t.Fatalf("expected core error field preserved, got %v", custom["error"])
	}
	if custom["min_threshold"] != "5" {
		t.Fatalf("expected metadata key carried, got %v", custom["min_threshold"])
	}

	summary, _ := payloadSection["summary"].(string)
	if !strings.Contains(summary, "aggregator") {
		t.Fatalf("expected summary to name the component, got %s", summary)
	}
}
