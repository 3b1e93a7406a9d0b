// Package pagerduty pages on aggregation failures through the PagerDuty
// Events API v2.
package pagerduty

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hiremetrics/hirestats/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config holds the PagerDuty sink settings. Client and Timeout are optional;
// the delivery layer applies its defaults.
type Config struct {
	RoutingKey string
	Source     string
	Component  string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client is the PagerDuty notification sink.
type Client struct {
	routingKey string
	source     string
	component  string
	delivery   notify.Delivery
}

// NewClient builds the sink; a routing key is mandatory.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}

	return &Client{
		routingKey: key,
		source:     orDefault(cfg.Source, "hirestats"),
		component:  orDefault(cfg.Component, "hirestats"),
		delivery:   notify.NewDelivery("pagerduty api", APIEndpoint, cfg.RetryLimit, cfg.Client, cfg.Timeout),
	}, nil
}

// SendPassFailure submits a trigger event to PagerDuty.
func (c *Client) SendPassFailure(ctx context.Context, payload notify.PassFailurePayload) error {
	return c.delivery.Send(ctx, c.buildEvent(payload))
}

func (c *Client) buildEvent(payload notify.PassFailurePayload) map[string]any {
	occurredAt := payload.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	custom := map[string]any{
		"component":   payload.Component,
		"trigger":     payload.Trigger,
		"processed":   payload.Processed,
		"saved":       payload.Saved,
		"skipped":     payload.Skipped,
		"failed":      payload.Failed,
		"error":       payload.Error,
		"error_class": payload.ErrorClass,
	}
	for k, v := range payload.Metadata {
		if _, exists := custom[k]; !exists {
			custom[k] = v
		}
	}

	// Repeated failures of the same component and trigger collapse into one
	// open incident instead of paging per pass.
	dedupKey := strings.Trim(payload.Component+":"+payload.Trigger, ":")

	return map[string]any{
		"routing_key":  c.routingKey,
		"event_action": "trigger",
		"dedup_key":    dedupKey,
		"payload": map[string]any{
			"summary": fmt.Sprintf("Aggregation pass failed in %s (%s)",
				orDefault(payload.Component, "unknown"),
				orDefault(payload.Trigger, "unknown")),
			"severity":       orDefault(strings.ToLower(payload.Severity), notify.SeverityCritical),
			"source":         c.source,
			"component":      c.component,
			"timestamp":      occurredAt.Format(time.RFC3339),
			"custom_details": custom,
		},
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
