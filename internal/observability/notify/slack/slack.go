// Package slack delivers aggregation failure notifications to a Slack
// incoming webhook.
package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hiremetrics/hirestats/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client delivers pass failure notifications to a Slack webhook.
type Client struct {
	channel  string
	username string
	delivery notify.Delivery
}

// NewClient builds a Slack webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		username = "hirestats"
	}

	return &Client{
		channel:  strings.TrimSpace(cfg.Channel),
		username: username,
		delivery: notify.NewDelivery("slack webhook", webhookURL, cfg.RetryLimit, cfg.Client, cfg.Timeout),
	}, nil
}

// SendPassFailure posts a formatted message to Slack.
func (c *Client) SendPassFailure(ctx context.Context, payload notify.PassFailurePayload) error {
	msg := map[string]any{
		"text":     formatText(payload),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return c.delivery.Send(ctx, msg)
}

// formatText renders the failure as a multi-line Slack message: a header
// naming the component and trigger, then one bullet per populated field.
func formatText(payload notify.PassFailurePayload) string {
	var text strings.Builder

	text.WriteString("*Aggregation pass failed*")
	if payload.Component != "" {
		fmt.Fprintf(&text, " `%s`", payload.Component)
	}
	if payload.Trigger != "" {
		fmt.Fprintf(&text, " (%s)", payload.Trigger)
	}
	text.WriteByte('\n')

	severity := payload.Severity
	if severity == "" {
		severity = notify.SeverityCritical
	}
	bullet(&text, "Severity", severity)
	bullet(&text, "Combinations", summaryLine(payload))
	bullet(&text, "Error class", payload.ErrorClass)
	bullet(&text, "Error", escapeText(payload.Error))
	writeMetadata(&text, payload.Metadata)

	occurredAt := payload.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	text.WriteString("• Timestamp: ")
	text.WriteString(occurredAt.UTC().Format(time.RFC3339))

	return text.String()
}

// summaryLine renders the partial pass counters, or an empty string when the
// pass failed before processing any combination.
func summaryLine(payload notify.PassFailurePayload) string {
	if payload.Processed == 0 && payload.Saved == 0 && payload.Skipped == 0 && payload.Failed == 0 {
		return ""
	}
	return fmt.Sprintf("%d processed, %d saved, %d skipped, %d failed",
		payload.Processed, payload.Saved, payload.Skipped, payload.Failed)
}

func bullet(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(text, "• %s: %s\n", label, value)
}

func writeMetadata(text *strings.Builder, metadata map[string]string) {
	if len(metadata) == 0 {
		return
	}
	text.WriteString("• Metadata:\n")

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(text, "    • %s: %s\n", k, metadata[k])
	}
}

// escapeText escapes the characters Slack treats as control sequences.
func escapeText(value string) string {
	if value == "" {
		return ""
	}
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(value)
}
