package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
)

// PassFailurePayload captures the canonical data we emit when an aggregation
// pass fails.
type PassFailurePayload struct {
	Component  string
	Trigger    string
	Error      string
	ErrorClass string
	Severity   string
	Processed  int
	Saved      int
	Skipped    int
	Failed     int
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of consuming pass failure notifications.
type Sink interface {
	SendPassFailure(ctx context.Context, payload PassFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload PassFailurePayload) error

// SendPassFailure implements the Sink interface.
func (f SinkFunc) SendPassFailure(ctx context.Context, payload PassFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
