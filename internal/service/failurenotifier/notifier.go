// Package failurenotifier fans aggregation pass failures out to the
// configured alerting sinks (Slack, PagerDuty).
package failurenotifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hiremetrics/hirestats/internal/observability/notify"
)

// SinkRegistration names a sink so delivery errors can be attributed in logs.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the failure notifier service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
}

// Service broadcasts a failure event to every registered sink. Delivery is
// best effort: a sink error is logged, never returned to the caller.
type Service struct {
	logger *slog.Logger
	sinks  []SinkRegistration
}

// NewService builds a Service from the given options, dropping nil sinks.
func NewService(opts Options) *Service {
	s := &Service{logger: opts.Logger}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "failure_notifier")
	}
	for _, reg := range opts.Sinks {
		if reg.Sink == nil {
			continue
		}
		if reg.Name == "" {
			reg.Name = "sink"
		}
		s.sinks = append(s.sinks, reg)
	}
	return s
}

// NotifyPassFailure delivers the payload to all sinks concurrently and
// returns once every delivery attempt has finished.
func (s *Service) NotifyPassFailure(ctx context.Context, payload notify.PassFailurePayload) {
	if len(s.sinks) == 0 {
		return
	}
	if payload.Severity == "" {
		payload.Severity = notify.SeverityCritical
	}

	var wg sync.WaitGroup
	wg.Add(len(s.sinks))
	for _, reg := range s.sinks {
		go func() {
			defer wg.Done()
			s.deliver(ctx, reg, payload)
		}()
	}
	wg.Wait()
}

func (s *Service) deliver(ctx context.Context, reg SinkRegistration, payload notify.PassFailurePayload) {
	if err := reg.Sink.SendPassFailure(ctx, payload); err != nil {
		s.logger.Error("failure notifier delivery error",
			"sink", reg.Name,
			"component", payload.Component,
			"trigger", payload.Trigger,
			"error", err,
		)
	}
}

// Enabled reports whether at least one sink is registered.
func (s *Service) Enabled() bool {
	return len(s.sinks) > 0
}
