package failurenotifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hiremetrics/hirestats/internal/observability/notify"
)

// recordingSink captures delivered payloads and optionally fails every call.
type recordingSink struct {
	mu       sync.Mutex
	payloads []notify.PassFailurePayload
	err      error
}

func (r *recordingSink) SendPassFailure(_ context.Context, payload notify.PassFailurePayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return r.err
}

func (r *recordingSink) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func TestNotifyPassFailureDefaultsSeverity(t *testing.T) {
	sink := &recordingSink{}
	svc := NewService(Options{Sinks: []SinkRegistration{{Name: "capture", Sink: sink}}})

	svc.NotifyPassFailure(context.Background(), notify.PassFailurePayload{
		Component: "aggregator",
		Trigger:   "interval",
	})

	if got := sink.calls(); got != 1 {
		t.Fatalf("expected 1 delivery, got %d", got)
	}
	if sink.payloads[0].Severity != notify.SeverityCritical {
		t.Fatalf("severity = %q, want default critical", sink.payloads[0].Severity)
	}
}

func TestNotifyPassFailureReachesEverySink(t *testing.T) {
	// One sink failing must not stop delivery to the others, and the
	// service must swallow the error rather than panic.
	ok := &recordingSink{}
	failing := &recordingSink{err: errors.New("delivery failed")}
	svc := NewService(Options{Sinks: []SinkRegistration{
		{Name: "slack", Sink: ok},
		{Name: "pagerduty", Sink: failing},
	}})

	svc.NotifyPassFailure(context.Background(), notify.PassFailurePayload{Component: "aggregator"})

	if ok.calls() != 1 || failing.calls() != 1 {
		t.Fatalf("expected one delivery per sink, got ok=%d failing=%d", ok.calls(), failing.calls())
	}
}

func TestNewServiceDropsNilSinks(t *testing.T) {
	svc := NewService(Options{Sinks: []SinkRegistration{{Name: "ghost", Sink: nil}}})
	if svc.Enabled() {
		t.Fatal("nil sinks must not count as registered")
	}
	// No sinks at all behaves the same way.
	if NewService(Options{}).Enabled() {
		t.Fatal("Enabled() must be false without sinks")
	}
}
