package metrics

import (
	"time"

	obserrors "github.com/hiremetrics/hirestats/internal/observability/errors"
	"github.com/hiremetrics/hirestats/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// PassMetric captures the outcome of one aggregation pass for metric emission.
type PassMetric struct {
	Trigger   string
	Result    string
	Duration  time.Duration
	Processed int
	Saved     int
	Skipped   int
	Failed    int
	Err       error
}

// EmitAggregationPass emits standardised per-pass aggregation metrics.
func EmitAggregationPass(sink statsd.Sink, in PassMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"trigger": in.Trigger,
		"result":  in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("aggregation.pass", 1, tags)

	if in.Processed > 0 {
		sink.Count("aggregation.combinations_processed", int64(in.Processed), tags)
	}
	if in.Saved > 0 {
		sink.Count("aggregation.stats_saved", int64(in.Saved), tags)
	}
	if in.Skipped > 0 {
		sink.Count("aggregation.stats_skipped", int64(in.Skipped), tags)
	}
	if in.Failed > 0 {
		sink.Count("aggregation.combinations_failed", int64(in.Failed), tags)
	}

	if in.Duration > 0 {
		sink.Timing("aggregation.pass_duration", in.Duration, CloneTags(tags))
	}

	if in.Result == ResultSuccess {
		sink.Gauge("aggregation.last_success_epoch", float64(time.Now().Unix()), nil)
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
