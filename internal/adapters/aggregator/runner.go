// Package aggregator provides the adapter that runs aggregation passes on an interval.
package aggregator

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/hiremetrics/hirestats/internal/core"
	"github.com/hiremetrics/hirestats/internal/data"
	"github.com/hiremetrics/hirestats/internal/domain/model"
	obserrors "github.com/hiremetrics/hirestats/internal/observability/errors"
	"github.com/hiremetrics/hirestats/internal/observability/metrics"
	"github.com/hiremetrics/hirestats/internal/observability/notify"
	"github.com/hiremetrics/hirestats/internal/observability/statsd"
	"github.com/hiremetrics/hirestats/internal/service"
	"github.com/hiremetrics/hirestats/internal/service/failurenotifier"
)

// Pass trigger names used in logs, metric tags and failure notifications.
const (
	triggerStartup  = "startup"
	triggerInterval = "interval"
)

// passLockKey is the cache key replicas contend on before starting a pass.
const passLockKey = "aggregation:pass:lock"

// Runner provides a simple adapter to run the aggregation loop.
// It constructs the aggregator service and runs a pass loop with configurable interval.
type Runner struct {
	aggregator   *service.AggregatorService
	interval     time.Duration
	minThreshold int
	runOnStart   bool
	lockTTL      time.Duration
	lock         core.CacheRepository
	notifier     *failurenotifier.Service
	logger       *log.Logger
	metrics      statsd.Sink
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	DB              *sql.DB
	Interval        time.Duration
	MinThreshold    int
	RunOnStart      bool
	LockTTL         time.Duration
	Logger          *log.Logger
	SlogLogger      *slog.Logger
	Metrics         statsd.Sink
	FailureNotifier *failurenotifier.Service

	// Optional dependency injections for testing/decoupling
	Postings core.PostingRepository
	Stats    core.StatsRepository

	// Optional cache dependency backing the cross-replica pass lock
	Cache core.CacheRepository
}

// NewRunner creates a new aggregation runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if err := validateRunnerOptions(&opts); err != nil {
		return nil, err
	}

	deps := wireRunnerDependencies(opts)
	aggregator := service.NewAggregatorService(deps)

	return &Runner{
		aggregator:   aggregator,
		interval:     opts.Interval,
		minThreshold: opts.MinThreshold,
		runOnStart:   opts.RunOnStart,
		lockTTL:      opts.LockTTL,
		lock:         opts.Cache,
		notifier:     opts.FailureNotifier,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}, nil
}

// validateRunnerOptions validates and sets defaults for RunnerOptions.
func validateRunnerOptions(opts *RunnerOptions) error {
	if opts.DB == nil && (opts.Postings == nil || opts.Stats == nil) {
		return errors.New("either DB or posting and stats repositories must be provided")
	}
	if opts.Interval <= 0 {
		opts.Interval = 1 * time.Hour // Default to hourly passes
	}
	if opts.MinThreshold <= 0 {
		opts.MinThreshold = service.DefaultMinThreshold
	}
	if opts.LockTTL <= 0 {
		// A crashed holder's lock clears by the time the next pass is due.
		opts.LockTTL = opts.Interval
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.SlogLogger == nil {
		opts.SlogLogger = slog.Default()
	}
	return nil
}

// wireRunnerDependencies wires up all dependencies for the aggregator service.
func wireRunnerDependencies(opts RunnerOptions) service.AggregatorServiceOptions {
	var postings core.PostingRepository
	if opts.Postings != nil {
		postings = opts.Postings
	} else {
		postings = data.NewPostingRepo(opts.DB)
	}

	var stats core.StatsRepository
	if opts.Stats != nil {
		stats = opts.Stats
	} else {
		stats = data.NewStatsRepo(opts.DB)
	}

	return service.AggregatorServiceOptions{
		Postings: postings,
		Stats:    stats,
		Logger:   opts.SlogLogger,
	}
}

// Run starts the aggregation loop and runs until the context is cancelled.
// It executes one pass per interval, optionally preceded by an immediate
// startup pass, and logs the results.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Printf("Starting aggregation runner with interval %v", r.interval)

	if r.runOnStart {
		r.runPass(ctx, triggerStartup)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Printf("Aggregation runner stopping: %v", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			r.runPass(ctx, triggerInterval)
		}
	}
}

// runPass executes a single aggregation pass under the cross-replica lock.
func (r *Runner) runPass(ctx context.Context, trigger string) {
	if r.lock != nil {
		acquired, err := r.acquirePassLock(ctx)
		if err != nil {
			// Duplicate passes converge last-writer-wins through the per-key
			// uniqueness constraint, so a broken lock never stops the pass.
			r.logger.Printf("Aggregation pass lock error: %v", err)
		} else if !acquired {
			r.logger.Printf("Aggregation pass lock held elsewhere, skipping")
			r.emitPassMetrics(trigger, model.AggregateSummary{}, 0, nil)
			return
		} else {
			defer r.releasePassLock(ctx)
		}
	}

	start := time.Now()
	summary, err := r.aggregator.Run(ctx, model.AggregateParams{MinThreshold: r.minThreshold})
	elapsed := time.Since(start)

	r.emitPassMetrics(trigger, summary, elapsed, err)

	if err != nil {
		r.logger.Printf("Aggregation pass error: %v", err)
		// A cancelled pass is a shutdown, not an incident.
		if !errors.Is(err, context.Canceled) {
			r.notifyFailure(ctx, trigger, summary, err)
		}
		return
	}

	r.logger.Printf("Aggregation pass complete: %d processed, %d saved, %d skipped, %d failed in %v",
		summary.Processed, summary.Saved, summary.Skipped, summary.Failed, elapsed)
}

func (r *Runner) acquirePassLock(ctx context.Context) (bool, error) {
	holder := []byte(time.Now().UTC().Format(time.RFC3339))
	return r.lock.SetIfNotExists(ctx, passLockKey, holder, r.lockTTL)
}

func (r *Runner) releasePassLock(ctx context.Context) {
	// The pass may end on a cancelled context; the lock still has to go.
	if _, err := r.lock.Delete(context.WithoutCancel(ctx), passLockKey); err != nil {
		r.logger.Printf("Aggregation pass lock release error: %v", err)
	}
}

func (r *Runner) emitPassMetrics(trigger string, summary model.AggregateSummary, elapsed time.Duration, err error) {
	if r.metrics == nil {
		return
	}

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	} else if summary.Processed == 0 {
		result = metrics.ResultNoop
	}

	metrics.EmitAggregationPass(r.metrics, metrics.PassMetric{
		Trigger:   trigger,
		Result:    result,
		Duration:  elapsed,
		Processed: summary.Processed,
		Saved:     summary.Saved,
		Skipped:   summary.Skipped,
		Failed:    summary.Failed,
		Err:       err,
	})
}

func (r *Runner) notifyFailure(ctx context.Context, trigger string, summary model.AggregateSummary, passErr error) {
	if r.notifier == nil || !r.notifier.Enabled() {
		return
	}

	r.notifier.NotifyPassFailure(ctx, notify.PassFailurePayload{
		Component:  "aggregator",
		Trigger:    trigger,
		Error:      passErr.Error(),
		ErrorClass: obserrors.Classify(passErr),
		Processed:  summary.Processed,
		Saved:      summary.Saved,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
		OccurredAt: time.Now().UTC(),
	})
}

// Example usage:
//
//	func main() {
//		db, err := sql.Open("postgres", "postgres://...")
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer db.Close()
//
//		runner, err := aggregator.NewRunner(aggregator.RunnerOptions{
//			DB:           db,
//			Interval:     1 * time.Hour,
//			MinThreshold: 5,
//			RunOnStart:   true,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		ctx, cancel := context.WithCancel(context.Background())
//		defer cancel()
//
//		if err := runner.Run(ctx); err != nil {
//			log.Printf("Aggregation runner error: %v", err)
//		}
//	}
