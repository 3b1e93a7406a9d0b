// Package service provides business logic services for the hirestats system.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hiremetrics/hirestats/internal/core"
	"github.com/hiremetrics/hirestats/internal/domain/model"
	apperrors "github.com/hiremetrics/hirestats/internal/errors"
)

// DefaultMinThreshold is the posting count a combination needs before its
// statistics record is written, used when the caller does not choose one.
const DefaultMinThreshold = 5

// AggregatorService computes days-to-hire statistics from the posting table.
// One Run is a single-threaded pass over the derived work set; each
// combination aggregates and writes inside its own transaction, so a failure
// in one combination never rolls back another. Concurrent runs converge
// last-writer-wins through the per-key uniqueness constraint.
type AggregatorService struct {
	postings core.PostingRepository
	stats    core.StatsRepository
	logger   *slog.Logger
}

// AggregatorServiceOptions holds the dependencies for creating an AggregatorService.
type AggregatorServiceOptions struct {
	Postings core.PostingRepository
	Stats    core.StatsRepository
	Logger   *slog.Logger
}

// NewAggregatorService creates a new AggregatorService with the given dependencies.
func NewAggregatorService(opts AggregatorServiceOptions) *AggregatorService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &AggregatorService{
		postings: opts.Postings,
		stats:    opts.Stats,
		logger:   opts.Logger,
	}
}

// Run executes one aggregation pass and returns cumulative counters.
//
// Algorithm:
//  1. Derive the work set of (standard job, country scope) keys, honoring any
//     pinned job or country in the params
//  2. Per key, inside one transaction: load the usable day values, skip the
//     key when the count stays below the threshold, otherwise compute
//     min/avg/max/count and insert or update the record
//  3. Return the counters accumulated so far
//
// A data-integrity or conflict failure is confined to its combination and
// counted in Failed. Any other failure aborts the pass; combinations already
// committed stay committed and the returned summary covers only them.
func (s *AggregatorService) Run(ctx context.Context, params model.AggregateParams) (model.AggregateSummary, error) {
	var summary model.AggregateSummary

	if params.MinThreshold < 1 {
		return summary, apperrors.ValidationField("min_threshold", "min_threshold must be at least 1")
	}

	keys, err := s.buildWorkSet(ctx, params)
	if err != nil {
		return summary, err
	}

	for _, key := range keys {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		saved, err := s.processCombination(ctx, key, params.MinThreshold)
		if err != nil {
			if apperrors.IsDataIntegrity(err) || apperrors.IsConflict(err) {
				summary.Processed++
				summary.Failed++
				s.logger.WarnContext(ctx, "aggregation combination failed",
					"key", key.String(), "error", err)
				continue
			}
			return summary, fmt.Errorf("aggregate %s: %w", key, err)
		}

		summary.Processed++
		if saved {
			summary.Saved++
		} else {
			summary.Skipped++
		}
	}

	return summary, nil
}

// buildWorkSet derives the ordered keys one pass processes. With both sides
// pinned the set is a singleton and the posting table is never enumerated.
func (s *AggregatorService) buildWorkSet(ctx context.Context, params model.AggregateParams) ([]model.StatsKey, error) {
	jobID := strings.TrimSpace(params.StandardJobID)
	country := strings.TrimSpace(params.CountryCode)
	scope := model.ParseCountryScope(country)

	if jobID != "" && country != "" {
		return []model.StatsKey{{StandardJobID: jobID, Scope: scope}}, nil
	}

	filter := model.CombinationFilter{StandardJobID: jobID}
	if code, ok := scope.Country(); ok {
		filter.CountryCode = code
	}
	combos, err := s.postings.DistinctCombinations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posting combinations: %w", err)
	}

	opts := model.WorkSetOptions{IncludeGlobal: true}
	if country != "" {
		if scope.IsGlobal() {
			// Pinned to the storage sentinel: recompute global records only.
			opts = model.WorkSetOptions{GlobalOnly: true}
		} else {
			// A pinned country never adds the implicit global key.
			opts = model.WorkSetOptions{}
		}
	}
	return model.DeriveWorkSet(combos, opts), nil
}

// processCombination aggregates one key inside a single transaction.
// Returns saved=false when the combination stayed below the threshold and no
// record was written.
func (s *AggregatorService) processCombination(
	ctx context.Context,
	key model.StatsKey,
	minThreshold int,
) (bool, error) {
	saved := false
	err := s.stats.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		days, err := s.postings.DaysToHireTx(ctx, tx, key)
		if err != nil {
			return fmt.Errorf("load day values: %w", err)
		}
		if len(days) < minThreshold {
			return nil
		}

		values, err := model.ComputeDaysToHire(days)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.ErrCodeDataIntegrity,
				"compute statistics for %s", key)
		}

		if err := s.writeValues(ctx, tx, key, values); err != nil {
			return err
		}
		saved = true
		return nil
	})
	return saved, err
}

// writeValues performs the conditional write: an existing record has its
// numeric fields overwritten in place, a missing one is inserted. The insert
// path relies on the per-key uniqueness constraint to surface concurrent
// duplicates as conflicts instead of second rows.
func (s *AggregatorService) writeValues(
	ctx context.Context,
	tx *sql.Tx,
	key model.StatsKey,
	values model.StatsValues,
) error {
	existing, err := s.stats.GetByKeyTx(ctx, tx, key)
	switch {
	case err == nil:
		if err := s.stats.UpdateValuesTx(ctx, tx, core.UpdateStatsParams{
			ID:     existing.ID,
			Values: values,
		}); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
	case apperrors.IsNotFound(err):
		rec := &model.DaysToHireStats{
			StandardJobID:     key.StandardJobID,
			Scope:             key.Scope,
			MinDays:           values.MinDays,
			AvgDays:           values.AvgDays,
			MaxDays:           values.MaxDays,
			JobPostingsNumber: values.JobPostingsNumber,
		}
		if err := s.stats.InsertTx(ctx, tx, rec); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	default:
		return fmt.Errorf("look up record: %w", err)
	}
	return nil
}
