package core

import (
	"context"
	"database/sql"

	"github.com/hiremetrics/hirestats/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// PostingRepository defines the read-only interface over the job posting source.
// Postings are external input; nothing in this system writes to them outside of
// development seeding.
type PostingRepository interface {
	// DistinctCombinations lists every (standard_job_id, country_code) pair
	// present in the posting table, narrowed by the filter. Combinations whose
	// postings carry no country code are returned with a nil CountryCode.
	DistinctCombinations(ctx context.Context, filter model.CombinationFilter) ([]model.PostingCombination, error)

	// DaysToHireTx loads the usable days_to_hire values for one key inside the
	// caller's transaction. The global scope spans all countries for the job;
	// rows without a days_to_hire value are excluded.
	DaysToHireTx(ctx context.Context, tx *sql.Tx, key model.StatsKey) ([]int, error)
}

// UpdateStatsParams groups parameters for StatsRepository.UpdateValuesTx to keep param count ≤3.
type UpdateStatsParams struct {
	ID     string
	Values model.StatsValues
}

// StatsRepository defines the interface for the statistics persistence sink.
// The conditional write path (get, then branch to insert or update) is kept
// explicit so that the per-key uniqueness invariant and the transactional
// boundary stay visible in the service layer.
type StatsRepository interface {
	// WithTx runs fn inside a single database transaction. One aggregation
	// combination performs all of its reads and its single write within one
	// WithTx call; a failure rolls back only that combination.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error

	// GetByKey returns the record for a key, or a not_found error.
	GetByKey(ctx context.Context, key model.StatsKey) (*model.DaysToHireStats, error)

	// GetByKeyTx is GetByKey inside the caller's transaction.
	GetByKeyTx(ctx context.Context, tx *sql.Tx, key model.StatsKey) (*model.DaysToHireStats, error)

	// InsertTx creates a new record. A concurrent insert for the same key
	// surfaces as a conflict error, never as a second row.
	InsertTx(ctx context.Context, tx *sql.Tx, rec *model.DaysToHireStats) error

	// UpdateValuesTx overwrites the four numeric fields of an existing record.
	UpdateValuesTx(ctx context.Context, tx *sql.Tx, params UpdateStatsParams) error
}
