package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hiremetrics/hirestats/internal/core"
	"github.com/hiremetrics/hirestats/internal/data/pgxutil"
	"github.com/hiremetrics/hirestats/internal/domain/model"
	apperrors "github.com/hiremetrics/hirestats/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StatsRepo provides database operations for days-to-hire statistics records.
// The (standard_job_id, country_code) pair is unique; the global scope is
// stored under the "World" sentinel and converted back at the row boundary.
type StatsRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewStatsRepo creates a new StatsRepo instance with the given database connection.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewStatsRepoWithTimeProvider creates a StatsRepo with a custom TimeProvider (useful for testing).
func NewStatsRepoWithTimeProvider(db *sql.DB, timeProvider TimeProvider) *StatsRepo {
	return &StatsRepo{
		DB:           db,
		timeProvider: timeProvider,
	}
}

// statsRow mirrors the job_posting_stats table. The country_code column holds
// the storage sentinel for global records; toModel converts it back to the
// domain scope.
type statsRow struct {
	ID                string    `db:"id"`
	StandardJobID     string    `db:"standard_job_id"`
	CountryCode       string    `db:"country_code"`
	MinDays           float64   `db:"min_days"`
	AvgDays           float64   `db:"avg_days"`
	MaxDays           float64   `db:"max_days"`
	JobPostingsNumber int       `db:"job_postings_number"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (row statsRow) toModel() *model.DaysToHireStats {
	return &model.DaysToHireStats{
		ID:                row.ID,
		StandardJobID:     row.StandardJobID,
		Scope:             model.ScopeFromStorage(row.CountryCode),
		MinDays:           row.MinDays,
		AvgDays:           row.AvgDays,
		MaxDays:           row.MaxDays,
		JobPostingsNumber: row.JobPostingsNumber,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

// WithTx runs fn inside a single database transaction. The aggregator scopes
// one combination's reads and its write to one WithTx call so a failure rolls
// back only that combination.
func (r *StatsRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	return pgxutil.WithSQLTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		return fn(ctx, tx)
	})
}

// GetByKey retrieves the statistics record for a key, or a not_found error.
func (r *StatsRepo) GetByKey(ctx context.Context, key model.StatsKey) (*model.DaysToHireStats, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var row statsRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, statsGetByKeyQuery, key.StandardJobID, key.Scope.StorageCode())
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[statsRow])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for %s: %w", key, apperrors.MapDBError(err))
	}
	return row.toModel(), nil
}

// GetByKeyTx is GetByKey inside the caller's transaction.
func (r *StatsRepo) GetByKeyTx(ctx context.Context, tx *sql.Tx, key model.StatsKey) (*model.DaysToHireStats, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var row statsRow
	err := tx.QueryRowContext(ctx, statsGetByKeyQuery, key.StandardJobID, key.Scope.StorageCode()).Scan(
		&row.ID,
		&row.StandardJobID,
		&row.CountryCode,
		&row.MinDays,
		&row.AvgDays,
		&row.MaxDays,
		&row.JobPostingsNumber,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for %s: %w", key, apperrors.MapDBError(err))
	}
	return row.toModel(), nil
}

// InsertTx creates a new statistics record inside the caller's transaction.
// The record's ID and timestamps are assigned here; a concurrent insert for
// the same key surfaces as a conflict error from the unique constraint.
func (r *StatsRepo) InsertTx(ctx context.Context, tx *sql.Tx, rec *model.DaysToHireStats) error {
	if rec == nil {
		return apperrors.Validation("statistics record is required")
	}
	if err := rec.Key().Validate(); err != nil {
		return err
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := r.timeProvider.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := tx.ExecContext(ctx, statsInsertQuery,
		rec.ID,
		rec.StandardJobID,
		rec.Scope.StorageCode(),
		rec.MinDays,
		rec.AvgDays,
		rec.MaxDays,
		rec.JobPostingsNumber,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stats for %s: %w", rec.Key(), apperrors.MapDBError(err))
	}
	return nil
}

// UpdateValuesTx overwrites the four numeric fields of an existing record and
// bumps updated_at. The key columns never change on update.
func (r *StatsRepo) UpdateValuesTx(ctx context.Context, tx *sql.Tx, params core.UpdateStatsParams) error {
	if params.ID == "" {
		return apperrors.ValidationField("id", "statistics record id is required")
	}

	res, err := tx.ExecContext(ctx, statsUpdateValuesQuery,
		params.Values.MinDays,
		params.Values.AvgDays,
		params.Values.MaxDays,
		params.Values.JobPostingsNumber,
		r.timeProvider.Now().UTC(),
		params.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update stats %s: %w", params.ID, apperrors.MapDBError(err))
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return apperrors.NotFound("Statistics record not found")
	}
	return nil
}

// SQL query constants for static queries.
const (
	statsGetByKeyQuery = `
		SELECT id, standard_job_id, country_code,
		       min_days, avg_days, max_days, job_postings_number,
		       created_at, updated_at
		FROM job_posting_stats
		WHERE standard_job_id = $1 AND country_code = $2`

	statsInsertQuery = `
		INSERT INTO job_posting_stats (
			id, standard_job_id, country_code,
			min_days, avg_days, max_days, job_postings_number,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	statsUpdateValuesQuery = `
		UPDATE job_posting_stats
		SET min_days = $1,
		    avg_days = $2,
		    max_days = $3,
		    job_postings_number = $4,
		    updated_at = $5
		WHERE id = $6`
)
