package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hiremetrics/hirestats/internal/data/pgxutil"
	"github.com/hiremetrics/hirestats/internal/domain/model"
	apperrors "github.com/hiremetrics/hirestats/internal/errors"
	"github.com/jackc/pgx/v5"
)

// PostingRepo provides read access to the job posting corpus. Postings are
// ingested upstream; this repository never writes to them.
type PostingRepo struct {
	DB *sql.DB
}

// NewPostingRepo creates a new PostingRepo instance with the given database connection.
func NewPostingRepo(db *sql.DB) *PostingRepo {
	return &PostingRepo{DB: db}
}

// DistinctCombinations lists every distinct (standard_job_id, country_code)
// pair present in the posting corpus, narrowed by the filter. Postings
// without a country code yield a combination with a nil CountryCode.
func (r *PostingRepo) DistinctCombinations(
	ctx context.Context,
	filter model.CombinationFilter,
) ([]model.PostingCombination, error) {
	query := postingCombinationsQuery
	args := make([]any, 0, 2)
	conds := make([]string, 0, 2)
	if filter.StandardJobID != "" {
		args = append(args, filter.StandardJobID)
		conds = append(conds, fmt.Sprintf("standard_job_id = $%d", len(args)))
	}
	if filter.CountryCode != "" {
		args = append(args, filter.CountryCode)
		conds = append(conds, fmt.Sprintf("country_code = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY standard_job_id, country_code"

	var combos []model.PostingCombination
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		combos, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.PostingCombination])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posting combinations: %w", apperrors.MapDBError(err))
	}
	return combos, nil
}

// DaysToHireTx loads the usable days_to_hire values for one key inside the
// caller's transaction. The global scope spans every country (and postings
// without one); rows with no recorded days_to_hire are excluded.
func (r *PostingRepo) DaysToHireTx(ctx context.Context, tx *sql.Tx, key model.StatsKey) ([]int, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	query := daysToHireByJobQuery
	args := []any{key.StandardJobID}
	if code, ok := key.Scope.Country(); ok {
		query = daysToHireByJobCountryQuery
		args = append(args, code)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load days to hire for %s: %w", key, apperrors.MapDBError(err))
	}
	defer rows.Close()

	var days []int
	for rows.Next() {
		var d int
		if scanErr := rows.Scan(&d); scanErr != nil {
			return nil, fmt.Errorf("failed to scan days to hire: %w", scanErr)
		}
		days = append(days, d)
	}
	if iterErr := rows.Err(); iterErr != nil {
		return nil, fmt.Errorf("failed to read days to hire rows: %w", apperrors.MapDBError(iterErr))
	}
	return days, nil
}

// SQL query constants for static queries (dynamic WHERE clauses are appended
// at call sites with positional args).
const (
	postingCombinationsQuery = `
		SELECT DISTINCT standard_job_id, country_code
		FROM job_posting`

	daysToHireByJobQuery = `
		SELECT days_to_hire
		FROM job_posting
		WHERE standard_job_id = $1
		  AND days_to_hire IS NOT NULL`

	daysToHireByJobCountryQuery = `
		SELECT days_to_hire
		FROM job_posting
		WHERE standard_job_id = $1
		  AND country_code = $2
		  AND days_to_hire IS NOT NULL`
)
