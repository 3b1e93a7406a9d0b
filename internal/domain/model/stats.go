//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNegativeDaysToHire reports a posting whose days_to_hire value is below
// zero. Negative durations are corrupt input and must never be folded into an
// aggregate.
var ErrNegativeDaysToHire = errors.New("negative days_to_hire value")

// StatsKey is the natural identity of one statistics record.
type StatsKey struct {
	StandardJobID string
	Scope         CountryScope
}

// Validate checks that the key can identify a record.
func (k StatsKey) Validate() error {
	if strings.TrimSpace(k.StandardJobID) == "" {
		return errors.New("standard_job_id is required")
	}
	return nil
}

// String renders the key for logs and error messages.
func (k StatsKey) String() string {
	return k.StandardJobID + "/" + k.Scope.String()
}

// StatsValues holds the four computed aggregate fields for one combination.
type StatsValues struct {
	MinDays           float64
	AvgDays           float64
	MaxDays           float64
	JobPostingsNumber int
}

// DaysToHireStats is the persisted aggregate for one (standard job, country
// scope) key. At most one record exists per key; reprocessing overwrites the
// numeric fields wholesale.
type DaysToHireStats struct {
	ID                string
	StandardJobID     string
	Scope             CountryScope
	MinDays           float64
	AvgDays           float64
	MaxDays           float64
	JobPostingsNumber int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Key returns the record's natural identity.
func (s *DaysToHireStats) Key() StatsKey {
	return StatsKey{StandardJobID: s.StandardJobID, Scope: s.Scope}
}

// Values returns the record's computed aggregate fields.
func (s *DaysToHireStats) Values() StatsValues {
	return StatsValues{
		MinDays:           s.MinDays,
		AvgDays:           s.AvgDays,
		MaxDays:           s.MaxDays,
		JobPostingsNumber: s.JobPostingsNumber,
	}
}

// ComputeDaysToHire derives the aggregate values over the day counts of one
// combination. Zero days is a legitimate same-day hire; a negative value
// returns ErrNegativeDaysToHire. The mean is a plain float64 average with no
// rounding; rounding is a presentation concern.
//
// An empty input yields a zero-count result, which the threshold gate filters
// out before anything is persisted.
func ComputeDaysToHire(days []int) (StatsValues, error) {
	if len(days) == 0 {
		return StatsValues{}, nil
	}

	minDays := days[0]
	maxDays := days[0]
	sum := 0
	for _, d := range days {
		if d < 0 {
			return StatsValues{}, fmt.Errorf("%w: %d", ErrNegativeDaysToHire, d)
		}
		if d < minDays {
			minDays = d
		}
		if d > maxDays {
			maxDays = d
		}
		sum += d
	}

	return StatsValues{
		MinDays:           float64(minDays),
		AvgDays:           float64(sum) / float64(len(days)),
		MaxDays:           float64(maxDays),
		JobPostingsNumber: len(days),
	}, nil
}
