//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDaysToHire(t *testing.T) {
	tests := []struct {
		name string
		days []int
		want StatsValues
	}{
		{
			name: "spread of values",
			days: []int{10, 20, 30, 40, 50},
			want: StatsValues{MinDays: 10, AvgDays: 30, MaxDays: 50, JobPostingsNumber: 5},
		},
		{
			name: "single value",
			days: []int{7},
			want: StatsValues{MinDays: 7, AvgDays: 7, MaxDays: 7, JobPostingsNumber: 1},
		},
		{
			name: "same-day hires are valid",
			days: []int{0, 0, 4},
			want: StatsValues{MinDays: 0, AvgDays: 4.0 / 3.0, MaxDays: 4, JobPostingsNumber: 3},
		},
		{
			name: "unordered input",
			days: []int{33, 1, 12},
			want: StatsValues{MinDays: 1, AvgDays: 46.0 / 3.0, MaxDays: 33, JobPostingsNumber: 3},
		},
		{
			name: "empty input yields zero count",
			days: nil,
			want: StatsValues{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeDaysToHire(tt.days)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeDaysToHire_MeanIsNotRounded(t *testing.T) {
	got, err := ComputeDaysToHire([]int{1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got.AvgDays, 0)
}

func TestComputeDaysToHire_OrderingInvariant(t *testing.T) {
	got, err := ComputeDaysToHire([]int{14, 3, 90, 27, 3, 61})
	require.NoError(t, err)
	assert.LessOrEqual(t, got.MinDays, got.AvgDays)
	assert.LessOrEqual(t, got.AvgDays, got.MaxDays)
	assert.Equal(t, 6, got.JobPostingsNumber)
}

func TestComputeDaysToHire_NegativeValue(t *testing.T) {
	_, err := ComputeDaysToHire([]int{10, -1, 20})
	require.ErrorIs(t, err, ErrNegativeDaysToHire)
}

func TestStatsKey_Validate(t *testing.T) {
	assert.NoError(t, StatsKey{StandardJobID: "job-1"}.Validate())
	assert.Error(t, StatsKey{}.Validate())
	assert.Error(t, StatsKey{StandardJobID: "   "}.Validate())
}

func TestDaysToHireStats_Key(t *testing.T) {
	rec := &DaysToHireStats{StandardJobID: "job-1", Scope: CountryScopeFor("UK")}
	assert.Equal(t, StatsKey{StandardJobID: "job-1", Scope: CountryScopeFor("UK")}, rec.Key())
	assert.Equal(t, "job-1/UK", rec.Key().String())
}
