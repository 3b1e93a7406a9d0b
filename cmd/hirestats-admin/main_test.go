package main

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hiremetrics/hirestats/internal/domain/model"
	"github.com/hiremetrics/hirestats/internal/service"
)

func TestPrintAggregateSummaryIncludesCounters(t *testing.T) {
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer func() {
		os.Stdout = oldStdout
	}()

	os.Stdout = w

	summary := model.AggregateSummary{Processed: 6, Saved: 3, Skipped: 2, Failed: 1}
	err = printAggregateSummary(summary, 1500*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	os.Stdout = oldStdout

	output, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	outStr := string(output)
	require.Contains(t, outStr, "Aggregation Pass Summary")
	require.Contains(t, outStr, "Combinations Processed")
	require.Contains(t, outStr, "6")
	require.Contains(t, outStr, "Stats Saved")
	require.Contains(t, outStr, "Stats Skipped")
	require.Contains(t, outStr, "Failures")
	require.Contains(t, outStr, "1.5s")
}

func TestPrintStatsRecordRendersAllFields(t *testing.T) {
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer func() {
		os.Stdout = oldStdout
	}()

	os.Stdout = w

	rec := &model.DaysToHireStats{
		ID:                "rec-1",
		StandardJobID:     "job-1",
		Scope:             model.CountryScopeFor("DE"),
		MinDays:           4,
		AvgDays:           12.5,
		MaxDays:           30,
		JobPostingsNumber: 8,
		UpdatedAt:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	err = printStatsRecord(rec)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	os.Stdout = oldStdout

	output, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	outStr := string(output)
	require.Contains(t, outStr, "Days-to-Hire Statistics")
	require.Contains(t, outStr, "job-1")
	require.Contains(t, outStr, "DE")
	require.Contains(t, outStr, "12.5")
	require.Contains(t, outStr, "2025-06-01T12:00:00Z")
}

func TestPrintStatsRecordNilRecord(t *testing.T) {
	require.Error(t, printStatsRecord(nil))
}

func TestParseAggregateFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := parseAggregateFlags(nil)
		require.NoError(t, err)
		require.Equal(t, service.DefaultMinThreshold, opts.MinThreshold)
		require.Empty(t, opts.StandardJobID)
		require.Empty(t, opts.CountryCode)
		require.Equal(t, defaultAggregateTimeout, opts.Timeout)
	})

	t.Run("explicit values", func(t *testing.T) {
		opts, err := parseAggregateFlags([]string{
			"--min-threshold", "3",
			"--standard-job-id", " job-9 ",
			"--country-code", "GB",
			"--timeout", "30s",
		})
		require.NoError(t, err)
		require.Equal(t, 3, opts.MinThreshold)
		require.Equal(t, "job-9", opts.StandardJobID)
		require.Equal(t, "GB", opts.CountryCode)
		require.Equal(t, 30*time.Second, opts.Timeout)
	})

	t.Run("threshold below one", func(t *testing.T) {
		_, err := parseAggregateFlags([]string{"--min-threshold", "0"})
		require.Error(t, err)
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		_, err := parseAggregateFlags([]string{"--timeout", "0s"})
		require.Error(t, err)
	})
}

func TestParseStatsGetFlags(t *testing.T) {
	t.Run("requires standard job id", func(t *testing.T) {
		_, err := parseStatsGetFlags(nil)
		require.Error(t, err)
	})

	t.Run("trims and accepts", func(t *testing.T) {
		opts, err := parseStatsGetFlags([]string{
			"--standard-job-id", " job-2 ",
			"--country-code", "FR",
		})
		require.NoError(t, err)
		require.Equal(t, "job-2", opts.StandardJobID)
		require.Equal(t, "FR", opts.CountryCode)
		require.Equal(t, defaultLookupTimeout, opts.Timeout)
	})
}

func TestParseMigrateFlags(t *testing.T) {
	t.Run("default timeout", func(t *testing.T) {
		opts, err := parseMigrateFlags(nil)
		require.NoError(t, err)
		require.Equal(t, defaultMigrationTimeout, opts.Timeout)
	})

	t.Run("rejects non-positive timeout", func(t *testing.T) {
		_, err := parseMigrateFlags([]string{"--timeout", "-1s"})
		require.Error(t, err)
	})
}

func TestIsLikelyRemoteHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", false},
		{"127.0.0.1", false},
		{"::1", false},
		{"db.local", false},
		{"", false},
		{"10.1.2.3", true},
		{"db.internal.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			require.Equal(t, tt.want, isLikelyRemoteHost(tt.host))
		})
	}
}

func TestCommandsIncludeDocumentedSet(t *testing.T) {
	cmds := commands()
	for _, name := range []string{"aggregate", "stats-get", "migrate", "db-seed", "db-reset", "help"} {
		_, ok := cmds[name]
		require.True(t, ok, "command %q missing", name)
	}
}
