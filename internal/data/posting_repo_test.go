package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hiremetrics/hirestats/internal/domain/model"
	"github.com/hiremetrics/hirestats/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedPostingCorpus loads a small corpus used by the combination and day-load
// tests: one job with UK/US postings plus a country-less posting, and a
// second job with a single UK posting. One UK posting has no recorded days.
func seedPostingCorpus(t *testing.T, db *sql.DB) {
	t.Helper()

	testutil.SeedStandardJob(t, db, "swe", "Software Engineer", "fam-eng")
	testutil.SeedStandardJob(t, db, "qa", "QA Engineer", "fam-eng")
	testutil.InsertPostings(t, db,
		testutil.NewPosting("p1", "swe").WithCountry("UK").WithDaysToHire(10).Build(),
		testutil.NewPosting("p2", "swe").WithCountry("UK").WithDaysToHire(20).Build(),
		testutil.NewPosting("p3", "swe").WithCountry("UK").Build(), // no recorded days
		testutil.NewPosting("p4", "swe").WithCountry("US").WithDaysToHire(30).Build(),
		testutil.NewPosting("p5", "swe").WithDaysToHire(40).Build(), // no country
		testutil.NewPosting("p6", "qa").WithCountry("UK").WithDaysToHire(15).Build(),
	)
}

func TestPostingRepo_DistinctCombinations(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		seedPostingCorpus(t, db)
		repo := NewPostingRepo(db)
		ctx := context.Background()

		combos, err := repo.DistinctCombinations(ctx, model.CombinationFilter{})
		require.NoError(t, err)

		// Country codes sort ascending with NULLs last per key.
		require.Len(t, combos, 4)
		assert.Equal(t, "qa", combos[0].StandardJobID)
		require.NotNil(t, combos[0].CountryCode)
		assert.Equal(t, "UK", *combos[0].CountryCode)

		assert.Equal(t, "swe", combos[1].StandardJobID)
		assert.Equal(t, "UK", *combos[1].CountryCode)
		assert.Equal(t, "US", *combos[2].CountryCode)
		assert.Nil(t, combos[3].CountryCode, "country-less postings yield a nil combination country")
	})
}

func TestPostingRepo_DistinctCombinations_Filters(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		seedPostingCorpus(t, db)
		repo := NewPostingRepo(db)
		ctx := context.Background()

		t.Run("by standard job", func(t *testing.T) {
			combos, err := repo.DistinctCombinations(ctx, model.CombinationFilter{StandardJobID: "qa"})
			require.NoError(t, err)
			require.Len(t, combos, 1)
			assert.Equal(t, "qa", combos[0].StandardJobID)
		})

		t.Run("by country", func(t *testing.T) {
			combos, err := repo.DistinctCombinations(ctx, model.CombinationFilter{CountryCode: "US"})
			require.NoError(t, err)
			require.Len(t, combos, 1)
			assert.Equal(t, "swe", combos[0].StandardJobID)
		})

		t.Run("by both", func(t *testing.T) {
			combos, err := repo.DistinctCombinations(ctx, model.CombinationFilter{
				StandardJobID: "swe",
				CountryCode:   "UK",
			})
			require.NoError(t, err)
			require.Len(t, combos, 1)
		})

		t.Run("no match", func(t *testing.T) {
			combos, err := repo.DistinctCombinations(ctx, model.CombinationFilter{CountryCode: "FR"})
			require.NoError(t, err)
			assert.Empty(t, combos)
		})
	})
}

func TestPostingRepo_DaysToHireTx(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		seedPostingCorpus(t, db)
		postings := NewPostingRepo(db)
		stats := NewStatsRepo(db)
		ctx := context.Background()

		load := func(key model.StatsKey) []int {
			t.Helper()
			var days []int
			err := stats.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
				var loadErr error
				days, loadErr = postings.DaysToHireTx(ctx, tx, key)
				return loadErr
			})
			require.NoError(t, err)
			return days
		}

		t.Run("country scope excludes other countries and null days", func(t *testing.T) {
			days := load(model.StatsKey{StandardJobID: "swe", Scope: model.CountryScopeFor("UK")})
			assert.ElementsMatch(t, []int{10, 20}, days)
		})

		t.Run("global scope spans all countries and country-less postings", func(t *testing.T) {
			days := load(model.StatsKey{StandardJobID: "swe", Scope: model.GlobalScope()})
			assert.ElementsMatch(t, []int{10, 20, 30, 40}, days)
		})

		t.Run("negative values are returned verbatim", func(t *testing.T) {
			testutil.InsertPostings(t, db,
				testutil.NewPosting("bad1", "qa").WithCountry("DE").WithDaysToHire(-3).Build(),
			)
			days := load(model.StatsKey{StandardJobID: "qa", Scope: model.CountryScopeFor("DE")})
			assert.Equal(t, []int{-3}, days)
		})

		t.Run("unknown combination yields no values", func(t *testing.T) {
			days := load(model.StatsKey{StandardJobID: "swe", Scope: model.CountryScopeFor("JP")})
			assert.Empty(t, days)
		})
	})
}
