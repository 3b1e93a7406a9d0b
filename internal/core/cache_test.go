package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hiremetrics/hirestats/internal/domain/model"
)

//go:generate mockgen -source=cache.go -destination=cache_mock.go -package=core

func TestStatsCacheService_GetCachedStats(t *testing.T) {
	t.Parallel()

	key := model.StatsKey{StandardJobID: "job-1", Scope: model.CountryScopeFor("UK")}

	t.Run("miss returns nil without error", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		cache := NewMockCacheRepository(ctrl)
		cache.EXPECT().Get(gomock.Any(), "stats:days-to-hire:job-1:UK").Return(nil, nil)

		svc := NewStatsCacheService(StatsCacheServiceOptions{Cache: cache})
		rec, err := svc.GetCachedStats(context.Background(), key)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("hit decodes the stored record", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		cache := NewMockCacheRepository(ctrl)
		cache.EXPECT().
			Get(gomock.Any(), "stats:days-to-hire:job-1:UK").
			Return([]byte(`{"id":"rec-1","standard_job_id":"job-1","country_code":"UK","min_days":10,"avg_days":30,"max_days":50,"job_postings_number":5}`), nil)

		svc := NewStatsCacheService(StatsCacheServiceOptions{Cache: cache})
		rec, err := svc.GetCachedStats(context.Background(), key)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "rec-1", rec.ID)
		assert.Equal(t, key, rec.Key())
		assert.InDelta(t, 30.0, rec.AvgDays, 0)
	})

	t.Run("corrupt payload behaves like a miss", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		cache := NewMockCacheRepository(ctrl)
		cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]byte("{not json"), nil)

		svc := NewStatsCacheService(StatsCacheServiceOptions{Cache: cache})
		rec, err := svc.GetCachedStats(context.Background(), key)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("cache error propagates", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		cache := NewMockCacheRepository(ctrl)
		cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))

		svc := NewStatsCacheService(StatsCacheServiceOptions{Cache: cache})
		_, err := svc.GetCachedStats(context.Background(), key)
		require.Error(t, err)
	})
}

func TestStatsCacheService_CacheStats(t *testing.T) {
	t.Parallel()

	t.Run("stores under the storage-coded key with configured TTL", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		cache := NewMockCacheRepository(ctrl)
		cache.EXPECT().
			Set(gomock.Any(), "stats:days-to-hire:job-1:World", gomock.Any(), 10*time.Minute).
			Return(nil)

		svc := NewStatsCacheService(StatsCacheServiceOptions{
			Cache:  cache,
			Config: StatsCacheConfig{TTL: 10 * time.Minute},
		})
		err := svc.CacheStats(context.Background(), &model.DaysToHireStats{
			ID:                "rec-1",
			StandardJobID:     "job-1",
			Scope:             model.GlobalScope(),
			MinDays:           10,
			AvgDays:           30,
			MaxDays:           50,
			JobPostingsNumber: 5,
		})
		require.NoError(t, err)
	})

	t.Run("nil record is a no-op", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		cache := NewMockCacheRepository(ctrl)

		svc := NewStatsCacheService(StatsCacheServiceOptions{Cache: cache})
		require.NoError(t, svc.CacheStats(context.Background(), nil))
	})
}

func TestStatsCacheService_RoundTrip(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := NewMockCacheRepository(ctrl)

	var stored []byte
	cache.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value []byte, _ time.Duration) error {
			stored = value
			return nil
		})
	cache.EXPECT().
		Get(gomock.Any(), "stats:days-to-hire:job-1:PL").
		DoAndReturn(func(context.Context, string) ([]byte, error) {
			return stored, nil
		})

	svc := NewStatsCacheService(StatsCacheServiceOptions{Cache: cache})
	in := &model.DaysToHireStats{
		ID:                "rec-9",
		StandardJobID:     "job-1",
		Scope:             model.CountryScopeFor("PL"),
		MinDays:           1,
		AvgDays:           2.5,
		MaxDays:           4,
		JobPostingsNumber: 8,
	}
	require.NoError(t, svc.CacheStats(context.Background(), in))

	out, err := svc.GetCachedStats(context.Background(), in.Key())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Key(), out.Key())
	assert.InDelta(t, in.AvgDays, out.AvgDays, 0)
}

func TestStatsCacheService_InvalidateStats(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := NewMockCacheRepository(ctrl)
	cache.EXPECT().Delete(gomock.Any(), "stats:days-to-hire:job-1:UK").Return(true, nil)

	svc := NewStatsCacheService(StatsCacheServiceOptions{Cache: cache})
	err := svc.InvalidateStats(context.Background(), model.StatsKey{
		StandardJobID: "job-1",
		Scope:         model.CountryScopeFor("UK"),
	})
	require.NoError(t, err)
}
