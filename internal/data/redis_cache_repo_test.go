package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiremetrics/hirestats/internal/testutil"
)

func TestRedisCacheRepo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	defer client.Close()

	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	t.Run("set then get round-trips with TTL", func(t *testing.T) {
		key := "stats:J1:UK"
		value := []byte(`{"avg_days":30.5}`)

		require.NoError(t, repo.Set(ctx, key, value, 5*time.Minute))

		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		ttl := client.TTL(ctx, key).Val()
		assert.Positive(t, ttl)
		assert.LessOrEqual(t, ttl, 5*time.Minute)
	})

	t.Run("get misses return nil without error", func(t *testing.T) {
		got, err := repo.Get(ctx, "stats:absent:XX")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete reports presence", func(t *testing.T) {
		key := "stats:J1:US"
		require.NoError(t, repo.Set(ctx, key, []byte("x"), time.Minute))

		deleted, err := repo.Delete(ctx, key)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, key)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("SetIfNotExists wins only once", func(t *testing.T) {
		key := "aggregator:pass-lock"

		won, err := repo.SetIfNotExists(ctx, key, []byte("holder-a"), time.Minute)
		require.NoError(t, err)
		assert.True(t, won)

		won, err = repo.SetIfNotExists(ctx, key, []byte("holder-b"), time.Minute)
		require.NoError(t, err)
		assert.False(t, won, "second contender must not take the lock")

		// The first holder's value survives.
		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("holder-a"), got)

		ttl := client.TTL(ctx, key).Val()
		assert.Positive(t, ttl, "lock must carry an expiry")
	})

	t.Run("health pings", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})
}

func TestRedisCacheRepoRejectsEmptyKeys(t *testing.T) {
	// Validation happens before any Redis round-trip, so no server is needed.
	repo := NewRedisCacheRepo(nil)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Set(ctx, "", []byte("v"), time.Minute), errEmptyCacheKey)

	_, err := repo.Get(ctx, "")
	assert.ErrorIs(t, err, errEmptyCacheKey)

	_, err = repo.Delete(ctx, "")
	assert.ErrorIs(t, err, errEmptyCacheKey)

	_, err = repo.SetIfNotExists(ctx, "", []byte("v"), time.Minute)
	assert.ErrorIs(t, err, errEmptyCacheKey)
}
