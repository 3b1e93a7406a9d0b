// Package core provides the service-facing ports and shared caching logic for hirestats.
package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hiremetrics/hirestats/internal/domain/model"
)

// CacheRepository is the port the core layer uses for caching; the data
// layer supplies the Redis-backed implementation.
type CacheRepository interface {
	// Set writes a value under key. A zero ttl stores it without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get reads a key, returning nil for a missing or expired entry.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// SetIfNotExists writes the key atomically unless it is already present,
	// reporting whether this call won. The aggregation pass lock relies on
	// this being a single round trip.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Health verifies the cache connection.
	Health(ctx context.Context) error
}

// StatsCacheService caches serialized statistics records in front of the
// statistics store. Lookups are the hot path of the query API; aggregation
// passes do not go through the cache, so entries are bounded by TTL rather
// than invalidated on write.
type StatsCacheService struct {
	cache CacheRepository
	ttl   time.Duration
}

// StatsCacheConfig holds configuration for statistics caching.
type StatsCacheConfig struct {
	TTL time.Duration `json:"ttl"`
}

// DefaultStatsCacheConfig returns a StatsCacheConfig with sensible defaults.
func DefaultStatsCacheConfig() StatsCacheConfig {
	return StatsCacheConfig{
		TTL: 5 * time.Minute,
	}
}

// StatsCacheServiceOptions bundles dependencies for NewStatsCacheService.
type StatsCacheServiceOptions struct {
	Cache  CacheRepository
	Config StatsCacheConfig
}

// NewStatsCacheService creates a new StatsCacheService.
func NewStatsCacheService(opts StatsCacheServiceOptions) *StatsCacheService {
	ttl := opts.Config.TTL
	if ttl <= 0 {
		ttl = DefaultStatsCacheConfig().TTL
	}
	return &StatsCacheService{
		cache: opts.Cache,
		ttl:   ttl,
	}
}

// cachedStats is the cache wire form of a statistics record. The country
// scope travels as its storage code.
type cachedStats struct {
	ID                string    `json:"id"`
	StandardJobID     string    `json:"standard_job_id"`
	CountryCode       string    `json:"country_code"`
	MinDays           float64   `json:"min_days"`
	AvgDays           float64   `json:"avg_days"`
	MaxDays           float64   `json:"max_days"`
	JobPostingsNumber int       `json:"job_postings_number"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// GetCachedStats retrieves a cached record by key. Returns (nil, nil) on a miss
// or when the cached payload cannot be decoded.
func (s *StatsCacheService) GetCachedStats(ctx context.Context, key model.StatsKey) (*model.DaysToHireStats, error) {
	raw, err := s.cache.Get(ctx, s.statsKey(key))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var cached cachedStats
	if err := json.Unmarshal(raw, &cached); err != nil {
		// A corrupt entry behaves like a miss; the next store overwrites it.
		return nil, nil
	}

	return &model.DaysToHireStats{
		ID:                cached.ID,
		StandardJobID:     cached.StandardJobID,
		Scope:             model.ScopeFromStorage(cached.CountryCode),
		MinDays:           cached.MinDays,
		AvgDays:           cached.AvgDays,
		MaxDays:           cached.MaxDays,
		JobPostingsNumber: cached.JobPostingsNumber,
		CreatedAt:         cached.CreatedAt,
		UpdatedAt:         cached.UpdatedAt,
	}, nil
}

// CacheStats stores a record under its key.
func (s *StatsCacheService) CacheStats(ctx context.Context, rec *model.DaysToHireStats) error {
	if rec == nil {
		return nil
	}

	payload, err := json.Marshal(cachedStats{
		ID:                rec.ID,
		StandardJobID:     rec.StandardJobID,
		CountryCode:       rec.Scope.StorageCode(),
		MinDays:           rec.MinDays,
		AvgDays:           rec.AvgDays,
		MaxDays:           rec.MaxDays,
		JobPostingsNumber: rec.JobPostingsNumber,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	})
	if err != nil {
		return err
	}

	return s.cache.Set(ctx, s.statsKey(rec.Key()), payload, s.ttl)
}

// InvalidateStats removes the cached record for a key.
func (s *StatsCacheService) InvalidateStats(ctx context.Context, key model.StatsKey) error {
	_, err := s.cache.Delete(ctx, s.statsKey(key))
	return err
}

// statsKey generates the cache key for one statistics record.
func (s *StatsCacheService) statsKey(key model.StatsKey) string {
	return "stats:days-to-hire:" + key.StandardJobID + ":" + key.Scope.StorageCode()
}
