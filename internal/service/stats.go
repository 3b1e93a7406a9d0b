package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hiremetrics/hirestats/internal/core"
	"github.com/hiremetrics/hirestats/internal/domain/model"
	apperrors "github.com/hiremetrics/hirestats/internal/errors"
)

// DebugLogger is a minimal logger interface for optional debug logging.
type DebugLogger interface {
	Debug(msg string, keyvals ...any)
}

// statsCache defines the minimal behavior required from a cache service.
type statsCache interface {
	GetCachedStats(ctx context.Context, key model.StatsKey) (*model.DaysToHireStats, error)
	CacheStats(ctx context.Context, rec *model.DaysToHireStats) error
}

// StatsServiceOptions groups dependencies for StatsService.
type StatsServiceOptions struct {
	Stats  core.StatsRepository
	Cache  statsCache  // optional
	Logger DebugLogger // optional
}

// StatsService serves read-only statistics lookups. Lookups are
// side-effect-free on the store and safe for unbounded concurrent use.
type StatsService struct {
	stats core.StatsRepository
	cache statsCache
	log   DebugLogger
}

// NewStatsService constructs a new StatsService.
func NewStatsService(opts StatsServiceOptions) *StatsService {
	return &StatsService{
		stats: opts.Stats,
		cache: opts.Cache,
		log:   opts.Logger,
	}
}

// Lookup returns the statistics record for one (job, scope) key. The global
// scope resolves to the global record; a specific country resolves only to
// its own record, never falling back to the global one. A missing record is
// a not_found, which callers treat as a normal negative result.
func (s *StatsService) Lookup(
	ctx context.Context,
	standardJobID string,
	scope model.CountryScope,
) (*model.DaysToHireStats, error) {
	key := model.StatsKey{StandardJobID: strings.TrimSpace(standardJobID), Scope: scope}
	if err := key.Validate(); err != nil {
		return nil, apperrors.ValidationField("standard_job_id", "standard_job_id is required")
	}

	if cached := s.getCached(ctx, key); cached != nil {
		return cached, nil
	}

	rec, err := s.stats.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lookup statistics: %w", err)
	}

	s.setCached(ctx, rec)
	return rec, nil
}

// getCached reads the cache when one is configured. Any cache failure behaves
// like a miss so the store stays authoritative.
func (s *StatsService) getCached(ctx context.Context, key model.StatsKey) *model.DaysToHireStats {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.GetCachedStats(ctx, key)
	if err != nil {
		if s.log != nil {
			s.log.Debug("stats cache read failed", "key", key.String(), "err", err)
		}
		return nil
	}
	return cached
}

func (s *StatsService) setCached(ctx context.Context, rec *model.DaysToHireStats) {
	if s.cache == nil || rec == nil {
		return
	}
	// Best-effort cache population; failures are logged when a debug logger is configured.
	if err := s.cache.CacheStats(ctx, rec); err != nil && s.log != nil {
		s.log.Debug("stats cache write failed", "key", rec.Key().String(), "err", err)
	}
}
