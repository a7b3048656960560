package repository

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// CachedDrawStatisticsRepository wraps a DrawStatisticsRepository with
// a TTL cache. Draw statistics are fixed for a race day, so every
// competitor scored for the same race can share one lookup.
type CachedDrawStatisticsRepository struct {
	inner DrawStatisticsRepository
	cache *gocache.Cache
}

// NewCachedDrawStatisticsRepository creates a caching decorator around
// an existing draw statistics repository.
func NewCachedDrawStatisticsRepository(inner DrawStatisticsRepository, ttl time.Duration) DrawStatisticsRepository {
	return &CachedDrawStatisticsRepository{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Upsert writes through to the inner repository and invalidates the
// cached entry for that race.
func (r *CachedDrawStatisticsRepository) Upsert(ctx context.Context, stats *models.DrawStatistics) error {
	if err := r.inner.Upsert(ctx, stats); err != nil {
		return err
	}
	r.cache.Delete(drawStatsCacheKey(stats.Key))
	return nil
}

// GetByRaceKey returns the cached statistics for a race, falling back
// to the inner repository on a miss. Not-found results are not cached.
func (r *CachedDrawStatisticsRepository) GetByRaceKey(ctx context.Context, key models.RaceKey) (*models.DrawStatistics, error) {
	cacheKey := drawStatsCacheKey(key)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(*models.DrawStatistics), nil
	}

	stats, err := r.inner.GetByRaceKey(ctx, key)
	if err != nil {
		return nil, err
	}

	r.cache.SetDefault(cacheKey, stats)
	return stats, nil
}

func drawStatsCacheKey(key models.RaceKey) string {
	return fmt.Sprintf("%s/%d/%d/%s", key.Date, key.RaceNumber, key.Distance, key.Going)
}
