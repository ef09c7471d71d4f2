// internal/store/statscache.go
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/models"
)

const statisticsCacheKey = "churn:statistics"

// StatsCache keeps computed aggregate statistics in Redis for a short
// TTL. It is invalidated after every assessment run and expires on its
// own after ingestion-free periods.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewStatsCache(client *redis.Client, ttl time.Duration, log logger.Logger) *StatsCache {
	return &StatsCache{client: client, ttl: ttl, log: log}
}

// Get returns the cached statistics and whether they were present.
func (c *StatsCache) Get(ctx context.Context) (models.ChurnStatistics, bool, error) {
	data, err := c.client.Get(ctx, statisticsCacheKey).Result()
	if err == redis.Nil {
		return models.ChurnStatistics{}, false, nil
	}
	if err != nil {
		return models.ChurnStatistics{}, false, err
	}

	var stats models.ChurnStatistics
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		// Drop the corrupt entry and report a miss
		c.client.Del(ctx, statisticsCacheKey)
		return models.ChurnStatistics{}, false, nil
	}
	return stats, true, nil
}

// Set stores the statistics with the configured TTL.
func (c *StatsCache) Set(ctx context.Context, stats models.ChurnStatistics) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statisticsCacheKey, data, c.ttl).Err()
}

// Invalidate drops the cached entry.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, statisticsCacheKey).Err()
}
