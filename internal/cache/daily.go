package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kjannette/fxjournal/internal/models"
	"github.com/redis/go-redis/v9"
)

const generationKey = "fxjournal:daily:gen"

// DailyCache stores the sorted daily records for one trading-day offset.
//
// Key schema:
//
//	fxjournal:daily:gen             - INCR counter, bumped by Invalidate
//	fxjournal:daily:{gen}:{offset}  - JSON array of DailySummary
//
// Records written under an older generation are never read again and expire
// with the TTL.
type DailyCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDailyCache(c *Client, ttl time.Duration) *DailyCache {
	return &DailyCache{rdb: c.rdb, ttl: ttl}
}

func dailyKey(gen int64, offset int) string {
	return fmt.Sprintf("fxjournal:daily:%d:%d", gen, offset)
}

// Generation returns the current cache generation; 0 before the first Invalidate.
func (dc *DailyCache) Generation(ctx context.Context) (int64, error) {
	gen, err := dc.rdb.Get(ctx, generationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis: get daily generation: %w", err)
	}
	return gen, nil
}

// Get returns the cached records and whether the key was present.
func (dc *DailyCache) Get(ctx context.Context, gen int64, offset int) ([]models.DailySummary, bool, error) {
	data, err := dc.rdb.Get(ctx, dailyKey(gen, offset)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get daily %d: %w", offset, err)
	}

	var days []models.DailySummary
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, false, fmt.Errorf("redis: unmarshal daily %d: %w", offset, err)
	}
	return days, true, nil
}

func (dc *DailyCache) Set(ctx context.Context, gen int64, offset int, days []models.DailySummary) error {
	data, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("redis: marshal daily %d: %w", offset, err)
	}
	if err := dc.rdb.Set(ctx, dailyKey(gen, offset), data, dc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set daily %d: %w", offset, err)
	}
	return nil
}

// Invalidate moves every offset to a new generation.
func (dc *DailyCache) Invalidate(ctx context.Context) error {
	if err := dc.rdb.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis: bump daily generation: %w", err)
	}
	return nil
}
