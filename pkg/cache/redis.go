package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/logger"
)

// RedisCache implements ProgressCache on Redis. Keys are namespaced per job:
// analysis:<id>:progress and analysis:<id>:result.
type RedisCache struct {
	client *redis.Client
}

// RedisCacheParams contains configuration for creating a RedisCache.
type RedisCacheParams struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisCache(params RedisCacheParams) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     params.Addr,
		Password: params.Password,
		DB:       params.DB,
	})
	return &RedisCache{client: client}
}

// NewRedisCacheWithClient wraps an existing client, mainly for tests against
// a miniredis or a shared connection.
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Ping verifies the connection at startup.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func progressKey(analysisID int64) string {
	return fmt.Sprintf("analysis:%d:progress", analysisID)
}

func summaryKey(analysisID int64) string {
	return fmt.Sprintf("analysis:%d:result", analysisID)
}

func (c *RedisCache) SetProgress(ctx context.Context, analysisID int64, p Progress, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, progressKey(analysisID), payload, ttl).Err(); err != nil {
		logger.Debug("[Cache] progress write failed", "analysis_id", analysisID, "error", err)
	}
}

func (c *RedisCache) GetProgress(ctx context.Context, analysisID int64) (Progress, bool) {
	payload, err := c.client.Get(ctx, progressKey(analysisID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Debug("[Cache] progress read failed", "analysis_id", analysisID, "error", err)
		}
		return Progress{}, false
	}

	var p Progress
	if err := json.Unmarshal(payload, &p); err != nil {
		return Progress{}, false
	}
	if p.Status == "" {
		p.Status = common.StatusPending
	}
	return p, true
}

func (c *RedisCache) CacheSummary(ctx context.Context, analysisID int64, summary []byte, ttl time.Duration) {
	if len(summary) == 0 {
		return
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := c.client.Set(ctx, summaryKey(analysisID), summary, ttl).Err(); err != nil {
		logger.Debug("[Cache] summary write failed", "analysis_id", analysisID, "error", err)
	}
}

func (c *RedisCache) GetSummary(ctx context.Context, analysisID int64) ([]byte, bool) {
	payload, err := c.client.Get(ctx, summaryKey(analysisID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Debug("[Cache] summary read failed", "analysis_id", analysisID, "error", err)
		}
		return nil, false
	}
	return payload, true
}

func (c *RedisCache) Invalidate(ctx context.Context, analysisID int64) {
	if err := c.client.Del(ctx, progressKey(analysisID), summaryKey(analysisID)).Err(); err != nil {
		logger.Debug("[Cache] invalidate failed", "analysis_id", analysisID, "error", err)
	}
}

var _ ProgressCache = (*RedisCache)(nil)
