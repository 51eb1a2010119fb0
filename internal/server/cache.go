package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voyagent/voyagent/config"
	"github.com/voyagent/voyagent/internal/agent/core"
)

// ResultCache keeps recent trip results in Redis keyed by run ID, so
// repeated lookups skip the archive.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache connects and verifies the Redis backend.
func NewResultCache(ctx context.Context, cfg config.RedisConfig) (*ResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ResultCache{client: client, ttl: ttl}, nil
}

// Close releases the Redis connection.
func (rc *ResultCache) Close() error { return rc.client.Close() }

func cacheKey(runID string) string { return "voyagent:trip:" + runID }

// Put stores a completed run.
func (rc *ResultCache) Put(ctx context.Context, result *core.TripResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling trip result: %w", err)
	}
	return rc.client.Set(ctx, cacheKey(result.RunID), data, rc.ttl).Err()
}

// Get loads a cached run.
func (rc *ResultCache) Get(ctx context.Context, runID string) (*core.TripResult, error) {
	data, err := rc.client.Get(ctx, cacheKey(runID)).Bytes()
	if err != nil {
		return nil, err
	}
	var result core.TripResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding cached trip result: %w", err)
	}
	return &result, nil
}
