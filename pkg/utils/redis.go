package utils

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"secboard/pkg/models"
)

// RedisStatsMirror publishes board stats to a Redis key after each refresh,
// for external dashboards. It is fire-and-forget: mirror failures never
// affect the refresh pipeline or the query surface.
type RedisStatsMirror struct {
	client *redis.Client
	key    string
}

// MirroredStats is the JSON document written to Redis.
type MirroredStats struct {
	Stats       models.Stats `json:"stats"`
	LastUpdated time.Time    `json:"last_updated"`
}

// NewRedisStatsMirror creates a stats mirror from a Redis URL.
func NewRedisStatsMirror(url, key string, timeout time.Duration) (*RedisStatsMirror, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout

	return &RedisStatsMirror{
		client: redis.NewClient(opts),
		key:    key,
	}, nil
}

// Ping tests the Redis connection
func (m *RedisStatsMirror) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// Publish writes the current stats document to the configured key.
func (m *RedisStatsMirror) Publish(ctx context.Context, stats models.Stats, lastUpdated time.Time) error {
	data, err := json.Marshal(MirroredStats{Stats: stats, LastUpdated: lastUpdated})
	if err != nil {
		return err
	}
	return m.client.Set(ctx, m.key, data, 0).Err()
}

// Close closes the Redis connection
func (m *RedisStatsMirror) Close() error {
	return m.client.Close()
}
