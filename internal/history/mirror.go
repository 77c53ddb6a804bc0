package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/p-shah256/careerfit/pkg/types"
)

const defaultMirrorKey = "careerfit:history"

// RedisMirror replays history writes into a Redis hash keyed by record id.
type RedisMirror struct {
	rdb *redis.Client
	key string
}

func NewRedisMirror(rdb *redis.Client) *RedisMirror {
	return &RedisMirror{rdb: rdb, key: defaultMirrorKey}
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (m *RedisMirror) Save(ctx context.Context, rec types.JobRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}
	if err := m.rdb.HSet(ctx, m.key, rec.ID, data).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", rec.ID, err)
	}
	return nil
}

func (m *RedisMirror) Clear(ctx context.Context) error {
	if err := m.rdb.Del(ctx, m.key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", m.key, err)
	}
	return nil
}
