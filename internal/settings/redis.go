package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ccc-bridge/internal/ccc"

	"github.com/redis/go-redis/v9"
)

const redisKey = "ccc:integration:settings"

// RedisStore persists settings as a JSON value under a fixed key, so a
// restart or a second replica sees the same active integration.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Put(ctx context.Context, in Settings) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, redisKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("settings put: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context) (Settings, error) {
	raw, err := s.rdb.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Settings{}, ccc.ErrNotFound
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settings get: %w", err)
	}
	var out Settings
	if err := json.Unmarshal(raw, &out); err != nil {
		return Settings{}, fmt.Errorf("settings decode: %w", err)
	}
	return out, nil
}
