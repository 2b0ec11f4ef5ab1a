package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisKV backs the KV interface with Redis. Values never expire; the
// override store owns its own lifecycle.
type RedisKV struct {
	rdb *redis.Client
}

// NewRedisKV connects to Redis. An empty URL or failed connection returns
// (nil, error) so callers can decide whether to degrade or abort.
func NewRedisKV(redisURL string) (*RedisKV, error) {
	if redisURL == "" {
		return nil, errors.New("redis: no URL configured")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Info().Msg("redis: connected")
	return &RedisKV{rdb: rdb}, nil
}

// Client returns the underlying Redis client (for health checks).
func (s *RedisKV) Client() *redis.Client {
	return s.rdb
}

func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisKV) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *RedisKV) Incr(ctx context.Context, key string) (int64, error) {
	return s.rdb.Incr(ctx, key).Result()
}

func (s *RedisKV) Close() error {
	return s.rdb.Close()
}
