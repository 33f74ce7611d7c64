package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/angelmondragon/storegoals-backend/pkg/redis"
)

// ErrNotFound is returned by Storage.Get when no value exists for the key.
var ErrNotFound = errors.New("session not found")

// Storage is the get/set/clear surface sessions are persisted through.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Clear(ctx context.Context, key string) error
}

type redisAPI interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisStorage adapts the shared redis client to Storage.
type RedisStorage struct {
	client redisAPI
}

// NewRedisStorage wraps client.
func NewRedisStorage(client *redisclient.Client) (*RedisStorage, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisStorage{client: client}, nil
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key)
	if err != nil {
		if redisclient.IsNil(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl)
}

func (s *RedisStorage) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, key)
}
