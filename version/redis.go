package version

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSource reads the deployment version from a Redis key, so every host of
// a deployment agrees on it. The deploy pipeline owns the key; Publish is a
// helper for it.
type RedisSource struct {
	rdb redis.UniversalClient
	key string
}

var _ Source = (*RedisSource)(nil)

func Redis(client redis.UniversalClient, key string) *RedisSource {
	return &RedisSource{rdb: client, key: key}
}

// Version returns the stored version. A missing key is ErrNoVersion.
func (s *RedisSource) Version(ctx context.Context) (string, error) {
	v, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoVersion
	}
	if err != nil {
		return "", fmt.Errorf("redis version %q: %w", s.key, err)
	}
	if v == "" {
		return "", ErrNoVersion
	}
	return v, nil
}

// Publish stores v as the current version.
func (s *RedisSource) Publish(ctx context.Context, v string) error {
	return s.rdb.Set(ctx, s.key, v, 0).Err()
}
