package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commoni/commoni/internal/common"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis with native key expiry.
type RedisStore struct {
	rdb redis.Cmdable
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", common.ErrorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %w", common.ErrStore, key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %w", common.ErrStore, key, err)
	}
	return nil
}

func (s *RedisStore) SetWithExpire(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return common.ErrInvalidArgument
	}
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: setex %s: %w", common.ErrStore, key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %w", common.ErrStore, key, err)
	}
	return nil
}
