package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/apperror"
)

const storageKeyPrefix = "portli:client:"

// redisStorage keeps each browser's keys in one Redis hash. Every write
// pushes the expiry forward, so idle browsers age out after ttl.
type redisStorage struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStorage(rdb *redis.Client, ttl time.Duration) session.Storage {
	return &redisStorage{rdb: rdb, ttl: ttl}
}

func storageKey(clientID string) string {
	return storageKeyPrefix + clientID
}

func (s *redisStorage) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, storageKey(clientID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperror.NewInternal("failed to read client storage", err)
	}
	return v, true, nil
}

func (s *redisStorage) Set(ctx context.Context, clientID, key, value string) error {
	k := storageKey(clientID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, k, key, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, k, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperror.NewInternal("failed to write client storage", err)
	}
	return nil
}

func (s *redisStorage) Remove(ctx context.Context, clientID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdb.HDel(ctx, storageKey(clientID), keys...).Err(); err != nil {
		return apperror.NewInternal("failed to clear client storage", err)
	}
	return nil
}
