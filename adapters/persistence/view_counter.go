package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/portli/internal/domain/analytics"
	"github.com/khoahotran/portli/pkg/apperror"
)

const viewCounterPrefix = "portli:views:"

type redisViewCounter struct {
	rdb *redis.Client
}

func NewRedisViewCounter(rdb *redis.Client) analytics.Counter {
	return &redisViewCounter{rdb: rdb}
}

func (c *redisViewCounter) Increment(ctx context.Context, username string) error {
	if err := c.rdb.Incr(ctx, viewCounterPrefix+username).Err(); err != nil {
		return apperror.NewInternal("failed to increment view counter", err)
	}
	return nil
}

func (c *redisViewCounter) Total(ctx context.Context, username string) (int64, error) {
	n, err := c.rdb.Get(ctx, viewCounterPrefix+username).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, apperror.NewInternal("failed to read view counter", err)
	}
	return n, nil
}
