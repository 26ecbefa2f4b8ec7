package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "admission:attempts:"

type redisAttemptStore struct {
	client *redis.Client
}

func NewRedisAttemptStore(client *redis.Client) AttemptStore {
	return &redisAttemptStore{client: client}
}

func (s *redisAttemptStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	redisKey := attemptKeyPrefix + key
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
