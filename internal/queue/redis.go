package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const blockInterval = 5 * time.Second

// redisQueue implements Queue on a Redis list (LPUSH producer, BRPOP consumer).
type redisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a Redis-backed queue on the given list key.
func NewRedisQueue(client *redis.Client, key string) Queue {
	return &redisQueue{client: client, key: key}
}

func (q *redisQueue) Enqueue(ctx context.Context, payload []byte) error {
	return q.client.LPush(ctx, q.key, payload).Err()
}

func (q *redisQueue) Dequeue(ctx context.Context) ([]byte, error) {
	res, err := q.client.BRPop(ctx, blockInterval, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, ErrEmpty
	}
	return []byte(res[1]), nil
}
