package countstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisCountPrefix    = "tc/count/"
	redisDistinctPrefix = "tc/distinct/"
)

// RedisCountStore backs counters with redis so counts survive restarts and
// can be shared by multiple daemon instances. Distinct counts use HyperLogLog.
type RedisCountStore struct {
	client *redis.Client
}

func NewRedisCountStore(redisURL string) (*RedisCountStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.TODO()).Result(); err != nil {
		return nil, err
	}
	return &RedisCountStore{client: rdb}, nil
}

func (s *RedisCountStore) GetCount(ctx context.Context, name, val, period string) (int, error) {
	c, err := s.client.Get(ctx, redisCountPrefix+periodBucket(name, val, period)).Int()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return c, nil
}

func (s *RedisCountStore) Increment(ctx context.Context, name, val string) error {
	// all three period buckets in a single round-trip; day and hour buckets
	// expire on their own, totals are kept forever
	multi := s.client.Pipeline()
	key := redisCountPrefix + periodBucket(name, val, PeriodHour)
	multi.Incr(ctx, key)
	multi.Expire(ctx, key, 2*time.Hour)
	key = redisCountPrefix + periodBucket(name, val, PeriodDay)
	multi.Incr(ctx, key)
	multi.Expire(ctx, key, 48*time.Hour)
	multi.Incr(ctx, redisCountPrefix+periodBucket(name, val, PeriodTotal))
	_, err := multi.Exec(ctx)
	return err
}

func (s *RedisCountStore) GetCountDistinct(ctx context.Context, name, bucket, period string) (int, error) {
	c, err := s.client.PFCount(ctx, redisDistinctPrefix+periodBucket(name, bucket, period)).Result()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return int(c), nil
}

func (s *RedisCountStore) IncrementDistinct(ctx context.Context, name, bucket, val string) error {
	multi := s.client.Pipeline()
	key := redisDistinctPrefix + periodBucket(name, bucket, PeriodHour)
	multi.PFAdd(ctx, key, val)
	multi.Expire(ctx, key, 2*time.Hour)
	key = redisDistinctPrefix + periodBucket(name, bucket, PeriodDay)
	multi.PFAdd(ctx, key, val)
	multi.Expire(ctx, key, 48*time.Hour)
	multi.PFAdd(ctx, redisDistinctPrefix+periodBucket(name, bucket, PeriodTotal), val)
	_, err := multi.Exec(ctx)
	return err
}
