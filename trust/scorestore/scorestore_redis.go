package scorestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisScorePrefix = "tc/score/"

// RedisScoreStore keeps breakdowns as JSON blobs in redis, so scores survive
// daemon restarts without replaying raw events.
type RedisScoreStore struct {
	client *redis.Client
}

func NewRedisScoreStore(redisURL string) (*RedisScoreStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.TODO()).Result(); err != nil {
		return nil, err
	}
	return &RedisScoreStore{client: rdb}, nil
}

func (s *RedisScoreStore) Get(ctx context.Context, kind Kind, entity string) (*Breakdown, error) {
	raw, err := s.client.Get(ctx, redisScorePrefix+storeKey(kind, entity)).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var b Breakdown
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("corrupt breakdown for %s/%s: %w", kind, entity, err)
	}
	return &b, nil
}

func (s *RedisScoreStore) Put(ctx context.Context, b *Breakdown) error {
	if b == nil || b.Entity == "" {
		return fmt.Errorf("refusing to store empty breakdown")
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisScorePrefix+storeKey(b.Kind, b.Entity), raw, 0).Err()
}

func (s *RedisScoreStore) List(ctx context.Context, kind Kind) ([]string, error) {
	prefix := redisScorePrefix + string(kind) + "/"
	var out []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisScoreStore) Clear(ctx context.Context, kind Kind) error {
	prefix := redisScorePrefix + string(kind) + "/"
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
