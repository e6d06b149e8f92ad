package attempt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "negotiator:attempt"

// RedisStore keeps attempts as JSON strings that expire after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func attemptKey(id string) string {
	return redisPrefix + ":" + id
}

func latestKey(playerID uint64, day string) string {
	return fmt.Sprintf("%s:latest:%d:%s", redisPrefix, playerID, day)
}

func (r *RedisStore) Create(ctx context.Context, a *Attempt) error {
	data, err := encode(a)
	if err != nil {
		return err
	}
	created, err := r.client.SetNX(ctx, attemptKey(a.ID), data, r.ttl).Result()
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("attempt %s already exists", a.ID)
	}
	return r.client.Set(ctx, latestKey(a.PlayerID, a.Day), a.ID, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Attempt, error) {
	data, err := r.client.Get(ctx, attemptKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode(data)
}

func (r *RedisStore) Latest(ctx context.Context, playerID uint64, day string) (*Attempt, error) {
	id, err := r.client.Get(ctx, latestKey(playerID, day)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

// Save overwrites an existing attempt and refreshes its expiry.
func (r *RedisStore) Save(ctx context.Context, a *Attempt) error {
	data, err := encode(a)
	if err != nil {
		return err
	}
	updated, err := r.client.SetXX(ctx, attemptKey(a.ID), data, r.ttl).Result()
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
