// Package cache provides the string key-value storage the storefront uses
// for everything that must survive a full page navigation: session carts,
// logged-in users, and the pending-purchase slots written right before the
// browser is handed off to the payment gateway.
//
// The Redis implementation is the production store. A process-local
// implementation lives in memory.go for development and tests.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the durable key-value port. Get returns "" with a nil error when
// the key is absent or expired; callers treat missing data as "no data
// present", never as a hard failure.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	GenerateKey(operation, key string) string
}

type redisStore struct {
	client      *redis.Client
	serviceName string
}

func NewRedisStore(addr, serviceName string) Store {
	return &redisStore{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
	}
}

func (r *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	return val, nil
}

func (r *redisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisStore) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.serviceName, operation, key)
}
