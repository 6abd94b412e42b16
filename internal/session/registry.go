// Package session tracks a per-user sign-in generation. Signing out bumps
// it, which invalidates outstanding tokens and in-flight query results.
package session

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"
)

type Registry interface {
	// Current returns the live generation; never-seen users are at 0.
	Current(ctx context.Context, userID string) (int64, error)
	// Revoke bumps the generation and returns the new value.
	Revoke(ctx context.Context, userID string) (int64, error)
}

type MemoryRegistry struct {
	mu   sync.Mutex
	gens map[string]int64
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{gens: make(map[string]int64)}
}

func (m *MemoryRegistry) Current(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[userID], nil
}

func (m *MemoryRegistry) Revoke(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[userID]++
	return m.gens[userID], nil
}

const keyPrefix = "drystore:session:"

type RedisRegistry struct {
	c *redis.Client
}

func NewRedisRegistry(c *redis.Client) *RedisRegistry { return &RedisRegistry{c: c} }

func (r *RedisRegistry) Current(ctx context.Context, userID string) (int64, error) {
	gen, err := r.c.Get(ctx, keyPrefix+userID).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}
	return gen, nil
}

func (r *RedisRegistry) Revoke(ctx context.Context, userID string) (int64, error) {
	return r.c.Incr(ctx, keyPrefix+userID).Result()
}

// NewRedisClient mirrors the options used across the services.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Ping checks the connection before the registry is used.
func Ping(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}
