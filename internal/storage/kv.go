package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// KV is the flat text store the saved-city lists are persisted in.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// RedisClient is the subset of the go-redis client RedisKV needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
}

var _ RedisClient = (*redisv9.Client)(nil)

// RedisKV stores values in Redis under prefix+key, without expiry.
type RedisKV struct {
	client RedisClient
	prefix string
}

func NewRedisKV(client RedisClient, prefix string) *RedisKV {
	return &RedisKV{client: client, prefix: prefix}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redisv9.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

// MemoryKV is a process-local KV. Used in tests and when Redis is unreachable.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

var (
	_ KV = (*RedisKV)(nil)
	_ KV = (*MemoryKV)(nil)
)
