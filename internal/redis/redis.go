package redis

import (
	"context"
	"sync"
	"time"

	"github.com/fakhrymubarak/skytrackr/internal/config"
	redisv9 "github.com/redis/go-redis/v9"
)

var (
	client *redisv9.Client
	once   sync.Once
)

// GetClient returns the shared client for the configured address.
func GetClient() *redisv9.Client {
	once.Do(func() {
		client = NewClient(config.GetRedisAddr())
	})
	return client
}

func NewClient(addr string) *redisv9.Client {
	return redisv9.NewClient(&redisv9.Options{
		Addr: addr,
	})
}

// Ping reports whether the server answers within timeout.
func Ping(c *redisv9.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Ping(ctx).Err()
}

// ResetClientForTest resets the Redis client singleton. Use only in tests.
func ResetClientForTest() {
	once = sync.Once{}
	client = nil
}
