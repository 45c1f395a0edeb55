package storage_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fakhrymubarak/skytrackr/internal/storage"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisKV_FromCallerPackage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var rc storage.RedisClient = client
	kv := storage.NewRedisKV(rc, "app:")

	require.NoError(t, kv.Set(context.Background(), "k", "v"))
	got, ok, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)
	assert.True(t, mr.Exists("app:k"))
}
