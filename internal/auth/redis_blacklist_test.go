package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisBlacklist(t *testing.T) {
	client := startRedis(t)
	store := NewRedisBlacklistStore(client)

	listed, err := store.IsBlacklisted("some.jwt.token")
	require.NoError(t, err)
	assert.False(t, listed)

	require.NoError(t, store.AddToBlacklist("some.jwt.token", time.Now().Add(time.Minute)))

	listed, err = store.IsBlacklisted("some.jwt.token")
	require.NoError(t, err)
	assert.True(t, listed)

	ttl, err := client.TTL(context.Background(), blacklistKey("some.jwt.token")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisBlacklist_ExpiredTokenNotStored(t *testing.T) {
	client := startRedis(t)
	store := NewRedisBlacklistStore(client)

	require.NoError(t, store.AddToBlacklist("old.jwt.token", time.Now().Add(-time.Minute)))

	listed, err := store.IsBlacklisted("old.jwt.token")
	require.NoError(t, err)
	assert.False(t, listed)
}

func TestRedisBlacklist_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer func() { _ = client.Close() }()
	store := NewRedisBlacklistStore(client)

	_, err := store.IsBlacklisted("token")
	assert.Error(t, err)
	assert.Error(t, store.AddToBlacklist("token", time.Now().Add(time.Minute)))
}

func TestBlacklistKey(t *testing.T) {
	assert.Equal(t, blacklistKey("a"), blacklistKey("a"))
	assert.NotEqual(t, blacklistKey("a"), blacklistKey("b"))
	assert.Contains(t, blacklistKey("a"), redisBlacklistPrefix)
}
