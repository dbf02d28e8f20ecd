//go:build integration

package consent

import (
	"context"
	"testing"
	"time"

	"donation-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisStore(t *testing.T) {
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
	defer container.Terminate(ctx)

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	client, err := ConnectRedis(ctx, config.Redis{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(client)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	banner := NewBanner(store, time.Second, time.Hour)
	require.NoError(t, banner.Accept(ctx, "visitor-1"))

	show, err := banner.ShouldShow(ctx, "visitor-1")
	require.NoError(t, err)
	assert.False(t, show)

	ttl, err := client.TTL(ctx, "consent:visitor-1:cookiesAccepted").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
}
