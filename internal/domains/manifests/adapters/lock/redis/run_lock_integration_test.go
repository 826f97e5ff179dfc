//go:build integration
// +build integration

package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

func setupRedis(t *testing.T) *goredis.Client {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := goredis.NewClient(&goredis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRunLock_ExclusivePerManifest(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := setupRedis(t)
	lock := NewRunLock(client, 2*time.Second, nil)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, 1)
	require.NoError(t, err)

	_, err = lock.Acquire(ctx, 1)
	require.ErrorIs(t, err, ports.ErrRunLocked)

	other, err := lock.Acquire(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	// the lease outlives its TTL while held
	time.Sleep(3 * time.Second)
	_, err = lock.Acquire(ctx, 1)
	require.ErrorIs(t, err, ports.ErrRunLocked)

	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx))

	again, err := lock.Acquire(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}
