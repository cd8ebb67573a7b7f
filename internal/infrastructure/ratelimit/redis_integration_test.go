//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jhoicas/api-inventario/internal/infrastructure/ratelimit"
)

func TestRedisStore_Hit(t *testing.T) {
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := ratelimit.NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	s := ratelimit.NewRedisStore(rdb)
	for i := int64(1); i <= 3; i++ {
		n, reset, err := s.Hit(ctx, "login:10.0.0.1", 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, i, n)
		assert.LessOrEqual(t, reset, 2*time.Second)
		assert.Positive(t, reset)
	}

	time.Sleep(2100 * time.Millisecond)
	n, _, err := s.Hit(ctx, "login:10.0.0.1", 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
