package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_VentanaFija(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, reset, err := s.Hit(ctx, "1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
		assert.Equal(t, time.Minute, reset)
	}

	n, _, err := s.Hit(ctx, "5.6.7.8", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "claves independientes")

	now = now.Add(time.Minute)
	n, _, err = s.Hit(ctx, "1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "la ventana se reinicia al vencer")
}

func TestMemoryStore_Purge(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, _, _ = s.Hit(ctx, "a", time.Second)
	_, _, _ = s.Hit(ctx, "b", time.Hour)
	now = now.Add(2 * time.Second)

	assert.Equal(t, 1, s.Purge())
	assert.Len(t, s.entries, 1)
}
