//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonathan/skill-matcher/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	c, err := New(Options{URL: url})
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	key := "skills:test:" + time.Now().Format(time.RFC3339Nano)
	require.NoError(t, c.Set(ctx, key, `["Go"]`, time.Minute))
	defer c.Delete(ctx, key)

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `["Go"]`, got)

	require.NoError(t, c.Delete(ctx, key))
	_, err = c.Get(ctx, key)
	assert.ErrorIs(t, err, cache.ErrNotFound)
}
