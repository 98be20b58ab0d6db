package caching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string
	Count int
}

func TestUseCacheCallsBackOnce(t *testing.T) {
	c := NewCacheLocal(100, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*payload, error) {
		calls++
		return &payload{Name: "brief", Count: calls}, nil
	}

	first, err := UseCache(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	second, err := UseCache(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = UseCache(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestUseCacheDoesNotStoreErrors(t *testing.T) {
	c := NewCacheLocal(100, time.Minute)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := UseCache(ctx, c, "k", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
}
