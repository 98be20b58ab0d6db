package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewLocalLimiter(func() time.Time { return now })
	ctx := context.Background()
	limit := redis_rate.PerMinute(2)

	require.NoError(t, l.Allow(ctx, "a", limit))
	require.NoError(t, l.Allow(ctx, "a", limit))
	assert.ErrorIs(t, l.Allow(ctx, "a", limit), ErrLimited)

	// other keys have their own window
	assert.NoError(t, l.Allow(ctx, "b", limit))

	now = now.Add(time.Minute)
	assert.NoError(t, l.Allow(ctx, "a", limit))
}
