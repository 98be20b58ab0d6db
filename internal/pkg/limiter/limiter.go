package limiter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

var ErrLimited = errors.New("rate limited")

type Limiter struct {
	instance *redis_rate.Limiter
}

func NewLimiter(client redis.UniversalClient) (*Limiter, error) {
	if client == nil {
		return nil, errors.New("limiter: redis client is nil")
	}
	return &Limiter{redis_rate.NewLimiter(client)}, nil
}

func (l *Limiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	res, err := l.instance.Allow(ctx, key, limit)
	if err != nil {
		return err
	}
	if res.Allowed == 0 {
		return ErrLimited
	}
	return nil
}

type window struct {
	start time.Time
	count int
}

// LocalLimiter is a fixed window counter for single process deployments.
type LocalLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewLocalLimiter(now func() time.Time) *LocalLimiter {
	if now == nil {
		now = time.Now
	}
	return &LocalLimiter{windows: map[string]*window{}, now: now}
}

func (l *LocalLimiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	if limit.IsZero() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= limit.Period {
		w = &window{start: now}
		l.windows[key] = w
	}

	max := limit.Rate
	if limit.Burst > max {
		max = limit.Burst
	}
	if w.count >= max {
		return ErrLimited
	}
	w.count++
	return nil
}
