package locker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lifequest/internal/generation"
)

type countingLease struct {
	extends  atomic.Int32
	unlocks  atomic.Int32
	unlocked atomic.Bool
}

func (l *countingLease) ExtendContext(ctx context.Context) (bool, error) {
	if l.unlocked.Load() {
		return false, nil
	}
	l.extends.Add(1)
	return true, nil
}

func (l *countingLease) Unlock() (bool, error) {
	l.unlocked.Store(true)
	l.unlocks.Add(1)
	return true, nil
}

func TestHoldExtendsUntilReleased(t *testing.T) {
	lease := &countingLease{}
	release := hold(lease, 5*time.Millisecond, zaptest.NewLogger(t))

	require.Eventually(t, func() bool {
		return lease.extends.Load() >= 3
	}, time.Second, time.Millisecond)

	release()
	release()

	extended := lease.extends.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, extended, lease.extends.Load())
	assert.Equal(t, int32(1), lease.unlocks.Load())
}

func TestLeaseOutlivesGeneration(t *testing.T) {
	assert.Greater(t, DEFAULT_EXPIRY, 2*generation.DEFAULT_TIMEOUT)
}

func TestLocalLockerSerializesSameKey(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Obtain(ctx, "user:1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
}

func TestLocalLockerHonoursContext(t *testing.T) {
	l := NewLocalLocker()

	unlock, err := l.Obtain(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Obtain(ctx, "k")
	assert.ErrorIs(t, err, ErrNotObtained)

	unlock()
	unlock()

	other, err := l.Obtain(context.Background(), "k")
	require.NoError(t, err)
	other()
}
