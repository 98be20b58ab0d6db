package locker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"go.uber.org/zap"
)

var ErrNotObtained = errors.New("lock not obtained")

// DEFAULT_EXPIRY stays well above the generation timeout; the lease is also
// extended every DEFAULT_EXPIRY/3 while held.
const (
	DEFAULT_EXPIRY = 90 * time.Second
	DEFAULT_TRIES  = 32
)

// lease is the part of *redsync.Mutex a held lock needs.
type lease interface {
	ExtendContext(ctx context.Context) (bool, error)
	Unlock() (bool, error)
}

type RedsyncLocker struct {
	rs     *redsync.Redsync
	logger *zap.Logger
}

func NewRedsyncLocker(rs *redsync.Redsync, logger *zap.Logger) *RedsyncLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedsyncLocker{rs, logger}
}

func (l *RedsyncLocker) Obtain(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(DEFAULT_EXPIRY),
		redsync.WithTries(DEFAULT_TRIES),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.Join(ErrNotObtained, err)
	}

	return hold(mutex, DEFAULT_EXPIRY/3, l.logger.With(zap.String("lock", key))), nil
}

// hold keeps extending m every interval until the returned func releases it.
func hold(m lease, interval time.Duration, logger *zap.Logger) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				ok, err := m.ExtendContext(ctx)
				cancel()
				if err != nil || !ok {
					logger.Warn("lock extend failed", zap.Error(err))
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			if ok, err := m.Unlock(); err != nil || !ok {
				logger.Warn("lock released after expiry", zap.Error(err))
			}
		})
	}
}

// LocalLocker keeps one mutex per key in process memory.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: map[string]chan struct{}{}}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	return ch
}

func (l *LocalLocker) Obtain(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, errors.Join(ErrNotObtained, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}
