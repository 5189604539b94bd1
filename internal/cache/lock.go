package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
)

// LockRetry is how often a blocked process retries the file lock.
const LockRetry = 20 * time.Millisecond

// Locker serializes snapshot access between processes sharing a cache.
type Locker interface {
	TryLockContext(ctx context.Context, retryDelay time.Duration) (bool, error)
	Unlock() error
}

// NewFileLock returns an advisory lock on cachePath + ".lock".
func NewFileLock(cachePath string) *flock.Flock {
	return flock.New(cachePath + ".lock")
}

// lock takes the in-process mutex, then the file lock when one is set.
// The returned func releases both.
func (s *Store) lock(ctx context.Context) (func(), error) {
	s.mu.Lock()
	if s.Lock == nil {
		return s.mu.Unlock, nil
	}
	ok, err := s.Lock.TryLockContext(ctx, LockRetry)
	if err == nil && !ok {
		err = errors.New("not acquired")
	}
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("lock cache: %w", err)
	}
	return func() {
		if err := s.Lock.Unlock(); err != nil {
			s.Log.Warn("cache unlock failed", slog.String("error", err.Error()))
		}
		s.mu.Unlock()
	}, nil
}
