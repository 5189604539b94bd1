package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"toggl-efforts/internal/domain"
	"toggl-efforts/internal/ports"
)

// DefaultTTL is how long a snapshot is trusted before it is refetched.
const DefaultTTL = 300 * time.Second

// NeedsRefresh reports whether snap must be refetched at nowEpoch.
func NeedsRefresh(snap domain.Snapshot, nowEpoch, ttlSeconds int64, force bool) bool {
	switch {
	case force:
		return true
	case snap.FetchedAt == 0 || len(snap.Entries) == 0:
		return true
	default:
		return nowEpoch-snap.FetchedAt > ttlSeconds
	}
}

// Store keeps the last fetched entries in a SnapshotStore and decides when
// to hit Toggl again. The read-decide-write sequence runs under one lock,
// held across processes when Lock is set.
type Store struct {
	Log       *slog.Logger
	Toggl     ports.TogglClient
	Snapshots ports.SnapshotStore
	TTL       time.Duration
	// Disabled forces a refresh on every read.
	Disabled bool
	Now      func() time.Time
	Lock     Locker

	mu sync.Mutex
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultTTL
	}
	return s.TTL
}

func (s *Store) check() error {
	if s.Toggl == nil || s.Snapshots == nil {
		return errors.New("cache store not initialized: missing dependencies")
	}
	if s.Log == nil {
		s.Log = slog.Default()
	}
	return nil
}

// Entries returns cached entries, refetching when the snapshot is stale,
// empty, caching is disabled, or force is set.
func (s *Store) Entries(ctx context.Context, force bool) ([]domain.TimeEntry, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := s.Snapshots.Load(ctx)
	if err != nil {
		// An unreadable snapshot is treated as missing.
		s.Log.Warn("cache snapshot unreadable", slog.String("error", err.Error()))
		snap = domain.Snapshot{}
	}

	now := s.now()
	if s.Disabled {
		s.Log.Debug("cache is disabled")
	}
	if !NeedsRefresh(snap, now.Unix(), int64(s.ttl()/time.Second), force || s.Disabled) {
		s.Log.Debug("using cached data",
			slog.Int64("fetched_at", snap.FetchedAt),
			slog.Int("count", len(snap.Entries)))
		return snap.Entries, nil
	}
	return s.refreshLocked(ctx, now)
}

// Refresh refetches unconditionally.
func (s *Store) Refresh(ctx context.Context) ([]domain.TimeEntry, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.refreshLocked(ctx, s.now())
}

func (s *Store) refreshLocked(ctx context.Context, now time.Time) ([]domain.TimeEntry, error) {
	s.Log.Debug("refreshing cache")
	entries, err := s.Toggl.ListTimeEntries(ctx)
	if err != nil {
		s.Log.Error("error getting time entries", slog.String("error", err.Error()))
		return nil, &domain.FetchError{Op: "list time entries", Err: err}
	}
	snap := domain.Snapshot{FetchedAt: now.Unix(), Entries: entries}
	if err := s.Snapshots.Save(ctx, snap); err != nil {
		// The fetch succeeded; a failed write only costs a refetch next time.
		s.Log.Warn("cache snapshot not saved", slog.String("error", err.Error()))
	}
	s.Log.Info("fetched time entries", slog.Int("count", len(entries)))
	return entries, nil
}

// Invalidate zeroes the fetch timestamp so the next read refetches.
// Stored entries are kept.
func (s *Store) Invalidate(ctx context.Context) error {
	return s.update(ctx, func(snap *domain.Snapshot) { snap.FetchedAt = 0 })
}

// Drop clears the stored entries.
func (s *Store) Drop(ctx context.Context) error {
	return s.update(ctx, func(snap *domain.Snapshot) { snap.Entries = nil })
}

func (s *Store) update(ctx context.Context, fn func(*domain.Snapshot)) error {
	if err := s.check(); err != nil {
		return err
	}
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	snap, err := s.Snapshots.Load(ctx)
	if err != nil {
		snap = domain.Snapshot{}
	}
	fn(&snap)
	if err := s.Snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
