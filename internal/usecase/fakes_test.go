package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"toggl-efforts/internal/domain"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// fakeToggl keeps entries in memory and mutates them like the service.
type fakeToggl struct {
	entries []domain.TimeEntry
	nextID  int64
	now     func() time.Time
	err     error
	lists   int
	started []string
	stopped []int64
}

func (f *fakeToggl) ListTimeEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	f.lists++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.TimeEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeToggl) StartTimeEntry(ctx context.Context, description string) (domain.TimeEntry, error) {
	if f.err != nil {
		return domain.TimeEntry{}, f.err
	}
	f.nextID++
	e := domain.TimeEntry{ID: f.nextID, Description: description, Start: f.now(), Duration: domain.Running()}
	f.entries = append(f.entries, e)
	f.started = append(f.started, description)
	return e, nil
}

func (f *fakeToggl) StopTimeEntry(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	for i, e := range f.entries {
		if e.ID == id {
			stop := f.now()
			f.entries[i].Stop = &stop
			f.entries[i].Duration = domain.Stopped(int64(stop.Sub(e.Start) / time.Second))
		}
	}
	f.stopped = append(f.stopped, id)
	return nil
}

type memSnapshots struct{ snap domain.Snapshot }

func (m *memSnapshots) Load(ctx context.Context) (domain.Snapshot, error) { return m.snap, nil }
func (m *memSnapshots) Save(ctx context.Context, snap domain.Snapshot) error {
	m.snap = snap
	return nil
}

// staticEntries is an EntrySource with a fixed batch.
type staticEntries struct {
	entries []domain.TimeEntry
	err     error
	forced  []bool
}

func (s *staticEntries) Entries(ctx context.Context, force bool) ([]domain.TimeEntry, error) {
	s.forced = append(s.forced, force)
	return s.entries, s.err
}

type recordingCache struct {
	staticEntries
	invalidated int
	dropped     int
}

func (c *recordingCache) Invalidate(ctx context.Context) error {
	c.invalidated++
	return nil
}

func (c *recordingCache) Drop(ctx context.Context) error {
	c.dropped++
	return nil
}

type fakeSettings struct {
	notifier bool
	key      string
	err      error
}

func (s *fakeSettings) NotifierEnabled() bool { return s.notifier }
func (s *fakeSettings) APIKey() string        { return s.key }
func (s *fakeSettings) SetNotifier(on bool) error {
	if s.err != nil {
		return s.err
	}
	s.notifier = on
	return nil
}
func (s *fakeSettings) ClearAPIKey() error {
	if s.err != nil {
		return s.err
	}
	s.key = ""
	return nil
}

type fakeNotifier struct{ calls []string }

func (n *fakeNotifier) Activate(ctx context.Context, apiKey string) error {
	n.calls = append(n.calls, "activate:"+apiKey)
	return nil
}
func (n *fakeNotifier) SetActiveTimer(ctx context.Context, id int64, description string) error {
	n.calls = append(n.calls, "active:"+description)
	return nil
}
func (n *fakeNotifier) Stopped(ctx context.Context) error {
	n.calls = append(n.calls, "stopped")
	return nil
}
func (n *fakeNotifier) Quit(ctx context.Context) error {
	n.calls = append(n.calls, "quit")
	return nil
}

type fakeOpener struct {
	opened []string
	err    error
}

func (o *fakeOpener) Open(target string) error {
	o.opened = append(o.opened, target)
	return o.err
}

type fakeSink struct {
	got []domain.TimeEntry
	err error
}

func (s *fakeSink) SyncEntries(ctx context.Context, entries []domain.TimeEntry) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, entries...)
	return nil
}

var errBoom = errors.New("boom")
