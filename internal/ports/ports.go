package ports

import (
	"context"

	"toggl-efforts/internal/domain"
)

// TogglClient reads and mutates time entries on Toggl.
type TogglClient interface {
	ListTimeEntries(ctx context.Context) ([]domain.TimeEntry, error)
	StartTimeEntry(ctx context.Context, description string) (domain.TimeEntry, error)
	StopTimeEntry(ctx context.Context, id int64) error
}

// SnapshotStore persists the cached entries between invocations.
// Load returns an empty snapshot when nothing was saved yet.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Save(ctx context.Context, snap domain.Snapshot) error
}

// EntrySource hands out the current batch of entries, refreshing as needed.
type EntrySource interface {
	Entries(ctx context.Context, force bool) ([]domain.TimeEntry, error)
}

// Cache is an EntrySource that mutating commands can invalidate.
type Cache interface {
	EntrySource
	Invalidate(ctx context.Context) error
	Drop(ctx context.Context) error
}

// Sink receives entries and persists them to a target system.
type Sink interface {
	SyncEntries(ctx context.Context, entries []domain.TimeEntry) error
}

// Notifier drives the menu bar companion app.
type Notifier interface {
	Activate(ctx context.Context, apiKey string) error
	SetActiveTimer(ctx context.Context, id int64, description string) error
	Stopped(ctx context.Context) error
	Quit(ctx context.Context) error
}

// Opener opens a URL or a local file for the user.
type Opener interface {
	Open(target string) error
}

// Settings are the user toggles that commands may flip.
type Settings interface {
	NotifierEnabled() bool
	SetNotifier(enabled bool) error
	APIKey() string
	ClearAPIKey() error
}
