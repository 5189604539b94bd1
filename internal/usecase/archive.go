package usecase

import (
	"context"
	"errors"
	"log/slog"

	"toggl-efforts/internal/ports"
)

// ArchiveUseCase copies the current batch of entries into a Sink.
type ArchiveUseCase struct {
	Log     *slog.Logger
	Entries ports.EntrySource
	Sink    ports.Sink
}

// Run archives the cached entries, refetching first when force is set.
func (uc *ArchiveUseCase) Run(ctx context.Context, force bool) error {
	if uc.Entries == nil || uc.Sink == nil {
		return errors.New("usecase not initialized: missing dependencies")
	}
	if uc.Log == nil {
		uc.Log = slog.Default()
	}
	uc.Log.Info("archiving time entries", slog.Bool("force", force))

	entries, err := uc.Entries.Entries(ctx, force)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		uc.Log.Info("no entries to archive")
		return nil
	}

	if err := uc.Sink.SyncEntries(ctx, entries); err != nil {
		return err
	}
	uc.Log.Info("archive completed", slog.Int("count", len(entries)))
	return nil
}
