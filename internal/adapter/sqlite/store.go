// Package sqlite keeps the cache snapshot in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"toggl-efforts/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose keeps its dialect and base FS in package globals.
var (
	gooseOnce sync.Once
	gooseErr  error
)

func configureGoose() {
	gooseOnce.Do(func() {
		goose.SetBaseFS(embedMigrations)
		gooseErr = goose.SetDialect("sqlite3")
	})
}

// Store implements ports.SnapshotStore on a single-row table.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens or creates the database at path and migrates it.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	configureGoose()
	if gooseErr != nil {
		db.Close()
		return nil, fmt.Errorf("goose configuration failed: %w", gooseErr)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if v, err := goose.GetDBVersionContext(ctx, db); err == nil {
		log.Debug("sqlite cache migrated", slog.Int64("version", v))
	}
	return &Store{db: db, log: log}, nil
}

// Load reads the snapshot row; no row is an empty snapshot.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	var (
		snap    domain.Snapshot
		entries sql.NullString
	)
	err := s.db.QueryRowContext(ctx, "SELECT fetched_at, entries FROM snapshot WHERE id = 1").
		Scan(&snap.FetchedAt, &entries)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	if entries.Valid && entries.String != "" {
		if err := json.Unmarshal([]byte(entries.String), &snap.Entries); err != nil {
			return domain.Snapshot{}, fmt.Errorf("parse snapshot entries: %w", err)
		}
	}
	return snap, nil
}

// Save replaces the snapshot row.
func (s *Store) Save(ctx context.Context, snap domain.Snapshot) error {
	var entries any
	if snap.Entries != nil {
		b, err := json.Marshal(snap.Entries)
		if err != nil {
			return fmt.Errorf("encode snapshot entries: %w", err)
		}
		entries = string(b)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO snapshot (id, fetched_at, entries) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET fetched_at = excluded.fetched_at, entries = excluded.entries`,
		snap.FetchedAt, entries)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
