package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"toggl-efforts/internal/adapter/desktop"
	"toggl-efforts/internal/adapter/filestore"
	msql "toggl-efforts/internal/adapter/mysql"
	"toggl-efforts/internal/adapter/sqlite"
	tg "toggl-efforts/internal/adapter/toggl"
	"toggl-efforts/internal/cache"
	"toggl-efforts/internal/config"
	"toggl-efforts/internal/dates"
	"toggl-efforts/internal/domain"
	"toggl-efforts/internal/migrate"
	"toggl-efforts/internal/ports"
	"toggl-efforts/internal/usecase"
)

// App wires adapters and use cases.
type App struct {
	log      *slog.Logger
	cfg      config.Config
	store    *cache.Store
	query    *usecase.QueryUseCase
	dispatch *usecase.Dispatcher
	menu     *usecase.Menu
	closers  []io.Closer

	archiveMu sync.Mutex
	archive   *usecase.ArchiveUseCase
}

// Deps overrides collaborators; nil fields use the real adapters.
type Deps struct {
	Toggl     ports.TogglClient
	Snapshots ports.SnapshotStore
	Notifier  ports.Notifier
	Opener    ports.Opener
	Sink      ports.Sink
}

// New builds the app from cfg. settings is the file the toggles are
// written back to.
func New(ctx context.Context, log *slog.Logger, cfg config.Config, settings *config.File, deps Deps) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = config.NewFile("", &cfg)
	}
	a := &App{log: log, cfg: cfg}

	if deps.Toggl == nil {
		deps.Toggl = tg.NewClient(cfg.Toggl.BaseURL, cfg.Toggl.APIToken, cfg.Toggl.WorkspaceID, cfg.Toggl.ProjectID, log)
	}
	var lock cache.Locker
	if deps.Snapshots == nil {
		snaps, err := a.openSnapshots(ctx)
		if err != nil {
			return nil, err
		}
		deps.Snapshots = snaps
		// Every launcher keystroke is its own process on the same cache.
		lock = cache.NewFileLock(cfg.Cache.Path)
	}
	if deps.Notifier == nil {
		deps.Notifier = desktop.NewNotifier(log)
	}
	if deps.Opener == nil {
		deps.Opener = desktop.NewOpener(io.Discard)
	}

	a.store = &cache.Store{
		Log:       log,
		Toggl:     deps.Toggl,
		Snapshots: deps.Snapshots,
		TTL:       cfg.TTL(),
		Disabled:  cfg.Cache.Disabled,
		Lock:      lock,
	}
	a.query = &usecase.QueryUseCase{
		Log:     log,
		Entries: a.store,
		Dates:   dates.NewResolver(loc),
		Loc:     loc,
	}
	a.dispatch = &usecase.Dispatcher{
		Log:      log,
		Toggl:    deps.Toggl,
		Cache:    a.store,
		Settings: settings,
		Notifier: deps.Notifier,
		Opener:   deps.Opener,
	}
	a.menu = &usecase.Menu{
		Settings:   settings,
		ConfigPath: settings.Path(),
		LogPath:    cfg.LogFile,
		TTL:        cfg.TTL(),
	}
	if deps.Sink != nil {
		a.archive = &usecase.ArchiveUseCase{Log: log, Entries: a.store, Sink: deps.Sink}
	}
	return a, nil
}

func (a *App) openSnapshots(ctx context.Context) (ports.SnapshotStore, error) {
	switch a.cfg.Cache.Backend {
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, a.cfg.Cache.Path, a.log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	default:
		return filestore.New(a.cfg.Cache.Path)
	}
}

// List shows all efforts. A leading "//" refreshes the cache first.
func (a *App) List(ctx context.Context, filter string) []domain.Item {
	if strings.HasPrefix(strings.TrimSpace(filter), "//") {
		if _, err := a.store.Refresh(ctx); err != nil {
			return usecase.ErrorItems(err)
		}
		filter = strings.TrimPrefix(strings.TrimSpace(filter), "/")
	}
	items, err := a.query.Query(ctx, filter, domain.Window{})
	if err != nil {
		return usecase.ErrorItems(err)
	}
	return items
}

func (a *App) Since(ctx context.Context, text string) []domain.Item {
	items, err := a.query.Since(ctx, text)
	if err != nil {
		return usecase.ErrorItems(err)
	}
	return items
}

func (a *App) On(ctx context.Context, text string) []domain.Item {
	items, err := a.query.On(ctx, text)
	if err != nil {
		return usecase.ErrorItems(err)
	}
	return items
}

func (a *App) Start(text string) []domain.Item { return usecase.StartPrompt(text) }

func (a *App) Help() []domain.Item { return a.menu.Help() }

func (a *App) Commands(filter string) []domain.Item { return a.menu.Commands(filter) }

// Do runs an action token and returns the status for the user.
func (a *App) Do(ctx context.Context, token string) string {
	status, err := a.dispatch.Do(ctx, token)
	if err != nil {
		a.log.Error("action failed", slog.String("token", token), slog.String("error", err.Error()))
	}
	return status
}

// Archive copies the cached entries into MySQL.
func (a *App) Archive(ctx context.Context, force bool) error {
	uc, err := a.archiveUseCase(ctx)
	if err != nil {
		return err
	}
	return uc.Run(ctx, force)
}

func (a *App) archiveUseCase(ctx context.Context) (*usecase.ArchiveUseCase, error) {
	a.archiveMu.Lock()
	defer a.archiveMu.Unlock()
	if a.archive != nil {
		return a.archive, nil
	}
	if a.cfg.MySQL.DSN == "" {
		return nil, errors.New("archive needs MYSQL_DSN")
	}
	// Run migrations before opening the sink for use
	if err := migrate.Run(ctx, a.cfg.MySQL.DSN, a.log); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	sink, err := msql.NewClient(ctx, a.cfg.MySQL.DSN, a.log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, sink)
	a.archive = &usecase.ArchiveUseCase{Log: a.log, Entries: a.store, Sink: sink}
	return a.archive, nil
}

// MigrationStatus lists the archive migrations and whether each has run.
func (a *App) MigrationStatus(ctx context.Context) ([]domain.Item, error) {
	if a.cfg.MySQL.DSN == "" {
		return nil, errors.New("archive needs MYSQL_DSN")
	}
	migrations, err := migrate.Status(ctx, a.cfg.MySQL.DSN)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	return migrationItems(migrations), nil
}

func migrationItems(migrations []migrate.Migration) []domain.Item {
	items := make([]domain.Item, 0, len(migrations))
	for _, m := range migrations {
		state := "pending"
		if m.Applied {
			state = "applied"
		}
		items = append(items, domain.Item{Title: m.File, Subtitle: fmt.Sprintf("version %d, %s", m.Version, state)})
	}
	if len(items) == 0 {
		items = append(items, domain.Item{Title: "No migrations"})
	}
	return items
}

// Close releases databases opened by the app.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
