package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"toggl-efforts/internal/domain"
	"toggl-efforts/internal/ports"
)

// Dispatcher runs action tokens of the form verb|arg1|arg2.
type Dispatcher struct {
	Log      *slog.Logger
	Toggl    ports.TogglClient
	Cache    ports.Cache
	Settings ports.Settings
	// Notifier and Opener are optional.
	Notifier ports.Notifier
	Opener   ports.Opener
}

// Do runs token and returns a status line for the user. The status is
// meaningful even when err is non-nil.
func (d *Dispatcher) Do(ctx context.Context, token string) (string, error) {
	if d.Toggl == nil || d.Cache == nil {
		return "Not configured", errors.New("dispatcher not initialized: missing dependencies")
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	d.Log.Info("action", slog.String("token", token))

	verb, rest, _ := strings.Cut(token, "|")
	switch verb {
	case "start":
		desc := strings.TrimSpace(rest)
		if desc == "" {
			return "Missing description", &domain.ValidationError{Token: token, Reason: "missing description"}
		}
		return d.start(ctx, desc, "Started")

	case "continue":
		_, desc, ok := splitIDDesc(rest)
		if !ok || desc == "" {
			return "Missing description", &domain.ValidationError{Token: token, Reason: "expected continue|<id>|<description>"}
		}
		// Toggl always creates a fresh entry, so the old id is not used.
		return d.start(ctx, desc, "Continued")

	case "stop":
		id, desc, ok := splitIDDesc(rest)
		if !ok {
			return "Missing timer id", &domain.ValidationError{Token: token, Reason: "expected stop|<id>|<description>"}
		}
		return d.stop(ctx, id, desc)

	case "force_refresh":
		if err := d.Cache.Drop(ctx); err != nil {
			return "Could not clear the cache", err
		}
		return "Cache cleared", nil

	case "enable_notifier":
		if err := d.setNotifier(true); err != nil {
			return "Could not enable the notifier", err
		}
		if d.Notifier != nil {
			if err := d.Notifier.Activate(ctx, d.Settings.APIKey()); err != nil {
				d.Log.Warn("notifier activate failed", slog.String("error", err.Error()))
			}
		}
		return "Notifier enabled", nil

	case "disable_notifier":
		if err := d.setNotifier(false); err != nil {
			return "Could not disable the notifier", err
		}
		d.quitNotifier(ctx)
		return "Notifier disabled", nil

	case "clear_key":
		if d.Settings == nil {
			return "Could not clear API key", errors.New("no settings store")
		}
		if err := d.Settings.ClearAPIKey(); err != nil {
			return "Could not clear API key", err
		}
		d.quitNotifier(ctx)
		return "Cleared API key", nil

	case "open":
		if rest == "" {
			return "Nothing to open", &domain.ValidationError{Token: token, Reason: "missing target"}
		}
		if d.Opener == nil {
			return "Cannot open " + rest, errors.New("no opener configured")
		}
		if err := d.Opener.Open(rest); err != nil {
			return "Cannot open " + rest, err
		}
		return "Opened " + rest, nil
	}

	return fmt.Sprintf("Unknown command %q", verb), &domain.ValidationError{Token: token, Reason: "unknown command"}
}

// splitIDDesc parses "<id>|<description>". The description keeps any
// further pipes.
func splitIDDesc(rest string) (int64, string, bool) {
	idStr, desc, _ := strings.Cut(rest, "|")
	id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, desc, true
}

func (d *Dispatcher) start(ctx context.Context, desc, verb string) (string, error) {
	entry, err := d.Toggl.StartTimeEntry(ctx, desc)
	if err != nil {
		return "Problem talking to toggl.com", &domain.FetchError{Op: "start time entry", Err: err}
	}
	d.invalidate(ctx)
	if d.notifierOn() {
		if err := d.Notifier.SetActiveTimer(ctx, entry.ID, desc); err != nil {
			d.Log.Warn("notifier update failed", slog.String("error", err.Error()))
		}
	}
	return fmt.Sprintf("%s %s", verb, desc), nil
}

func (d *Dispatcher) stop(ctx context.Context, id int64, desc string) (string, error) {
	if err := d.Toggl.StopTimeEntry(ctx, id); err != nil {
		return "Problem talking to toggl.com", &domain.FetchError{Op: "stop time entry", Err: err}
	}
	d.invalidate(ctx)
	if d.notifierOn() {
		if err := d.Notifier.Stopped(ctx); err != nil {
			d.Log.Warn("notifier update failed", slog.String("error", err.Error()))
		}
	}
	return "Stopped " + desc, nil
}

// invalidate forces the next query to observe the mutation.
func (d *Dispatcher) invalidate(ctx context.Context) {
	if err := d.Cache.Invalidate(ctx); err != nil {
		d.Log.Error("cache invalidate failed", slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) notifierOn() bool {
	return d.Notifier != nil && d.Settings != nil && d.Settings.NotifierEnabled()
}

func (d *Dispatcher) setNotifier(on bool) error {
	if d.Settings == nil {
		return errors.New("no settings store")
	}
	return d.Settings.SetNotifier(on)
}

func (d *Dispatcher) quitNotifier(ctx context.Context) {
	if d.Notifier == nil {
		return
	}
	if err := d.Notifier.Quit(ctx); err != nil {
		d.Log.Warn("notifier quit failed", slog.String("error", err.Error()))
	}
}
