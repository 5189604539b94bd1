package desktop

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// NotifierApp is the AppleScript name of the menu bar companion.
const NotifierApp = "TogglNotifier"

// Notifier drives the menu bar app through osascript. On systems without
// osascript every call is logged and skipped.
type Notifier struct {
	log       *slog.Logger
	available bool
	run       func(ctx context.Context, script string) error
}

func NewNotifier(log *slog.Logger) *Notifier {
	return &Notifier{log: log, available: runtime.GOOS == "darwin", run: osascript}
}

func osascript(ctx context.Context, script string) error {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (n *Notifier) tell(ctx context.Context, command string) error {
	script := fmt.Sprintf("tell application %q to %s", NotifierApp, command)
	if !n.available {
		n.log.Debug("notifier unavailable", slog.String("script", script))
		return nil
	}
	n.log.Debug("notifier", slog.String("script", script))
	return n.run(ctx, script)
}

func (n *Notifier) Activate(ctx context.Context, apiKey string) error {
	if err := n.tell(ctx, "activate"); err != nil {
		return err
	}
	return n.tell(ctx, fmt.Sprintf("set api key to %q", apiKey))
}

func (n *Notifier) SetActiveTimer(ctx context.Context, id int64, description string) error {
	return n.tell(ctx, fmt.Sprintf("set active timer to %q", fmt.Sprintf("%d|%s", id, description)))
}

func (n *Notifier) Stopped(ctx context.Context) error { return n.tell(ctx, "be stopped") }

func (n *Notifier) Quit(ctx context.Context) error { return n.tell(ctx, "quit") }
