package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"toggl-efforts/internal/app"
	"toggl-efforts/internal/config"
	"toggl-efforts/internal/domain"
	"toggl-efforts/internal/render"
)

const usage = `usage: toggl-efforts [flags] <command> [args]

commands:
  list [filter]      list efforts ("/text" filters, "//" refreshes first)
  since <text>       efforts since a time (today, yesterday, this week, monday, 9/8, ...)
  on <text>          efforts during a day or span
  start <desc>       show the start prompt for a new timer
  do <token>         run an action token (start|desc, stop|id|desc, continue|id|desc, ...)
  help               list the query prefixes
  commands [filter]  list maintenance commands
  archive [status]   copy cached entries into MySQL, or list its migrations (needs MYSQL_DSN)
  serve              serve the same commands over HTTP

flags:
`

// needsToken lists the commands that talk to Toggl.
var needsToken = map[string]bool{
	"list": true, "since": true, "on": true, "do": true, "archive": true, "serve": true,
}

// fatalConfigError reports whether cmd cannot run with the config error err.
// A missing token only stops commands that talk to Toggl.
func fatalConfigError(cmd string, err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, config.ErrMissingToken) || needsToken[cmd]
}

func main() {
	os.Exit(run())
}

func run() int {
	// Flags
	configPath := flag.String("config", config.DefaultPath(), "Path to the YAML config file")
	asJSON := flag.Bool("json", false, "Print items as JSON")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	addr := flag.String("addr", ":8080", "Listen address for serve")
	force := flag.Bool("force", false, "Refetch from Toggl before archiving")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, cfgErr := config.Load(*configPath)

	// Logger
	level := cfg.Level()
	if *verbose {
		level = slog.LevelDebug
	}
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err == nil {
			defer f.Close()
			logOut = io.MultiWriter(os.Stderr, f)
		}
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return 2
	}
	cmd, rest := args[0], strings.Join(args[1:], " ")

	if fatalConfigError(cmd, cfgErr) {
		logger.Error("failed to load config", slog.String("error", cfgErr.Error()))
		writeItems([]domain.Item{{
			Title:    "First things first...",
			Subtitle: fmt.Sprintf("Set your Toggl API key (TOGGL_API_TOKEN or toggl.api_key in %s): %v", *configPath, cfgErr),
		}}, *asJSON)
		return 1
	}

	// Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// App
	settings := config.NewFile(*configPath, &cfg)
	application, err := app.New(ctx, logger, cfg, settings, app.Deps{})
	if err != nil {
		logger.Error("failed to initialize app", slog.String("error", err.Error()))
		return 1
	}
	defer application.Close()

	switch cmd {
	case "list":
		writeItems(application.List(ctx, rest), *asJSON)
	case "since":
		writeItems(application.Since(ctx, rest), *asJSON)
	case "on":
		writeItems(application.On(ctx, rest), *asJSON)
	case "start":
		writeItems(application.Start(rest), *asJSON)
	case "help":
		writeItems(application.Help(), *asJSON)
	case "commands":
		writeItems(application.Commands(rest), *asJSON)
	case "do":
		_ = render.Status(os.Stdout, application.Do(ctx, rest), *asJSON)
	case "archive":
		if rest == "status" {
			items, err := application.MigrationStatus(ctx)
			if err != nil {
				logger.Error("migration status failed", slog.String("error", err.Error()))
				return 1
			}
			writeItems(items, *asJSON)
			return 0
		}
		if err := application.Archive(ctx, *force); err != nil {
			logger.Error("archive failed", slog.String("error", err.Error()))
			return 1
		}
		logger.Info("archive completed")
	case "serve":
		serve(ctx, logger, application, *addr)
	default:
		_ = render.Status(os.Stdout, fmt.Sprintf("Unknown command %q", cmd), *asJSON)
		return 2
	}
	return 0
}

func writeItems(items []domain.Item, asJSON bool) {
	if asJSON {
		_ = render.JSON(os.Stdout, items)
		return
	}
	_ = render.Text(os.Stdout, items)
}

func serve(ctx context.Context, logger *slog.Logger, application *app.App, addr string) {
	srv := application.HTTPServer(addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()
	logger.Info("serving", slog.String("addr", addr))
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
}
