package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"toggl-efforts/internal/domain"
)

// HTTPServer returns a configured http.Server exposing queries and actions.
// Call ListenAndServe on the returned server in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: loggingMiddleware(a.log, a.Handler())}
	a.log.Info("http server configured", slog.String("addr", addr))
	return srv
}

// Handler serves:
//
//	GET  /healthz
//	GET  /query?q=/text     efforts, optionally filtered
//	GET  /since?q=monday    efforts since a time
//	GET  /on?q=yesterday    efforts during a span
//	GET  /start?q=writing   start prompt
//	GET  /commands?q=text   maintenance commands
//	POST /action?token=...  run an action token
//	POST /archive?force=1   copy entries into MySQL
//	GET  /archive/status    archive migrations
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	items := func(fn func(ctx context.Context, q string) []domain.Item) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := withTimeout(r)
			defer cancel()
			writeJSON(w, http.StatusOK, map[string]any{"items": fn(ctx, r.URL.Query().Get("q"))})
		}
	}
	mux.HandleFunc("GET /query", items(a.List))
	mux.HandleFunc("GET /since", items(a.Since))
	mux.HandleFunc("GET /on", items(a.On))
	mux.HandleFunc("GET /start", items(func(_ context.Context, q string) []domain.Item { return a.Start(q) }))
	mux.HandleFunc("GET /commands", items(func(_ context.Context, q string) []domain.Item { return a.Commands(q) }))
	mux.HandleFunc("GET /help", items(func(context.Context, string) []domain.Item { return a.Help() }))

	mux.HandleFunc("POST /action", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"status": "missing token"})
			return
		}
		ctx, cancel := withTimeout(r)
		defer cancel()
		writeJSON(w, http.StatusOK, map[string]any{"status": a.Do(ctx, token)})
	})

	mux.HandleFunc("POST /archive", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := withTimeout(r)
		defer cancel()
		force := r.URL.Query().Get("force") != ""
		if err := a.Archive(ctx, force); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	mux.HandleFunc("GET /archive/status", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := withTimeout(r)
		defer cancel()
		items, err := a.MigrationStatus(ctx)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	})

	return mux
}

// withTimeout applies an optional ?timeout=5s override.
func withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	if tStr := r.URL.Query().Get("timeout"); tStr != "" {
		if d, err := time.ParseDuration(tStr); err == nil && d > 0 {
			return context.WithTimeout(r.Context(), d)
		}
	}
	return context.WithCancel(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
