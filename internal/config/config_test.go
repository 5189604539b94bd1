package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TOGGL_API_TOKEN", "TOGGL_WORKSPACE_ID", "TOGGL_PROJECT_ID", "TOGGL_BASE_URL",
		"TOGGL_CACHE_PATH", "TOGGL_CACHE_BACKEND", "TOGGL_CACHE_TTL", "MYSQL_DSN",
		"TOGGL_TZ", "TOGGL_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("TOGGL_EFFORTS_HOME", t.TempDir())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
toggl:
  api_key: abc
  workspace_id: 12
cache:
  backend: sqlite
  ttl_seconds: 60
timezone: UTC
use_notifier: true
log_level: debug
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Toggl.APIToken)
	assert.Equal(t, int64(12), cfg.Toggl.WorkspaceID)
	assert.Equal(t, "https://api.track.toggl.com", cfg.Toggl.BaseURL)
	assert.Equal(t, BackendSQLite, cfg.Cache.Backend)
	assert.Equal(t, "cache.db", filepath.Base(cfg.Cache.Path))
	assert.Equal(t, time.Minute, cfg.TTL())
	assert.True(t, cfg.UseNotifier)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("toggl:\n  api_key: from-file\n"), 0o600))
	t.Setenv("TOGGL_API_TOKEN", "from-env")
	t.Setenv("TOGGL_PROJECT_ID", "42")
	t.Setenv("TOGGL_CACHE_TTL", "10")
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/x")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Toggl.APIToken)
	assert.Equal(t, int64(42), cfg.Toggl.ProjectID)
	assert.Equal(t, 10*time.Second, cfg.TTL())
	assert.Equal(t, "u:p@tcp(db:3306)/x", cfg.MySQL.DSN)
	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, "cache.json", filepath.Base(cfg.Cache.Path))
}

func TestLoad_MissingFileAndToken(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.EqualError(t, err, "TOGGL_API_TOKEN is required")
	// Defaults are still returned so callers can report the problem.
	assert.Equal(t, 300*time.Second, cfg.TTL())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"workspace": {"TOGGL_WORKSPACE_ID": "nope"},
		"ttl":       {"TOGGL_CACHE_TTL": "soon"},
		"backend":   {"TOGGL_CACHE_BACKEND": "redis"},
		"timezone":  {"TOGGL_TZ": "Mars/Olympus"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TOGGL_API_TOKEN", "abc")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestFile_EditsInPlace(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("toggl:\n  api_key: abc\n  workspace_id: 3\nlog_level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	f := NewFile(path, &cfg)

	assert.False(t, f.NotifierEnabled())
	require.NoError(t, f.SetNotifier(true))
	assert.True(t, f.NotifierEnabled())

	require.NoError(t, f.ClearAPIKey())
	assert.Empty(t, f.APIKey())

	reloaded, err := Load(path)
	require.EqualError(t, err, "TOGGL_API_TOKEN is required")
	assert.True(t, reloaded.UseNotifier)
	assert.Equal(t, int64(3), reloaded.Toggl.WorkspaceID)
	assert.Equal(t, "debug", reloaded.LogLevel)
}

func TestFile_NoPath(t *testing.T) {
	cfg := Default()
	f := NewFile("", &cfg)
	require.Error(t, f.SetNotifier(true))
	assert.False(t, f.NotifierEnabled())
}

func TestFile_KeepsCommentsAndOrder(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `# my note
log_level: debug
toggl:
  api_key: abc # token
  workspace_id: 3
use_notifier: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	f := NewFile(path, &cfg)

	require.NoError(t, f.SetNotifier(true))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "# my note")
	assert.Contains(t, text, "api_key: abc # token")
	assert.Contains(t, text, "use_notifier: true")
	assert.NotContains(t, text, "use_notifier: false")
	assert.Less(t, strings.Index(text, "log_level"), strings.Index(text, "toggl:"))
	assert.Less(t, strings.Index(text, "toggl:"), strings.Index(text, "use_notifier"))

	require.NoError(t, f.ClearAPIKey())
	out, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "# my note")
	assert.NotContains(t, string(out), "api_key")
	assert.Contains(t, string(out), "workspace_id: 3")
}

func TestFile_CreatesMissingFile(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	f := NewFile(path, &cfg)

	require.NoError(t, f.SetNotifier(true))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "use_notifier: true\n", string(out))
}
