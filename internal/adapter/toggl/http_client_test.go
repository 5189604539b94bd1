package toggl

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestClient_ListTimeEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v9/me/time_entries", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "tok", user)
		assert.Equal(t, "api_token", pass)

		_, _ = io.WriteString(w, `[
			{"id": 1, "description": "writing", "start": "2025-08-04T09:00:00Z", "stop": "2025-08-04T10:00:00Z", "duration": 3600, "workspace_id": 7, "tags": ["a"]},
			{"id": 2, "description": "coding", "start": "2025-08-04T11:00:00Z", "stop": null, "duration": -1754305200}
		]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 7, 0, testLogger())
	entries, err := c.ListTimeEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "writing", entries[0].Description)
	assert.False(t, entries[0].IsRunning())
	sec, ok := entries[0].Duration.Seconds()
	assert.True(t, ok)
	assert.Equal(t, int64(3600), sec)
	require.NotNil(t, entries[0].Stop)
	require.NotNil(t, entries[0].WorkspaceID)
	assert.Equal(t, int64(7), *entries[0].WorkspaceID)
	assert.Equal(t, []string{"a"}, entries[0].Tags)

	assert.True(t, entries[1].IsRunning())
	assert.Nil(t, entries[1].Stop)
}

func TestClient_StartResolvesWorkspace(t *testing.T) {
	var meCalls atomic.Int32
	now := time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v9/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		_, _ = io.WriteString(w, `{"default_workspace_id": 99}`)
	})
	mux.HandleFunc("POST /api/v9/workspaces/99/time_entries", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "writing", body["description"])
		assert.Equal(t, "2025-08-04T09:00:00Z", body["start"])
		assert.EqualValues(t, -1, body["duration"])
		assert.EqualValues(t, 99, body["workspace_id"])
		assert.EqualValues(t, 5, body["project_id"])
		assert.Equal(t, CreatedWith, body["created_with"])

		_, _ = io.WriteString(w, `{"id": 11, "description": "writing", "start": "2025-08-04T09:00:00Z", "duration": -1754298000, "workspace_id": 99}`)
	})
	mux.HandleFunc("PATCH /api/v9/workspaces/99/time_entries/11/stop", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id": 11}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 0, 5, testLogger())
	c.now = func() time.Time { return now }

	entry, err := c.StartTimeEntry(context.Background(), "writing")
	require.NoError(t, err)
	assert.Equal(t, int64(11), entry.ID)
	assert.True(t, entry.IsRunning())

	require.NoError(t, c.StopTimeEntry(context.Background(), 11))
	assert.Equal(t, int32(1), meCalls.Load())
}

func TestClient_NoProjectOmitsField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, has := body["project_id"]
		assert.False(t, has)
		_, _ = io.WriteString(w, `{"id": 1, "start": "2025-08-04T09:00:00Z", "duration": -1}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 3, 0, testLogger())
	_, err := c.StartTimeEntry(context.Background(), "x")
	require.NoError(t, err)
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 0, 0, testLogger())
	_, err := c.ListTimeEntries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")

	_, err = c.StartTimeEntry(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve workspace")

	_, err = NewClient(srv.URL, "", 1, 0, testLogger()).ListTimeEntries(context.Background())
	require.EqualError(t, err, "missing api token")
}
