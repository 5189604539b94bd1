package toggl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"toggl-efforts/internal/domain"
)

// CreatedWith identifies this tool on entries it creates.
const CreatedWith = "toggl-efforts"

// Client implements ports.TogglClient using the Toggl Track API v9.
type Client struct {
	baseURL   string
	apiToken  string
	projectID int64
	http      *http.Client
	log       *slog.Logger
	now       func() time.Time

	wsMu      sync.Mutex
	workspace int64
}

// NewClient returns a client for the given token. A zero workspaceID is
// resolved from the account's default workspace on first use. A non-zero
// projectID is attached to new timers.
func NewClient(baseURL, apiToken string, workspaceID, projectID int64, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.track.toggl.com"
	}
	return &Client{
		baseURL:   baseURL,
		apiToken:  apiToken,
		workspace: workspaceID,
		projectID: projectID,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
		now: time.Now,
	}
}

// ListTimeEntries fetches the user's recent entries.
// Toggl v9: GET /api/v9/me/time_entries
func (c *Client) ListTimeEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	var raw []rawTimeEntry
	if err := c.do(ctx, http.MethodGet, "/api/v9/me/time_entries", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toDomain())
	}
	c.log.Debug("toggl listed time entries", slog.Int("count", len(out)))
	return out, nil
}

// StartTimeEntry creates a running entry.
// Toggl v9: POST /api/v9/workspaces/{wid}/time_entries with duration -1
func (c *Client) StartTimeEntry(ctx context.Context, description string) (domain.TimeEntry, error) {
	wid, err := c.workspaceID(ctx)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	body := startRequest{
		Description: description,
		Start:       c.now().UTC().Format(time.RFC3339),
		Duration:    -1,
		WorkspaceID: wid,
		CreatedWith: CreatedWith,
	}
	if c.projectID != 0 {
		pid := c.projectID
		body.ProjectID = &pid
	}
	var raw rawTimeEntry
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v9/workspaces/%d/time_entries", wid), body, &raw); err != nil {
		return domain.TimeEntry{}, err
	}
	c.log.Info("toggl started time entry", slog.Int64("id", raw.ID), slog.String("description", description))
	return raw.toDomain(), nil
}

// StopTimeEntry stops a running entry.
// Toggl v9: PATCH /api/v9/workspaces/{wid}/time_entries/{id}/stop
func (c *Client) StopTimeEntry(ctx context.Context, id int64) error {
	wid, err := c.workspaceID(ctx)
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v9/workspaces/%d/time_entries/%d/stop", wid, id), nil, nil); err != nil {
		return err
	}
	c.log.Info("toggl stopped time entry", slog.Int64("id", id))
	return nil
}

func (c *Client) workspaceID(ctx context.Context) (int64, error) {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	if c.workspace != 0 {
		return c.workspace, nil
	}
	var me rawMe
	if err := c.do(ctx, http.MethodGet, "/api/v9/me", nil, &me); err != nil {
		return 0, fmt.Errorf("resolve workspace: %w", err)
	}
	if me.DefaultWorkspaceID == 0 {
		return 0, errors.New("toggl: account has no default workspace")
	}
	c.workspace = me.DefaultWorkspaceID
	return c.workspace, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.apiToken == "" {
		return errors.New("missing api token")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u.Path = path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	// Basic auth: token:api_token
	auth := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", c.apiToken, "api_token")))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("toggl: unexpected status %d: %s", resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// rawTimeEntry mirrors the JSON from Toggl v9.
type rawTimeEntry struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	ProjectID   *int64     `json:"project_id"`
	WorkspaceID *int64     `json:"workspace_id"`
	Tags        []string   `json:"tags"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
	Duration    int64      `json:"duration"`
}

func (r rawTimeEntry) toDomain() domain.TimeEntry {
	e := domain.TimeEntry{
		ID:          r.ID,
		Description: r.Description,
		ProjectID:   r.ProjectID,
		WorkspaceID: r.WorkspaceID,
		Tags:        r.Tags,
		Start:       r.Start,
		Duration:    domain.DurationFromAPI(r.Duration),
	}
	if r.Stop != nil && !e.IsRunning() {
		stop := *r.Stop
		e.Stop = &stop
	}
	return e
}

type startRequest struct {
	Description string `json:"description"`
	Start       string `json:"start"`
	Duration    int64  `json:"duration"`
	WorkspaceID int64  `json:"workspace_id"`
	ProjectID   *int64 `json:"project_id,omitempty"`
	CreatedWith string `json:"created_with"`
}

type rawMe struct {
	DefaultWorkspaceID int64 `json:"default_workspace_id"`
}
