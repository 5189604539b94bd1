package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Duration is either Running or Stopped after a number of seconds.
type Duration struct {
	running bool
	seconds int64
}

// Running marks a timer that has not been stopped yet.
func Running() Duration { return Duration{running: true} }

// Stopped returns a finished duration. Negative input is treated as zero.
func Stopped(seconds int64) Duration {
	if seconds < 0 {
		seconds = 0
	}
	return Duration{seconds: seconds}
}

// DurationFromAPI maps the Toggl convention (negative means running) to a Duration.
func DurationFromAPI(sec int64) Duration {
	if sec < 0 {
		return Running()
	}
	return Stopped(sec)
}

func (d Duration) IsRunning() bool { return d.running }

// Seconds returns the stored duration; ok is false while running.
func (d Duration) Seconds() (sec int64, ok bool) {
	if d.running {
		return 0, false
	}
	return d.seconds, true
}

// TimeEntry represents a Toggl time entry in the domain.
type TimeEntry struct {
	ID          int64
	Description string
	ProjectID   *int64
	WorkspaceID *int64
	Tags        []string
	Start       time.Time
	Stop        *time.Time
	Duration    Duration
}

func (e TimeEntry) IsRunning() bool { return e.Duration.IsRunning() }

// StopAt returns when the entry ended. Running entries end at now.
func (e TimeEntry) StopAt(now time.Time) time.Time {
	if e.Duration.IsRunning() {
		return now
	}
	if e.Stop != nil {
		return *e.Stop
	}
	sec, _ := e.Duration.Seconds()
	return e.Start.Add(time.Duration(sec) * time.Second)
}

// entryJSON is the serialized form kept in cache snapshots. It mirrors the
// Toggl field names so a snapshot can be read back without translation.
type entryJSON struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	ProjectID   *int64     `json:"project_id,omitempty"`
	WorkspaceID *int64     `json:"workspace_id,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Start       *time.Time `json:"start"`
	Stop        *time.Time `json:"stop,omitempty"`
	Duration    *int64     `json:"duration"`
}

func (e TimeEntry) MarshalJSON() ([]byte, error) {
	dur := int64(-1)
	if sec, ok := e.Duration.Seconds(); ok {
		dur = sec
	}
	start := e.Start
	return json.Marshal(entryJSON{
		ID:          e.ID,
		Description: e.Description,
		ProjectID:   e.ProjectID,
		WorkspaceID: e.WorkspaceID,
		Tags:        e.Tags,
		Start:       &start,
		Stop:        e.Stop,
		Duration:    &dur,
	})
}

// UnmarshalJSON rejects records without a start or duration.
func (e *TimeEntry) UnmarshalJSON(b []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Start == nil || raw.Start.IsZero() {
		return fmt.Errorf("time entry %d: %w", raw.ID, errMissingStart)
	}
	if raw.Duration == nil {
		return fmt.Errorf("time entry %d: %w", raw.ID, errMissingDuration)
	}
	*e = TimeEntry{
		ID:          raw.ID,
		Description: raw.Description,
		ProjectID:   raw.ProjectID,
		WorkspaceID: raw.WorkspaceID,
		Tags:        raw.Tags,
		Start:       *raw.Start,
		Stop:        raw.Stop,
		Duration:    DurationFromAPI(*raw.Duration),
	}
	return nil
}

var (
	errMissingStart    = errors.New("missing start")
	errMissingDuration = errors.New("missing duration")
)
