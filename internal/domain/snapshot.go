package domain

import "time"

// Snapshot is the cached copy of the last fetched entries.
// FetchedAt is epoch seconds; 0 forces the next read to refetch.
type Snapshot struct {
	FetchedAt int64       `json:"time"`
	Entries   []TimeEntry `json:"time_entries"`
}

// Window scopes a query to [Start, End). A zero bound is absent.
// An End without a Start is ignored.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) HasStart() bool { return !w.Start.IsZero() }

func (w Window) HasEnd() bool { return w.HasStart() && !w.End.IsZero() }

// Item is one row of a result list.
type Item struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Arg      string `json:"arg,omitempty"`
	Valid    bool   `json:"valid"`
	Icon     string `json:"icon,omitempty"`
}

// IconRunning marks the item of an effort with a running timer.
const IconRunning = "running.png"
