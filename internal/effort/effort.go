// Package effort groups time entries that share a description and totals
// their durations inside an optional window.
package effort

import (
	"fmt"
	"sort"
	"time"

	"toggl-efforts/internal/domain"
)

// Effort is recurring work on one description. Not to be confused with
// Toggl tasks.
type Effort struct {
	Description string
	// Entries is kept sorted by start time.
	Entries []domain.TimeEntry
	Seconds int64
	Window  domain.Window
}

// New returns an empty effort scoped to w.
func New(description string, w domain.Window) *Effort {
	return &Effort{Description: description, Window: w}
}

// Add appends entry and accumulates its clipped duration as of now.
func (e *Effort) Add(entry domain.TimeEntry, now time.Time) error {
	if entry.Description != e.Description {
		return fmt.Errorf("entry %d: description %q does not match effort %q",
			entry.ID, entry.Description, e.Description)
	}
	i := sort.Search(len(e.Entries), func(i int) bool {
		return e.Entries[i].Start.After(entry.Start)
	})
	e.Entries = append(e.Entries, domain.TimeEntry{})
	copy(e.Entries[i+1:], e.Entries[i:])
	e.Entries[i] = entry

	e.Seconds += Contribution(entry, e.Window, now)
	return nil
}

// Newest is the entry with the latest start. Panics on an empty effort.
func (e *Effort) Newest() domain.TimeEntry { return e.Entries[len(e.Entries)-1] }

// Oldest is the entry with the earliest start.
func (e *Effort) Oldest() domain.TimeEntry { return e.Entries[0] }

func (e *Effort) IsRunning() bool { return e.Newest().IsRunning() }

// Hours returns the accumulated time in hours.
func (e *Effort) Hours() Hours { return SecondsToHours(e.Seconds) }

// Contribution is the part of entry's duration that falls inside w, in
// whole seconds. Running entries count from their start to now regardless
// of w. Stopped entries lose the part before w.Start, and when they stop at
// or after w.End they lose stop-end-1s. The result stays within
// [0, own duration].
func Contribution(entry domain.TimeEntry, w domain.Window, now time.Time) int64 {
	sec, ok := entry.Duration.Seconds()
	if !ok {
		elapsed := int64(now.Sub(entry.Start) / time.Second)
		if elapsed < 0 {
			return 0
		}
		return elapsed
	}

	d := time.Duration(sec) * time.Second
	if w.HasStart() && entry.Start.Before(w.Start) {
		d -= w.Start.Sub(entry.Start)
	}
	if w.HasEnd() {
		if stop := entry.StopAt(now); !stop.Before(w.End) {
			d -= stop.Sub(w.End) - time.Second
		}
	}

	out := int64(d / time.Second)
	switch {
	case out < 0:
		return 0
	case out > sec:
		return sec
	}
	return out
}

// Overlaps reports whether entry intersects w. Running entries end at now.
func Overlaps(entry domain.TimeEntry, w domain.Window, now time.Time) bool {
	if !w.HasStart() {
		return true
	}
	stop := entry.StopAt(now)
	if w.HasEnd() {
		return entry.Start.Before(w.End) && stop.After(w.Start)
	}
	return stop.After(w.Start)
}
