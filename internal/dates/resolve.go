// Package dates turns user text like "yesterday", "tue" or "9/8" into
// query windows.
package dates

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"toggl-efforts/internal/domain"
)

// Resolver resolves date text relative to Now in Loc.
type Resolver struct {
	Loc *time.Location
	Now func() time.Time
}

// NewResolver returns a resolver for loc using the wall clock.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{Loc: loc, Now: time.Now}
}

func (r *Resolver) now() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	loc := r.Loc
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func weekdayOf(text string) (time.Weekday, bool) {
	if len(text) < 3 {
		return 0, false
	}
	wd, ok := weekdays[text[:3]]
	return wd, ok
}

// lastWeekday is the most recent wd strictly before today.
func lastWeekday(today time.Time, wd time.Weekday) time.Time {
	back := (int(today.Weekday()) - int(wd) + 7) % 7
	if back == 0 {
		back = 7
	}
	return today.AddDate(0, 0, -back)
}

// NamedRange resolves "today", "yesterday", "this week" and weekday names.
// ok is false for anything else.
func (r *Resolver) NamedRange(text string) (w domain.Window, ok bool) {
	now := r.now()
	today := midnight(now)
	text = strings.ToLower(strings.TrimSpace(text))

	switch text {
	case "today":
		return domain.Window{Start: today, End: now}, true
	case "yesterday":
		return domain.Window{Start: today.AddDate(0, 0, -1), End: today}, true
	case "this week":
		back := (int(today.Weekday()) + 6) % 7
		return domain.Window{Start: today.AddDate(0, 0, -back), End: now}, true
	}
	if wd, ok := weekdayOf(text); ok {
		day := lastWeekday(today, wd)
		return domain.Window{Start: day, End: day.AddDate(0, 0, 1)}, true
	}
	return domain.Window{}, false
}

// ParseDate parses a literal date, date-time or time of day. A missing
// year is the current year and a bare time is today.
func (r *Resolver) ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, &domain.ParseError{Input: text, Err: errors.New("empty")}
	}
	now := r.now()
	loc := now.Location()
	if t, err := time.ParseInLocation("1/2", text, loc); err == nil {
		return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
	}
	if t, ok := parseClock(text); ok {
		y, m, d := now.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	t, err := dateparse.ParseIn(text, loc)
	if err != nil {
		return time.Time{}, &domain.ParseError{Input: text, Err: err}
	}
	if t.Year() == 0 {
		t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return t, nil
}

var clockLayouts = []string{"15:04", "15:04:05", "3pm", "3:04pm", "3 pm", "3:04 pm"}

// parseClock reads a bare time of day like "13:00" or "9am".
func parseClock(text string) (time.Time, bool) {
	text = strings.ToLower(text)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Since resolves an open window starting at text. Without an end it runs
// up to now.
func (r *Resolver) Since(text string) (domain.Window, error) {
	if w, ok := r.NamedRange(text); ok {
		return domain.Window{Start: w.Start}, nil
	}
	start, err := r.ParseDate(text)
	if err != nil {
		return domain.Window{}, err
	}
	return domain.Window{Start: start}, nil
}

// On resolves the span covered by text. A literal date covers that whole
// day, or up to now when it is today.
func (r *Resolver) On(text string) (domain.Window, error) {
	if w, ok := r.NamedRange(text); ok {
		return w, nil
	}
	start, err := r.ParseDate(text)
	if err != nil {
		return domain.Window{}, err
	}
	now := r.now()
	if start.Equal(midnight(now)) {
		return domain.Window{Start: start, End: now}, nil
	}
	return domain.Window{Start: start, End: start.AddDate(0, 0, 1)}, nil
}
