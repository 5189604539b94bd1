package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"toggl-efforts/internal/domain"
	"toggl-efforts/internal/effort"
	"toggl-efforts/internal/ports"
)

// DateFormat is used for the dates shown in titles and subtitles.
const DateFormat = "01/02"

// DateResolver turns user text into query windows.
type DateResolver interface {
	Since(text string) (domain.Window, error)
	On(text string) (domain.Window, error)
}

// QueryUseCase lists efforts as display items.
type QueryUseCase struct {
	Log     *slog.Logger
	Entries ports.EntrySource
	Dates   DateResolver
	Loc     *time.Location
	Now     func() time.Time
}

func (uc *QueryUseCase) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

func (uc *QueryUseCase) loc() *time.Location {
	if uc.Loc != nil {
		return uc.Loc
	}
	return time.Local
}

// Query lists efforts overlapping w. The first character of filter is the
// command prefix; any text after it fuzzy-filters the item titles.
func (uc *QueryUseCase) Query(ctx context.Context, filter string, w domain.Window) ([]domain.Item, error) {
	if uc.Entries == nil {
		return nil, errors.New("usecase not initialized: missing dependencies")
	}
	if uc.Log == nil {
		uc.Log = slog.Default()
	}
	uc.Log.Info("query",
		slog.String("filter", filter),
		slog.Time("start", w.Start),
		slog.Time("end", w.End))

	entries, err := uc.Entries.Entries(ctx, false)
	if err != nil {
		return nil, err
	}
	uc.Log.Debug("entries loaded", slog.Int("count", len(entries)))

	now := uc.now()
	efforts := effort.Aggregate(entries, w, now)
	uc.Log.Debug("efforts aggregated", slog.Int("count", len(efforts)))

	items := make([]domain.Item, 0, len(efforts)+1)
	if w.HasStart() {
		items = append(items, uc.summary(efforts, w))
	}
	for _, e := range efforts {
		items = append(items, uc.effortItem(e, w, now))
	}

	if text := []rune(strings.TrimSpace(filter)); len(text) > 1 {
		items = FilterItems(strings.TrimSpace(string(text[1:])), items)
	}
	if len(items) == 0 {
		items = append(items, domain.Item{Title: "Nothing found"})
	}
	return items, nil
}

func (uc *QueryUseCase) summary(efforts effort.Efforts, w domain.Window) domain.Item {
	if len(efforts) == 0 {
		return domain.Item{Title: "Nothing to report"}
	}
	hours := efforts.QuantizedHours()
	uc.Log.Debug("total hours", slog.Float64("hours", hours))
	date := w.Start.In(uc.loc()).Format(DateFormat)
	if w.HasEnd() {
		return domain.Item{Title: fmt.Sprintf("%s hours on %s", effort.FormatHours(hours), date)}
	}
	return domain.Item{Title: fmt.Sprintf("%s hours since %s", effort.FormatHours(hours), date)}
}

func (uc *QueryUseCase) effortItem(e *effort.Effort, w domain.Window, now time.Time) domain.Item {
	item := domain.Item{Title: e.Description, Valid: true}
	newest := e.Newest()

	if newest.IsRunning() {
		item.Icon = domain.IconRunning
		total := ""
		if e.Seconds > 0 {
			total = fmt.Sprintf(" (%s hours total)", e.Hours())
		}
		item.Subtitle = fmt.Sprintf("Running for %s%s", ApproximateTime(now.Sub(newest.Start), false), total)
		item.Arg = fmt.Sprintf("stop|%d|%s", newest.ID, e.Description)
		return item
	}

	if w.HasStart() {
		item.Subtitle = fmt.Sprintf("%s hours", e.Hours())
	} else {
		since := e.Oldest().Start.In(uc.loc()).Format(DateFormat)
		item.Subtitle = fmt.Sprintf("%s hours since %s", e.Hours(), since)
	}
	item.Arg = fmt.Sprintf("continue|%d|%s", newest.ID, e.Description)
	return item
}

// Since lists efforts from the time described by text up to now.
func (uc *QueryUseCase) Since(ctx context.Context, text string) ([]domain.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []domain.Item{{
			Title:    "Enter a start time",
			Subtitle: `This can be a time, date, datetime, "yesterday", "tuesday", ...`,
		}}, nil
	}
	w, err := uc.Dates.Since(text)
	if err != nil {
		return ErrorItems(err), nil
	}
	return uc.Query(ctx, "", w)
}

// On lists efforts within the span described by text.
func (uc *QueryUseCase) On(ctx context.Context, text string) ([]domain.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []domain.Item{{Title: "Enter a date", Subtitle: "9/8, yesterday, monday, ..."}}, nil
	}
	w, err := uc.Dates.On(text)
	if err != nil {
		return ErrorItems(err), nil
	}
	return uc.Query(ctx, "", w)
}
