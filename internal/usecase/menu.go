package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"toggl-efforts/internal/domain"
	"toggl-efforts/internal/ports"
)

// ServiceURL is opened by the "Open toggl.com" command.
const ServiceURL = "https://track.toggl.com/timer"

// ErrorItems turns an error into something the user can read.
func ErrorItems(err error) []domain.Item {
	var (
		fe *domain.FetchError
		pe *domain.ParseError
	)
	switch {
	case errors.As(err, &fe):
		return []domain.Item{{Title: "Problem talking to toggl.com", Subtitle: fe.Err.Error()}}
	case errors.As(err, &pe):
		return []domain.Item{{Title: fmt.Sprintf("Could not understand %q", pe.Input), Subtitle: "9/8, 9/8/13, 2013-09-08T22:00:00-04:00, yesterday, monday, ..."}}
	default:
		return []domain.Item{{Title: "Something went wrong", Subtitle: err.Error()}}
	}
}

// StartPrompt offers to start a timer described by text.
func StartPrompt(text string) []domain.Item {
	desc := strings.TrimSpace(text)
	if desc == "" {
		return []domain.Item{{Title: "Waiting for description..."}}
	}
	return []domain.Item{{
		Title: fmt.Sprintf("Creating timer %q...", desc),
		Arg:   "start|" + desc,
		Valid: true,
	}}
}

// Menu lists help and the maintenance commands.
type Menu struct {
	Settings   ports.Settings
	ConfigPath string
	LogPath    string
	TTL        time.Duration
}

func (m *Menu) Help() []domain.Item {
	return []domain.Item{
		{Title: "Use '/' to list existing timers", Subtitle: "Type some text to filter the results"},
		{Title: "Use '//' to force a cache refresh", Subtitle: fmt.Sprintf("Data from Toggl is normally cached for %d seconds", int64(m.TTL/time.Second))},
		{Title: "Use '<' to list timers started since a time", Subtitle: "9/2, 9/2/13, 2013-09-02T22:00:00-04:00, ..."},
		{Title: "Use '@' to list time spent on a particular date", Subtitle: "9/2, 9/2/13, 2013-09-02T22:00:00-04:00, ..."},
		{Title: "Use '+' to start a new timer", Subtitle: "Type a description after the '+'"},
		{Title: "Use '>' to access other commands", Subtitle: "Enable menubar icon, go to toggl.com, ..."},
		{Title: "Select an existing timer to toggle it"},
	}
}

// Commands lists the maintenance commands, fuzzy-filtered by filter.
func (m *Menu) Commands(filter string) []domain.Item {
	items := []domain.Item{
		{Title: "Open toggl.com", Subtitle: "Open a browser tab for toggl.com", Arg: "open|" + ServiceURL, Valid: true},
	}
	if m.ConfigPath != "" {
		items = append(items, domain.Item{Title: "Open the config file", Subtitle: "Change options here, like the log level", Arg: "open|" + m.ConfigPath, Valid: true})
	}
	if m.LogPath != "" {
		items = append(items, domain.Item{Title: "Open the debug log", Subtitle: "See what happened during recent runs", Arg: "open|" + m.LogPath, Valid: true})
	}
	if m.Settings != nil && m.Settings.NotifierEnabled() {
		items = append(items, domain.Item{Title: "Disable the menubar notifier", Subtitle: "Exit and disable the menubar notifier", Arg: "disable_notifier", Valid: true})
	} else {
		items = append(items, domain.Item{Title: "Enable the menubar notifier", Subtitle: "Start and enable the menubar notifier", Arg: "enable_notifier", Valid: true})
	}
	items = append(items, domain.Item{Title: "Clear the cache", Subtitle: "Force a cache refresh on the next query", Arg: "force_refresh", Valid: true})
	if m.Settings != nil && m.Settings.APIKey() != "" {
		items = append(items, domain.Item{Title: "Forget your API key", Subtitle: "Forget your stored API key, allowing you to change it", Arg: "clear_key", Valid: true})
	}

	if f := strings.TrimSpace(filter); len([]rune(f)) > 1 {
		items = FilterItems(f, items)
	}
	if len(items) == 0 {
		items = append(items, domain.Item{Title: "Invalid command"})
	}
	return items
}
