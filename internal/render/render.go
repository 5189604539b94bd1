// Package render prints result items for a terminal or as JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"toggl-efforts/internal/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	runningStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	subtitleStyle = lipgloss.NewStyle().Faint(true).PaddingLeft(2)
	argStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(2)
)

// Text writes one block per item: title, subtitle and action token.
func Text(w io.Writer, items []domain.Item) error {
	for _, it := range items {
		style := titleStyle
		if it.Icon == domain.IconRunning {
			style = runningStyle
		}
		if _, err := fmt.Fprintln(w, style.Render(it.Title)); err != nil {
			return err
		}
		if it.Subtitle != "" {
			if _, err := fmt.Fprintln(w, subtitleStyle.Render(it.Subtitle)); err != nil {
				return err
			}
		}
		if it.Valid && it.Arg != "" {
			if _, err := fmt.Fprintln(w, argStyle.Render("-> "+it.Arg)); err != nil {
				return err
			}
		}
	}
	return nil
}

// JSON writes the items as {"items": [...]}.
func JSON(w io.Writer, items []domain.Item) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Items []domain.Item `json:"items"`
	}{Items: items})
}

// Status writes a single status line.
func Status(w io.Writer, status string, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
	_, err := fmt.Fprintln(w, titleStyle.Render(status))
	return err
}
