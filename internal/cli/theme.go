// Package cli provides CLI output formatting utilities.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/parleyhq/go-parley/internal/tui/theme"
)

// ThemeDisplay handles theme visualization in the terminal.
type ThemeDisplay struct {
	w     io.Writer
	theme theme.Theme
}

// NewThemeDisplay creates a new theme display formatter.
func NewThemeDisplay(w io.Writer, t theme.Theme) *ThemeDisplay {
	return &ThemeDisplay{w: w, theme: t}
}

// themeEntry represents a single theme color entry for display.
type themeEntry struct {
	Name       string
	Color      string
	Category   string
	SampleText string
	IsBg       bool // true if this is a background color (needs contrasting fg)
	BgFg       string
}

// Show displays the current theme with styled samples.
func (d *ThemeDisplay) Show() error {
	t := d.theme

	entries := []themeEntry{
		// Accent colors
		{Name: "Accent", Color: t.GetAccent(), Category: "Accent", SampleText: "spinner, follow marker"},
		{Name: "BorderActive", Color: t.GetBorderActive(), Category: "Accent", SampleText: "▌Active Border"},
		{Name: "BorderInactive", Color: t.GetBorderInactive(), Category: "Accent", SampleText: "│ Inactive Border"},

		// Text colors
		{Name: "TextPrimary", Color: t.TextPrimary.Fg, Category: "Text", SampleText: "Primary Text"},
		{Name: "TextSecondary", Color: t.TextSecondary.Fg, Category: "Text", SampleText: "Secondary info text"},
		{Name: "TextMuted", Color: t.TextMuted.Fg, Category: "Text", SampleText: "Muted help text"},

		// Turn header labels
		{Name: "UserLabel", Color: t.UserLabel.Fg, Category: "Labels", SampleText: "You"},
		{Name: "AssistantLabel", Color: t.AssistantLabel.Fg, Category: "Labels", SampleText: "Assistant"},
		{Name: "SystemLabel", Color: t.SystemLabel.Fg, Category: "Labels", SampleText: "System"},
		{Name: "ToolLabel", Color: t.ToolLabel.Fg, Category: "Labels", SampleText: "Tool"},

		// Gutter bars
		{Name: "UserBar", Color: t.BarColor("user"), Category: "Bars", SampleText: "▌ user turn"},
		{Name: "AssistantBar", Color: t.BarColor("assistant"), Category: "Bars", SampleText: "▌ assistant turn"},
		{Name: "SystemBar", Color: t.BarColor("system"), Category: "Bars", SampleText: "▌ system turn"},
		{Name: "ToolBar", Color: t.BarColor("tool"), Category: "Bars", SampleText: "▌ tool turn"},

		// Status and indicators
		{Name: "Disclosure", Color: t.Disclosure.Fg, Category: "Status", SampleText: "20,000 hidden · o: more"},
		{Name: "Streaming", Color: t.Streaming.Fg, Category: "Status", SampleText: "streaming"},
		{Name: "StatusBar", Color: t.StatusBar.Fg, Category: "Status", SampleText: "42%  ·  3 turns"},
		{Name: "Selection", Color: t.Selection.Bg, Category: "Status", SampleText: " selected turn ", IsBg: true, BgFg: t.Selection.Fg},
	}

	fmt.Fprintf(d.w, "Active Theme: %s\n", theme.ActiveName())
	if t.Description != "" {
		fmt.Fprintf(d.w, "Description:  %s\n", t.Description)
	}
	if themesDir, err := theme.Dir(); err == nil {
		fmt.Fprintf(d.w, "Themes Dir:   %s\n", themesDir)
	}
	fmt.Fprintln(d.w)

	currentCategory := ""
	for _, entry := range entries {
		if entry.Category != currentCategory {
			if currentCategory != "" {
				fmt.Fprintln(d.w)
			}
			categoryStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.GetAccent()))
			fmt.Fprintf(d.w, "%s\n", categoryStyle.Render(entry.Category))
			fmt.Fprintf(d.w, "%s\n", strings.Repeat("─", len(entry.Category)+2))
			currentCategory = entry.Category
		}

		var sample string
		if entry.IsBg {
			fg := entry.BgFg
			if fg == "" {
				fg = "#ffffff"
			}
			style := lipgloss.NewStyle().
				Background(lipgloss.Color(entry.Color)).
				Foreground(lipgloss.Color(fg))
			sample = style.Render(entry.SampleText)
		} else {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(entry.Color))
			sample = style.Render(entry.SampleText)
		}

		nameStyle := lipgloss.NewStyle().Width(20)
		colorStyle := lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color(t.TextMuted.Fg))

		fmt.Fprintf(d.w, "  %s %s %s\n",
			nameStyle.Render(entry.Name),
			colorStyle.Render(entry.Color),
			sample,
		)
	}

	fmt.Fprintln(d.w)
	return nil
}

// ShowJSON displays the theme as JSON.
func (d *ThemeDisplay) ShowJSON() error {
	data, err := json.MarshalIndent(d.theme, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(d.w, "%s\n", data)
	return nil
}

// ListThemes displays all available themes.
func ListThemes(w io.Writer) error {
	themes, err := theme.ListAvailable()
	if err != nil {
		return err
	}

	activeName := theme.ActiveName()

	fmt.Fprintln(w, "Available Themes:")
	fmt.Fprintln(w)

	for _, t := range themes {
		marker := "  "
		if t.Name == activeName {
			marker = "* "
		}

		source := "built-in"
		if !t.Embedded {
			source = "user"
		}

		fmt.Fprintf(w, "%s%-12s  %-10s  %s\n", marker, t.Name, "("+source+")", t.Description)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Active theme marked with *\n")
	fmt.Fprintf(w, "Use 'parley themes set <name>' to change theme\n")

	return nil
}
