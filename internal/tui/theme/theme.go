// Package theme provides theming support for the TUI.
package theme

import (
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/parleyhq/go-parley/internal/config"
)

//go:embed themes/*.json
var embeddedThemes embed.FS

// Style defines colors and text attributes for a UI element.
type Style struct {
	Fg        string `json:"fg,omitempty"`
	Bg        string `json:"bg,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// Theme defines all styles used in the TUI.
type Theme struct {
	// Metadata
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	// UI chrome
	Accent         string `json:"accent,omitempty"`          // Primary accent (active elements)
	BorderActive   string `json:"border_active,omitempty"`   // Active/focused borders
	BorderInactive string `json:"border_inactive,omitempty"` // Inactive borders

	// Markdown rendering style passed to glamour ("dark", "light", ...)
	Markdown string `json:"markdown,omitempty"`

	// Text styles (typically fg-only, on terminal default bg)
	TextPrimary   Style `json:"text_primary,omitempty"`
	TextSecondary Style `json:"text_secondary,omitempty"`
	TextMuted     Style `json:"text_muted,omitempty"`

	// Turn headers, one per role
	UserLabel      Style `json:"user_label,omitempty"`
	AssistantLabel Style `json:"assistant_label,omitempty"`
	SystemLabel    Style `json:"system_label,omitempty"`
	ToolLabel      Style `json:"tool_label,omitempty"`

	// Gutter bar colors, one per role
	UserBar      string `json:"user_bar,omitempty"`
	AssistantBar string `json:"assistant_bar,omitempty"`
	SystemBar    string `json:"system_bar,omitempty"`
	ToolBar      string `json:"tool_bar,omitempty"`

	// Status and indicators
	Disclosure Style `json:"disclosure,omitempty"` // hidden-amount footer under truncated turns
	Streaming  Style `json:"streaming,omitempty"`  // live/streaming indicator
	StatusBar  Style `json:"status_bar,omitempty"` // bottom status line
	Selection  Style `json:"selection,omitempty"`  // picker highlight
}

// Meta holds metadata about an available theme.
type Meta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`     // File path (empty for embedded)
	Embedded    bool   `json:"embedded"` // True if this is a built-in theme
}

// DefaultTheme returns the default dark theme (embedded fallback).
func DefaultTheme() Theme {
	theme, _ := LoadEmbedded("dark")
	return theme
}

// LoadEmbedded loads a theme from the embedded themes.
func LoadEmbedded(name string) (Theme, error) {
	data, err := embeddedThemes.ReadFile("themes/" + name + ".json")
	if err != nil {
		return Theme{}, err
	}

	var theme Theme
	if err := json.Unmarshal(data, &theme); err != nil {
		return Theme{}, err
	}

	return theme, nil
}

// ListEmbedded returns the names of all embedded themes.
func ListEmbedded() []string {
	entries, err := embeddedThemes.ReadDir("themes")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	return names
}

// Dir returns the path to the user themes directory.
func Dir() (string, error) {
	configDir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "themes"), nil
}

// ListAvailable returns all available themes (embedded + user themes).
func ListAvailable() ([]Meta, error) {
	var themes []Meta

	for _, name := range ListEmbedded() {
		theme, err := LoadEmbedded(name)
		if err != nil {
			continue
		}
		themes = append(themes, Meta{
			Name:        name,
			Description: theme.Description,
			Embedded:    true,
		})
	}

	// User themes from ~/.parley/themes/ shadow nothing in the list;
	// both appear, LoadByName prefers the user copy.
	themesDir, err := Dir()
	if err == nil {
		entries, err := os.ReadDir(themesDir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
					continue
				}

				name := strings.TrimSuffix(entry.Name(), ".json")
				path := filepath.Join(themesDir, entry.Name())

				description := "User theme"
				if data, err := os.ReadFile(path); err == nil {
					var t Theme
					if json.Unmarshal(data, &t) == nil && t.Description != "" {
						description = t.Description
					}
				}

				themes = append(themes, Meta{
					Name:        name,
					Description: description,
					Path:        path,
				})
			}
		}
	}

	return themes, nil
}

// LoadByName loads a theme by name, checking user themes first, then
// embedded. User theme files start from the default theme so missing
// fields keep working values.
func LoadByName(name string) (Theme, error) {
	themesDir, err := Dir()
	if err == nil {
		userPath := filepath.Join(themesDir, name+".json")
		if data, err := os.ReadFile(userPath); err == nil {
			theme := DefaultTheme()
			if err := json.Unmarshal(data, &theme); err == nil {
				theme.Name = name
				return theme, nil
			}
		}
	}

	return LoadEmbedded(name)
}

// Load loads the currently configured theme.
// Falls back to the embedded dark theme if anything fails.
func Load() (Theme, error) {
	cfg, err := config.Load()
	if err != nil {
		return DefaultTheme(), err
	}

	theme, err := LoadByName(cfg.Theme)
	if err != nil {
		return DefaultTheme(), err
	}

	return theme, nil
}

// Save writes a theme to the user themes directory.
func Save(name string, theme Theme) error {
	themesDir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(themesDir, 0755); err != nil {
		return err
	}

	theme.Name = name
	data, err := json.MarshalIndent(theme, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(themesDir, name+".json"), data, 0644)
}

// SetActive sets the active theme in the config.
func SetActive(name string) error {
	if _, err := LoadByName(name); err != nil {
		return err
	}

	cfg, _ := config.Load()
	cfg.Theme = name
	return config.Save(cfg)
}

// ActiveName returns the name of the currently active theme.
func ActiveName() string {
	cfg, _ := config.Load()
	return cfg.Theme
}

// current holds the loaded theme (initialized on first access).
var current *Theme

// Current returns the current theme, loading it if necessary.
func Current() Theme {
	if current == nil {
		theme, _ := Load()
		current = &theme
	}
	return *current
}

// Reload forces a reload of the theme from disk.
func Reload() (Theme, error) {
	theme, err := Load()
	if err != nil {
		return theme, err
	}
	current = &theme
	return theme, nil
}

// Use installs t as the current theme for this process only. It does
// not touch the config file; SetActive does that.
func Use(t Theme) {
	current = &t
}

// GetAccent returns the accent color, with fallback.
func (t Theme) GetAccent() string {
	if t.Accent != "" {
		return t.Accent
	}
	return "#7D56F4"
}

// GetBorderActive returns the active border color.
func (t Theme) GetBorderActive() string {
	if t.BorderActive != "" {
		return t.BorderActive
	}
	return t.GetAccent()
}

// GetBorderInactive returns the inactive border color.
func (t Theme) GetBorderInactive() string {
	if t.BorderInactive != "" {
		return t.BorderInactive
	}
	return "#444444"
}

// GetMarkdown returns the glamour style name for markdown rendering.
func (t Theme) GetMarkdown() string {
	if t.Markdown != "" {
		return t.Markdown
	}
	return "dark"
}

// BarColor returns the gutter bar color for a role label key.
func (t Theme) BarColor(role string) string {
	switch role {
	case "user":
		if t.UserBar != "" {
			return t.UserBar
		}
		return "#3B82F6"
	case "assistant":
		if t.AssistantBar != "" {
			return t.AssistantBar
		}
		return "#10B981"
	case "tool":
		if t.ToolBar != "" {
			return t.ToolBar
		}
		return "#F59E0B"
	default:
		if t.SystemBar != "" {
			return t.SystemBar
		}
		return "#6B7280"
	}
}
