package tui

import (
	"sync"

	"charm.land/lipgloss/v2"

	"github.com/parleyhq/go-parley/internal/tui/theme"
)

// Styles holds all the computed lipgloss styles for the TUI.
type Styles struct {
	// Frame borders
	ActiveBorder   lipgloss.Style
	InactiveBorder lipgloss.Style

	// Status bar
	StatusBar lipgloss.Style

	// Turn header labels, one per role
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	ToolLabel      lipgloss.Style

	// Viewer chrome
	ViewerTitle lipgloss.Style
	ViewerInfo  lipgloss.Style
	ViewerHelp  lipgloss.Style

	// Indicators
	Disclosure lipgloss.Style
	Streaming  lipgloss.Style
	Selection  lipgloss.Style
}

var (
	stylesOnce sync.Once
	styles     Styles
)

// GetStyles returns the current styles, initializing from theme if needed.
func GetStyles() *Styles {
	stylesOnce.Do(func() {
		styles = buildStyles(theme.Current())
	})
	return &styles
}

// ReloadStyles re-reads the active theme from config and rebuilds styles.
func ReloadStyles() *Styles {
	theme.Reload()
	return RefreshStyles()
}

// RefreshStyles rebuilds styles from whatever theme is currently
// installed, without touching the config file. Callers that override
// the theme in-process (theme.Use) want this one.
func RefreshStyles() *Styles {
	styles = buildStyles(theme.Current())
	refreshStyleAccessors()
	return &styles
}

// applyStyle applies a theme.Style to a lipgloss.Style builder.
func applyStyle(s lipgloss.Style, ts theme.Style) lipgloss.Style {
	if ts.Fg != "" {
		s = s.Foreground(lipgloss.Color(ts.Fg))
	}
	if ts.Bg != "" {
		s = s.Background(lipgloss.Color(ts.Bg))
	}
	if ts.Bold {
		s = s.Bold(true)
	}
	if ts.Italic {
		s = s.Italic(true)
	}
	if ts.Underline {
		s = s.Underline(true)
	}
	return s
}

// buildStyles creates Styles from a Theme.
func buildStyles(t theme.Theme) Styles {
	return Styles{
		ActiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.GetBorderActive())),

		InactiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.GetBorderInactive())),

		StatusBar: applyStyle(lipgloss.NewStyle(), t.StatusBar).
			Padding(0, 1),

		UserLabel:      applyStyle(lipgloss.NewStyle(), t.UserLabel),
		AssistantLabel: applyStyle(lipgloss.NewStyle(), t.AssistantLabel),
		SystemLabel:    applyStyle(lipgloss.NewStyle(), t.SystemLabel),
		ToolLabel:      applyStyle(lipgloss.NewStyle(), t.ToolLabel),

		ViewerTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.TextPrimary.Fg)),

		ViewerInfo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.TextSecondary.Fg)),

		ViewerHelp: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.TextMuted.Fg)),

		Disclosure: applyStyle(lipgloss.NewStyle(), t.Disclosure),

		Streaming: applyStyle(lipgloss.NewStyle(), t.Streaming),

		Selection: applyStyle(lipgloss.NewStyle(), t.Selection).
			Bold(true),
	}
}

// Package-level style accessors used by the renderers.
// These are initialized on first access via GetStyles().
var (
	statusBarStyle = lipgloss.Style{}

	userLabel      = lipgloss.Style{}
	assistantLabel = lipgloss.Style{}
	systemLabel    = lipgloss.Style{}
	toolLabel      = lipgloss.Style{}

	viewerTitleStyle = lipgloss.Style{}
	viewerInfoStyle  = lipgloss.Style{}
	viewerHelpStyle  = lipgloss.Style{}

	disclosureStyle = lipgloss.Style{}
	streamingStyle  = lipgloss.Style{}
	selectionStyle  = lipgloss.Style{}
)

func refreshStyleAccessors() {
	statusBarStyle = styles.StatusBar

	userLabel = styles.UserLabel
	assistantLabel = styles.AssistantLabel
	systemLabel = styles.SystemLabel
	toolLabel = styles.ToolLabel

	viewerTitleStyle = styles.ViewerTitle
	viewerInfoStyle = styles.ViewerInfo
	viewerHelpStyle = styles.ViewerHelp

	disclosureStyle = styles.Disclosure
	streamingStyle = styles.Streaming
	selectionStyle = styles.Selection
}

func init() {
	GetStyles()
	refreshStyleAccessors()
}

// roleLabelStyle returns the label style for a role.
func roleLabelStyle(role string) lipgloss.Style {
	switch role {
	case "user":
		return userLabel
	case "assistant":
		return assistantLabel
	case "tool":
		return toolLabel
	default:
		return systemLabel
	}
}
