package tui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/parleyhq/go-parley/internal/i18n"
	"github.com/parleyhq/go-parley/internal/parley"
	"github.com/parleyhq/go-parley/internal/tui/theme"
)

// Shared glamour renderer, recreated when the wrap width or the
// theme's markdown style changes.
var (
	sharedRenderer      *glamour.TermRenderer
	sharedRendererWidth int
	sharedRendererStyle string
)

func getRenderer(width int) *glamour.TermRenderer {
	style := theme.Current().GetMarkdown()
	if sharedRenderer == nil || sharedRendererWidth != width || sharedRendererStyle != style {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(style),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			sharedRenderer = r
			sharedRendererWidth = width
			sharedRendererStyle = style
		}
	}
	return sharedRenderer
}

// gutterWidth is the fixed left margin of a turn: the role-colored bar
// and one space.
const gutterWidth = 2

// minRenderWidth keeps rendering sane on absurdly narrow terminals.
const minRenderWidth = 20

// turnView is everything that determines one turn's rendered rows.
type turnView struct {
	Turn      *parley.Turn
	Width     int
	Slice     string // disclosure slice of the turn's content
	Truncated bool
	Total     int // full content length in bytes
	Revealed  int
	Streaming bool
	Expanding bool
	Selected  bool
	Spinner   string // current spinner frame, shown while streaming
}

// renderTurnLines renders one turn into terminal rows: a role header,
// the body, an optional disclosure footer, and a blank separator. The
// row count of the result is the turn's measured extent.
func renderTurnLines(v turnView) []string {
	width := v.Width
	if width < minRenderWidth {
		width = minRenderWidth
	}
	contentWidth := width - gutterWidth

	barColor := theme.Current().BarColor(string(v.Turn.Role))
	if v.Selected {
		barColor = theme.Current().GetAccent()
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(barColor)).Render("▌")

	lines := []string{bar + " " + renderTurnHeader(v)}

	for _, line := range renderTurnBody(v, contentWidth) {
		lines = append(lines, bar+" "+line)
	}

	if v.Truncated || v.Expanding {
		lines = append(lines, bar+" "+renderDiscloseFooter(v))
	}

	// Separator row between turns.
	lines = append(lines, "")
	return lines
}

// renderTurnHeader builds the role-labelled header row.
func renderTurnHeader(v turnView) string {
	label := roleLabelStyle(string(v.Turn.Role)).Render(roleName(v.Turn.Role))
	if v.Selected {
		label = selectionStyle.Render(roleName(v.Turn.Role))
	}
	header := label
	if v.Turn.Model != "" {
		header += viewerInfoStyle.Render(" · " + v.Turn.Model)
	}
	if !v.Turn.Timestamp.IsZero() {
		header += viewerHelpStyle.Render(" · " + v.Turn.Timestamp.Local().Format("15:04"))
	}
	if v.Streaming {
		header += " " + streamingStyle.Render(i18n.T("transcript.streaming", "streaming"))
		if v.Spinner != "" {
			header += " " + v.Spinner
		}
	}
	return header
}

// renderTurnBody renders the turn's text and any image blocks into
// wrapped rows at contentWidth.
func renderTurnBody(v turnView, contentWidth int) []string {
	var lines []string

	text := trimTornRune(v.Slice)
	if text != "" {
		rendered := text
		if v.Turn.Role == parley.RoleAssistant && !v.Streaming && !v.Truncated {
			// Settled, fully revealed assistant turns get markdown.
			// Partial slices and in-flight text render plain: glamour
			// on an unfinished document shifts layout on every delta.
			if r := getRenderer(contentWidth); r != nil {
				if md, err := r.Render(text); err == nil {
					rendered = strings.TrimRight(md, "\n")
					rendered = strings.TrimPrefix(rendered, "\n")
				}
			}
			lines = append(lines, strings.Split(rendered, "\n")...)
		} else {
			plain := lipgloss.NewStyle().Width(contentWidth).Render(text)
			lines = append(lines, strings.Split(plain, "\n")...)
		}
	}

	for _, b := range v.Turn.Blocks {
		if b.Type != "image" || b.MediaData == "" {
			continue
		}
		img := renderImageBlock(b.MediaType, b.MediaData, contentWidth)
		if img != "" {
			lines = append(lines, strings.Split(img, "\n")...)
		}
	}

	return lines
}

// renderDiscloseFooter builds the hidden-amount row under a truncated
// turn: "… 23,000/60,000 · 37,000 hidden".
func renderDiscloseFooter(v turnView) string {
	if v.Expanding {
		return disclosureStyle.Render(fmt.Sprintf("… %s/%s · %s",
			formatCount(v.Revealed), formatCount(v.Total),
			i18n.T("transcript.expanding", "expanding...")))
	}
	hidden := v.Total - v.Revealed
	return disclosureStyle.Render(fmt.Sprintf("… %s/%s · %s",
		formatCount(v.Revealed), formatCount(v.Total),
		i18n.Tf("transcript.hidden", "%s hidden", formatCount(hidden))))
}

// roleName returns the localized display name for a role.
func roleName(role parley.Role) string {
	switch role {
	case parley.RoleUser:
		return i18n.T("role.user", "You")
	case parley.RoleAssistant:
		return i18n.T("role.assistant", "Assistant")
	case parley.RoleTool:
		return i18n.T("role.tool", "Tool")
	default:
		return i18n.T("role.system", "System")
	}
}

// renderTurnFull renders a turn's complete content for the detail
// page, bypassing disclosure. Assistant turns get markdown.
func renderTurnFull(turn *parley.Turn, width int) string {
	if width < minRenderWidth {
		width = minRenderWidth
	}

	var parts []string
	text := turn.Content()
	if text != "" {
		if turn.Role == parley.RoleAssistant {
			if r := getRenderer(width); r != nil {
				if md, err := r.Render(text); err == nil {
					text = strings.TrimRight(md, "\n")
				}
			}
		} else {
			text = lipgloss.NewStyle().Width(width).Render(text)
		}
		parts = append(parts, text)
	}

	for _, b := range turn.Blocks {
		if b.Type != "image" || b.MediaData == "" {
			continue
		}
		if img := renderImageBlock(b.MediaType, b.MediaData, width); img != "" {
			parts = append(parts, img)
		}
	}

	return strings.Join(parts, "\n")
}
