package tui

import (
	"fmt"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parleyhq/go-parley/internal/i18n"
	"github.com/parleyhq/go-parley/internal/parley"
)

// DetailPage shows one turn in full: no windowing, no disclosure
// slicing, complete markdown and image rendering inside a viewport.
type DetailPage struct {
	turn  parley.Turn
	index int

	viewport viewport.Model
	keys     detailKeyMap
	width    int
	height   int
	ready    bool
}

// NewDetailPage creates a detail page for the given turn. index is the
// turn's position in its transcript, used for the title.
func NewDetailPage(turn parley.Turn, index int) DetailPage {
	return DetailPage{
		turn:     turn,
		index:    index,
		viewport: viewport.New(),
		keys:     defaultDetailKeyMap(),
	}
}

func (p DetailPage) Init() tea.Cmd { return nil }

func (p DetailPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.viewport.SetWidth(msg.Width)
		vh := msg.Height - 2
		if vh < 1 {
			vh = 1
		}
		p.viewport.SetHeight(vh)
		p.viewport.SetContent(renderTurnFull(&p.turn, msg.Width))
		p.viewport.GotoTop()
		p.ready = true
		return p, kittyTransmitCmd(globalImageTracker.drainPending())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			return p, tea.Quit
		case key.Matches(msg, p.keys.Back):
			return p, func() tea.Msg { return PopPageMsg{} }
		}
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p DetailPage) View() tea.View {
	if !p.ready {
		v := tea.NewView("")
		v.AltScreen = true
		return v
	}

	title := viewerTitleStyle.Render(i18n.Tf("detail.title", "Turn %d", p.index+1))
	info := viewerInfoStyle.Render("  " + roleName(p.turn.Role))
	header := title + info

	position := viewerInfoStyle.Render(fmt.Sprintf("%3.0f%%", p.viewport.ScrollPercent()*100))
	help := viewerHelpStyle.Render("↑/↓: " + i18n.T("help.scroll", "scroll") +
		" • esc: " + i18n.T("help.back", "back") +
		" • q: " + i18n.T("help.quit", "quit"))
	footerWidth := p.width - lipgloss.Width(position) - 4
	if footerWidth < 0 {
		footerWidth = 0
	}
	footer := help + lipgloss.NewStyle().Width(footerWidth).Align(lipgloss.Right).Render(position)

	v := tea.NewView(header + "\n" + p.viewport.View() + "\n" + footer)
	v.AltScreen = true
	return v
}
