package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/parleyhq/go-parley/internal/i18n"
)

// viewerKeyMap defines key bindings for the transcript page. Arrow and
// page keys scroll by rows; j/k move the turn cursor.
type viewerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	PgUp   key.Binding
	PgDown key.Binding
	Home   key.Binding
	End    key.Binding
	Quit   key.Binding
	Back   key.Binding

	// Cursor movement and per-turn actions
	CursorUp   key.Binding
	CursorDown key.Binding
	Reveal     key.Binding
	RevealAll  key.Binding
	Collapse   key.Binding
	Detail     key.Binding
	Follow     key.Binding
}

// defaultViewerKeyMap returns the default key bindings for the
// transcript page.
func defaultViewerKeyMap() viewerKeyMap {
	return viewerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑/↓", i18n.T("help.scroll", "scroll")),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", i18n.T("help.scroll", "scroll")),
		),
		PgUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		PgDown: key.NewBinding(
			key.WithKeys("pgdown", " "),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", i18n.T("help.top", "top")),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", i18n.T("help.bottom", "bottom")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", i18n.T("help.quit", "quit")),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", i18n.T("help.back", "back")),
		),

		CursorUp: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("j/k", i18n.T("help.select", "select")),
		),
		CursorDown: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j", i18n.T("help.select", "select")),
		),
		Reveal: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", i18n.T("help.expand", "more")),
		),
		RevealAll: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", i18n.T("help.expandAll", "all")),
		),
		Collapse: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", i18n.T("help.collapse", "collapse")),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", i18n.T("help.detail", "detail")),
		),
		Follow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", i18n.T("help.follow", "follow")),
		),
	}
}

// pickerKeyMap defines key bindings for the transcript picker.
type pickerKeyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

func defaultPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", i18n.T("help.open", "open")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("esc", i18n.T("help.quit", "quit")),
		),
	}
}

// detailKeyMap defines key bindings for the turn detail page. Scrolling
// is handled by the viewport.
type detailKeyMap struct {
	Back key.Binding
	Quit key.Binding
}

func defaultDetailKeyMap() detailKeyMap {
	return detailKeyMap{
		Back: key.NewBinding(
			key.WithKeys("esc", "enter"),
			key.WithHelp("esc", i18n.T("help.back", "back")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", i18n.T("help.quit", "quit")),
		),
	}
}
