package tui

import (
	"context"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parleyhq/go-parley/internal/config"
	"github.com/parleyhq/go-parley/internal/i18n"
	"github.com/parleyhq/go-parley/internal/parley"
	"github.com/parleyhq/go-parley/internal/source"
	"github.com/parleyhq/go-parley/internal/tuilog"
)

// pickerItem wraps a transcript's metadata for the picker list.
type pickerItem struct {
	meta parley.TranscriptMeta
	live bool
}

func (i pickerItem) Title() string {
	if i.meta.Title != "" {
		return truncate(i.meta.Title, 70)
	}
	if i.meta.FirstPrompt != "" {
		return truncate(i.meta.FirstPrompt, 70)
	}
	return i18n.T("picker.untitled", "(untitled)")
}

func (i pickerItem) Description() string {
	var parts []string

	filename := filepath.Base(i.meta.Path)
	filename = strings.TrimSuffix(filename, ".jsonl")
	if len(filename) > 37 {
		filename = filename[:34] + "..."
	}
	parts = append(parts, filename)

	if !i.meta.ModifiedAt.IsZero() {
		parts = append(parts, i18n.RelativeTimeShort(i.meta.ModifiedAt))
	}
	if i.meta.SizeBytes > 0 {
		parts = append(parts, formatFileSize(i.meta.SizeBytes))
	}
	if i.meta.TurnCount > 0 {
		parts = append(parts, i18n.Tn("picker.turns", "{{.Count}} turn", "{{.Count}} turns", i.meta.TurnCount))
	}
	if i.live {
		parts = append(parts, streamingStyle.Render(i18n.T("picker.live", "live")))
	}

	return strings.Join(parts, "  •  ")
}

func (i pickerItem) FilterValue() string {
	return i.meta.Title + " " + i.meta.FirstPrompt + " " + filepath.Base(i.meta.Path)
}

// PickerPage lists the transcripts found in a directory, newest first.
// Selecting one emits a PickerResult for the shell to act on.
type PickerPage struct {
	dir  string
	cfg  config.Config
	list list.Model
	keys pickerKeyMap

	scanErr error
	scanned bool
	width   int
	height  int
	ready   bool
}

// NewPickerPage creates a picker over dir. The directory scan runs
// asynchronously from Init.
func NewPickerPage(dir string, cfg config.Config) PickerPage {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = i18n.T("picker.title", "Transcripts")
	l.SetShowStatusBar(true)
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)

	return PickerPage{
		dir:  dir,
		cfg:  cfg,
		list: l,
		keys: defaultPickerKeyMap(),
	}
}

func (m PickerPage) Init() tea.Cmd {
	dir := m.dir
	return func() tea.Msg {
		metas, err := source.Scan(context.Background(), dir)
		return TranscriptsScannedMsg{Metas: metas, Err: err}
	}
}

func (m PickerPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		m.ready = true
		return m, nil

	case TranscriptsScannedMsg:
		m.scanned = true
		if msg.Err != nil {
			m.scanErr = msg.Err
			tuilog.Log.Error("PickerPage: scan failed", "dir", m.dir, "error", msg.Err)
			return m, nil
		}
		items := make([]list.Item, len(msg.Metas))
		for i, meta := range msg.Metas {
			live := meta.WriterPID > 0 && source.WriterAlive(meta.WriterPID)
			items[i] = pickerItem{meta: meta, live: live}
		}
		tuilog.Log.Info("PickerPage: scanned", "dir", m.dir, "count", len(items))
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, func() tea.Msg { return PickerResult{Cancelled: true} }

		case key.Matches(msg, m.keys.Enter):
			if item := m.list.SelectedItem(); item != nil {
				if pi, ok := item.(pickerItem); ok {
					meta := pi.meta
					return m, func() tea.Msg { return PickerResult{Selected: &meta} }
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

var pickerStyle = lipgloss.NewStyle().Padding(1, 2)

func (m PickerPage) View() tea.View {
	if !m.ready {
		v := tea.NewView(i18n.T("transcript.loading", "Loading..."))
		v.AltScreen = true
		return v
	}

	if m.scanErr != nil {
		v := tea.NewView(pickerStyle.Render(
			viewerInfoStyle.Render(m.scanErr.Error()) + "\n\n" +
				viewerHelpStyle.Render("q: "+i18n.T("help.quit", "quit"))))
		v.AltScreen = true
		return v
	}

	if m.scanned && len(m.list.Items()) == 0 {
		empty := i18n.Tf("picker.empty", "No transcripts in %s", m.dir)
		v := tea.NewView(pickerStyle.Render(
			viewerInfoStyle.Render(empty) + "\n\n" +
				viewerHelpStyle.Render("q: "+i18n.T("help.quit", "quit"))))
		v.AltScreen = true
		return v
	}

	content := pickerStyle.Render(m.list.View())
	v := tea.NewView(content)
	v.AltScreen = true
	return v
}
