package tui

import (
	"path/filepath"

	tea "charm.land/bubbletea/v2"

	"github.com/parleyhq/go-parley/internal/config"
	"github.com/parleyhq/go-parley/internal/i18n"
	"github.com/parleyhq/go-parley/internal/source"
	"github.com/parleyhq/go-parley/internal/tuilog"
)

// NavItem represents a page in the navigation stack
type NavItem struct {
	Title string
	Model tea.Model
}

// NavStack manages navigation history
type NavStack struct {
	items []NavItem
}

func NewNavStack() *NavStack {
	return &NavStack{items: make([]NavItem, 0)}
}

func (ns *NavStack) Push(item NavItem, width, height int) tea.Cmd {
	ns.items = append(ns.items, item)
	initCmd := item.Model.Init()
	// Send current window size to the new model so it can initialize its layout
	if width > 0 && height > 0 {
		sizeCmd := func() tea.Msg {
			return tea.WindowSizeMsg{Width: width, Height: height}
		}
		return tea.Batch(initCmd, sizeCmd)
	}
	return initCmd
}

func (ns *NavStack) Pop() {
	if len(ns.items) > 0 {
		ns.items = ns.items[:len(ns.items)-1]
	}
}

func (ns *NavStack) Peek() (NavItem, bool) {
	if len(ns.items) == 0 {
		return NavItem{}, false
	}
	return ns.items[len(ns.items)-1], true
}

func (ns *NavStack) IsEmpty() bool {
	return len(ns.items) == 0
}

func (ns *NavStack) Path() []string {
	path := make([]string, len(ns.items))
	for i, item := range ns.items {
		path[i] = item.Title
	}
	return path
}

// Navigation messages
type PushPageMsg struct {
	Item NavItem
}

type PopPageMsg struct{}

// Shell is the main TUI container with navigation. It draws no chrome
// of its own, so every page gets the full terminal size.
type Shell struct {
	width  int
	height int
	stack  *NavStack
	cfg    config.Config
}

// NewShell creates a shell rooted at the given page.
func NewShell(root NavItem, cfg config.Config) *Shell {
	s := &Shell{
		stack: NewNavStack(),
		cfg:   cfg,
	}
	s.stack.items = append(s.stack.items, root)
	return s
}

// NewPickerShell creates a shell rooted at the transcript picker over
// dir. Selecting a transcript pushes a viewer; cancelling the picker
// exits the program.
func NewPickerShell(dir string, cfg config.Config) *Shell {
	return NewShell(NavItem{
		Title: i18n.T("picker.title", "Transcripts"),
		Model: NewPickerPage(dir, cfg),
	}, cfg)
}

func (s *Shell) Init() tea.Cmd {
	tuilog.Log.Info("Shell.Init: starting")
	if current, ok := s.stack.Peek(); ok {
		return current.Model.Init()
	}
	return nil
}

func (s *Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case PickerResult:
		tuilog.Log.Info("Shell.Update: PickerResult received", "cancelled", msg.Cancelled, "hasSelection", msg.Selected != nil)
		if msg.Cancelled {
			s.stack.Pop()
			if s.stack.IsEmpty() {
				return s, tea.Quit
			}
			// Send WindowSizeMsg to the revealed page so it re-renders
			if s.width > 0 && s.height > 0 {
				cmds = append(cmds, func() tea.Msg {
					return tea.WindowSizeMsg{Width: s.width, Height: s.height}
				})
			}
			return s, tea.Batch(cmds...)
		}
		if msg.Selected != nil {
			meta := *msg.Selected
			mode := ModeView
			if meta.WriterPID > 0 && source.WriterAlive(meta.WriterPID) {
				mode = ModeTail
			}
			title := meta.Title
			if title == "" {
				title = filepath.Base(meta.Path)
			}
			tuilog.Log.Info("Shell.Update: transcript selected", "path", meta.Path, "mode", int(mode))
			page := NewTranscriptPage(meta.Path, mode, s.cfg)
			cmd := s.stack.Push(NavItem{
				Title: truncate(title, 40),
				Model: page,
			}, s.width, s.height)
			cmds = append(cmds, cmd)
		}

	case PushPageMsg:
		tuilog.Log.Info("Shell.Update: PushPageMsg received", "title", msg.Item.Title)
		cmd := s.stack.Push(msg.Item, s.width, s.height)
		cmds = append(cmds, cmd)

	case PopPageMsg:
		tuilog.Log.Info("Shell.Update: PopPageMsg received")
		s.stack.Pop()
		if s.stack.IsEmpty() {
			tuilog.Log.Info("Shell.Update: stack empty, quitting")
			return s, tea.Quit
		}
		// Send WindowSizeMsg to the revealed page so it re-renders
		if s.width > 0 && s.height > 0 {
			cmds = append(cmds, func() tea.Msg {
				return tea.WindowSizeMsg{Width: s.width, Height: s.height}
			})
		}
	}

	// Key input goes to the focused page only. Everything else reaches
	// the whole stack, so a transcript that is still streaming keeps
	// consuming its events while a detail page covers it.
	if _, isKey := msg.(tea.KeyMsg); isKey {
		if current, ok := s.stack.Peek(); ok {
			newModel, cmd := current.Model.Update(msg)
			current.Model = newModel
			s.stack.items[len(s.stack.items)-1] = current
			cmds = append(cmds, cmd)
		}
	} else {
		for i := range s.stack.items {
			newModel, cmd := s.stack.items[i].Model.Update(msg)
			s.stack.items[i].Model = newModel
			cmds = append(cmds, cmd)
		}
	}

	return s, tea.Batch(cmds...)
}

func (s *Shell) View() tea.View {
	if s.stack.IsEmpty() {
		v := tea.NewView("")
		v.AltScreen = true
		return v
	}

	current, _ := s.stack.Peek()
	return current.Model.View()
}
