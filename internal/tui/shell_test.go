package tui

import (
	"os"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/parleyhq/go-parley/internal/config"
	"github.com/parleyhq/go-parley/internal/parley"
)

type sizeProbeModel struct {
	lastWidth  int
	lastHeight int
	seenSize   bool
	msgCount   int
}

func (m *sizeProbeModel) Init() tea.Cmd { return nil }

func (m *sizeProbeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.msgCount++
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.lastWidth = ws.Width
		m.lastHeight = ws.Height
		m.seenSize = true
	}
	return m, nil
}

func (m *sizeProbeModel) View() tea.View {
	return tea.NewView("")
}

func runAllCmdMessages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, sub := range batch {
			out = append(out, runAllCmdMessages(sub)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestShellPopPageRebroadcastsFullWindowSize(t *testing.T) {
	revealed := &sizeProbeModel{}
	top := &sizeProbeModel{}

	s := &Shell{
		width:  120,
		height: 40,
		stack:  NewNavStack(),
	}
	s.stack.items = append(s.stack.items,
		NavItem{Title: "revealed", Model: revealed},
		NavItem{Title: "top", Model: top},
	)

	model, cmd := s.Update(PopPageMsg{})
	shell, ok := model.(*Shell)
	if !ok {
		t.Fatalf("expected *Shell model, got %T", model)
	}
	if len(shell.stack.items) != 1 {
		t.Fatalf("expected one page after pop, got %d", len(shell.stack.items))
	}

	msgs := runAllCmdMessages(cmd)
	if len(msgs) == 0 {
		t.Fatal("expected rebroadcast command message, got none")
	}

	var rawSize *tea.WindowSizeMsg
	for _, msg := range msgs {
		if ws, ok := msg.(tea.WindowSizeMsg); ok {
			copy := ws
			rawSize = &copy
		}
	}
	if rawSize == nil {
		t.Fatalf("expected a WindowSizeMsg in command batch, got %#v", msgs)
	}
	// The shell draws no chrome, so pages get the whole terminal.
	if rawSize.Width != 120 || rawSize.Height != 40 {
		t.Fatalf("expected full window size 120x40 from rebroadcast, got %dx%d", rawSize.Width, rawSize.Height)
	}

	for _, msg := range msgs {
		model, _ = shell.Update(msg)
		shell = model.(*Shell)
	}

	if !revealed.seenSize {
		t.Fatal("revealed page did not receive size update")
	}
	if revealed.lastWidth != 120 || revealed.lastHeight != 40 {
		t.Fatalf("expected revealed page size 120x40, got %dx%d", revealed.lastWidth, revealed.lastHeight)
	}
}

func TestShellPushPageInitializesWithSize(t *testing.T) {
	root := &sizeProbeModel{}
	pushed := &sizeProbeModel{}

	s := NewShell(NavItem{Title: "root", Model: root}, config.Default())
	model, _ := s.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	shell := model.(*Shell)

	model, cmd := shell.Update(PushPageMsg{Item: NavItem{Title: "pushed", Model: pushed}})
	shell = model.(*Shell)

	if len(shell.stack.items) != 2 {
		t.Fatalf("expected two pages after push, got %d", len(shell.stack.items))
	}

	for _, msg := range runAllCmdMessages(cmd) {
		model, _ = shell.Update(msg)
		shell = model.(*Shell)
	}
	if !pushed.seenSize {
		t.Fatal("pushed page did not receive a size message")
	}
	if pushed.lastWidth != 90 || pushed.lastHeight != 30 {
		t.Fatalf("expected pushed page size 90x30, got %dx%d", pushed.lastWidth, pushed.lastHeight)
	}
}

func TestShellQuitsWhenLastPagePops(t *testing.T) {
	s := NewShell(NavItem{Title: "only", Model: &sizeProbeModel{}}, config.Default())

	_, cmd := s.Update(PopPageMsg{})
	msgs := runAllCmdMessages(cmd)

	quit := false
	for _, msg := range msgs {
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
		}
	}
	if !quit {
		t.Fatalf("expected QuitMsg after popping the last page, got %#v", msgs)
	}
}

func TestShellPickerSelectionPushesTranscript(t *testing.T) {
	tests := []struct {
		name      string
		writerPID int
		wantMode  TranscriptMode
	}{
		{"finished transcript opens in view mode", 0, ModeView},
		{"live transcript opens in tail mode", os.Getpid(), ModeTail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShell(NavItem{Title: "picker", Model: &sizeProbeModel{}}, config.Default())
			model, _ := s.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
			shell := model.(*Shell)

			meta := parley.TranscriptMeta{
				Path:      "/tmp/transcripts/demo.jsonl",
				Title:     "Demo session",
				WriterPID: tt.writerPID,
			}
			model, _ = shell.Update(PickerResult{Selected: &meta})
			shell = model.(*Shell)

			if len(shell.stack.items) != 2 {
				t.Fatalf("expected transcript pushed on top of picker, got %d pages", len(shell.stack.items))
			}
			top, _ := shell.stack.Peek()
			page, ok := top.Model.(TranscriptPage)
			if !ok {
				t.Fatalf("top page is %T, want TranscriptPage", top.Model)
			}
			if page.path != meta.Path {
				t.Errorf("page path = %q, want %q", page.path, meta.Path)
			}
			if page.mode != tt.wantMode {
				t.Errorf("page mode = %d, want %d", page.mode, tt.wantMode)
			}
			if top.Title != "Demo session" {
				t.Errorf("nav title = %q, want %q", top.Title, "Demo session")
			}
		})
	}
}

func TestShellPickerCancelQuits(t *testing.T) {
	s := NewShell(NavItem{Title: "picker", Model: &sizeProbeModel{}}, config.Default())

	_, cmd := s.Update(PickerResult{Cancelled: true})
	msgs := runAllCmdMessages(cmd)

	quit := false
	for _, msg := range msgs {
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
		}
	}
	if !quit {
		t.Fatal("cancelling the root picker should quit")
	}
}

type probeNoteMsg struct{}

func TestShellBroadcastsNonKeyMessages(t *testing.T) {
	bottom := &sizeProbeModel{}
	top := &sizeProbeModel{}

	s := &Shell{width: 80, height: 24, stack: NewNavStack()}
	s.stack.items = append(s.stack.items,
		NavItem{Title: "bottom", Model: bottom},
		NavItem{Title: "top", Model: top},
	)

	model, _ := s.Update(probeNoteMsg{})
	shell := model.(*Shell)

	if bottom.msgCount != 1 {
		t.Errorf("covered page saw %d messages, want 1", bottom.msgCount)
	}
	if top.msgCount != 1 {
		t.Errorf("top page saw %d messages, want 1", top.msgCount)
	}
	if len(shell.stack.items) != 2 {
		t.Errorf("stack changed size: %d", len(shell.stack.items))
	}
}
