package tui

import (
	"errors"
	"os"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/parleyhq/go-parley/internal/config"
	"github.com/parleyhq/go-parley/internal/parley"
)

func TestPickerItemTitle(t *testing.T) {
	tests := []struct {
		name string
		meta parley.TranscriptMeta
		want string
	}{
		{
			name: "explicit title wins",
			meta: parley.TranscriptMeta{Title: "Debugging the parser", FirstPrompt: "help me"},
			want: "Debugging the parser",
		},
		{
			name: "falls back to first prompt",
			meta: parley.TranscriptMeta{FirstPrompt: "help me debug this"},
			want: "help me debug this",
		},
		{
			name: "untitled when nothing is known",
			meta: parley.TranscriptMeta{Path: "/tmp/abc.jsonl"},
			want: "(untitled)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := pickerItem{meta: tt.meta}
			if got := item.Title(); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("long title is truncated", func(t *testing.T) {
		item := pickerItem{meta: parley.TranscriptMeta{Title: strings.Repeat("x", 90)}}
		got := item.Title()
		if len(got) > 70 {
			t.Errorf("Title() length = %d, want <= 70", len(got))
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("Title() = %q, want ... suffix", got)
		}
	})
}

func TestPickerItemDescription(t *testing.T) {
	item := pickerItem{meta: parley.TranscriptMeta{
		Path:      "/home/u/.parley/transcripts/session-2026.jsonl",
		SizeBytes: 2048,
		TurnCount: 3,
	}}

	desc := item.Description()
	if !strings.Contains(desc, "session-2026") {
		t.Errorf("description %q missing filename", desc)
	}
	if strings.Contains(desc, ".jsonl") {
		t.Errorf("description %q should strip the extension", desc)
	}
	if !strings.Contains(desc, "2.0 KB") {
		t.Errorf("description %q missing size", desc)
	}
	if !strings.Contains(desc, "3 turns") {
		t.Errorf("description %q missing turn count", desc)
	}
	if strings.Contains(desc, "live") {
		t.Errorf("description %q marks a finished transcript live", desc)
	}

	t.Run("live marker", func(t *testing.T) {
		live := pickerItem{meta: parley.TranscriptMeta{Path: "/t/a.jsonl"}, live: true}
		if !strings.Contains(live.Description(), "live") {
			t.Errorf("description %q missing live marker", live.Description())
		}
	})

	t.Run("long filename is shortened", func(t *testing.T) {
		item := pickerItem{meta: parley.TranscriptMeta{
			Path: "/t/" + strings.Repeat("a", 50) + ".jsonl",
		}}
		desc := item.Description()
		if !strings.Contains(desc, strings.Repeat("a", 34)+"...") {
			t.Errorf("description %q should shorten the filename", desc)
		}
	})
}

func TestPickerItemFilterValue(t *testing.T) {
	item := pickerItem{meta: parley.TranscriptMeta{
		Path:        "/t/session-9.jsonl",
		Title:       "Build pipeline",
		FirstPrompt: "why does the build fail",
	}}
	fv := item.FilterValue()
	for _, want := range []string{"Build pipeline", "why does the build fail", "session-9.jsonl"} {
		if !strings.Contains(fv, want) {
			t.Errorf("FilterValue() = %q, missing %q", fv, want)
		}
	}
}

func TestPickerPageScannedMsg(t *testing.T) {
	page := NewPickerPage("/tmp/transcripts", config.Default())

	model, _ := page.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	page = model.(PickerPage)

	metas := []parley.TranscriptMeta{
		{Path: "/t/one.jsonl", Title: "First", TurnCount: 2},
		{Path: "/t/two.jsonl", Title: "Second", TurnCount: 5, WriterPID: os.Getpid()},
	}
	model, _ = page.Update(TranscriptsScannedMsg{Metas: metas})
	page = model.(PickerPage)

	if !page.scanned {
		t.Error("page not marked scanned")
	}
	items := page.list.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	first, ok := items[0].(pickerItem)
	if !ok {
		t.Fatalf("item 0 is %T, want pickerItem", items[0])
	}
	if first.meta.Title != "First" {
		t.Errorf("item 0 title = %q, want %q", first.meta.Title, "First")
	}
	second := items[1].(pickerItem)
	if !second.live {
		t.Error("transcript with a live writer PID not marked live")
	}
	if first.live {
		t.Error("transcript without a writer PID marked live")
	}
}

func TestPickerPageScanError(t *testing.T) {
	page := NewPickerPage("/nope", config.Default())

	model, _ := page.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	page = model.(PickerPage)

	model, _ = page.Update(TranscriptsScannedMsg{Err: errors.New("permission denied")})
	page = model.(PickerPage)

	if page.scanErr == nil {
		t.Fatal("scanErr not recorded")
	}
	if !page.scanned {
		t.Error("page not marked scanned after a failed scan")
	}
	if got := len(page.list.Items()); got != 0 {
		t.Errorf("got %d items after a failed scan, want 0", got)
	}
}
