package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parleyhq/go-parley/internal/parley"
)

func appendLines(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func recvEvent(t *testing.T, ctx context.Context, ch <-chan Event) Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		if !ok {
			t.Fatal("stream closed early")
		}
		return e
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestTail_NewTurns(t *testing.T) {
	path := writeTranscript(t, `{"type":"turn","id":"u1","role":"user","text":"initial"}
`)
	res, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := Tail(ctx, path, res.Offset)
	if err != nil {
		t.Fatal(err)
	}

	// Give watcher time to start
	time.Sleep(200 * time.Millisecond)

	appendLines(t, path, `{"type":"turn","id":"a1","role":"assistant","text":"new"}
`)

	e := recvEvent(t, ctx, ch)
	if e.Kind != EventTurn {
		t.Fatalf("Kind = %v, want EventTurn", e.Kind)
	}
	if e.Turn.ID != "a1" || e.Turn.Text != "new" {
		t.Errorf("got turn %s %q", e.Turn.ID, e.Turn.Text)
	}
}

func TestTail_ResumesFromOffset(t *testing.T) {
	// Two turns exist before the tail starts; a tail from offset zero
	// must deliver both without any file activity.
	path := writeTranscript(t, `{"type":"turn","id":"u1","role":"user","text":"one"}
{"type":"turn","id":"a1","role":"assistant","text":"two"}
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := Tail(ctx, path, 0)
	if err != nil {
		t.Fatal(err)
	}

	first := recvEvent(t, ctx, ch)
	second := recvEvent(t, ctx, ch)
	if first.Turn.ID != "u1" || second.Turn.ID != "a1" {
		t.Errorf("got %s, %s; want u1, a1", first.Turn.ID, second.Turn.ID)
	}
}

func TestTail_StreamedDeltas(t *testing.T) {
	path := writeTranscript(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := Tail(ctx, path, 0)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	appendLines(t, path, `{"type":"begin","id":"a1","role":"assistant"}
{"type":"delta","id":"a1","text":"Hel"}
{"type":"delta","id":"a1","text":"lo"}
{"type":"end","id":"a1"}
`)

	kinds := []EventKind{EventBegin, EventDelta, EventDelta, EventEnd}
	var text string
	for i, want := range kinds {
		e := recvEvent(t, ctx, ch)
		if e.Kind != want {
			t.Fatalf("event %d: Kind = %v, want %v", i, e.Kind, want)
		}
		if e.Kind == EventDelta {
			if e.ID != "a1" {
				t.Errorf("delta ID = %q, want a1", e.ID)
			}
			text += e.Text
		}
	}
	if text != "Hello" {
		t.Errorf("assembled text = %q, want %q", text, "Hello")
	}
}

func TestTail_TornWrite(t *testing.T) {
	// A writer may be interrupted mid-line. The head must be held back
	// until its newline arrives, then delivered intact.
	path := writeTranscript(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := Tail(ctx, path, 0)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	appendLines(t, path, `{"type":"turn","id":"u1","ro`)
	// Let the debounce fire and consume the partial head.
	time.Sleep(300 * time.Millisecond)
	appendLines(t, path, `le":"user","text":"whole"}
`)

	e := recvEvent(t, ctx, ch)
	if e.Kind != EventTurn {
		t.Fatalf("Kind = %v, want EventTurn", e.Kind)
	}
	if e.Turn.ID != "u1" || e.Turn.Text != "whole" {
		t.Errorf("got turn %s %q, want u1 %q", e.Turn.ID, e.Turn.Text, "whole")
	}
}

func TestTail_FileRemoved(t *testing.T) {
	path := writeTranscript(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := Tail(ctx, path, 0)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	e := recvEvent(t, ctx, ch)
	if e.Kind != EventTurn || e.Turn.Role != parley.RoleSystem {
		t.Fatalf("got kind %v role %s, want a system turn", e.Kind, e.Turn.Role)
	}
	e = recvEvent(t, ctx, ch)
	if e.Kind != EventClosed {
		t.Fatalf("Kind = %v, want EventClosed", e.Kind)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel close after EventClosed")
		}
	case <-ctx.Done():
		t.Fatal("channel not closed")
	}
}

func TestTail_ContextCancel(t *testing.T) {
	path := writeTranscript(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := Tail(ctx, path, 0)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	cancel()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestTail_MissingFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := Tail(ctx, filepath.Join(t.TempDir(), "absent.jsonl"), 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}
