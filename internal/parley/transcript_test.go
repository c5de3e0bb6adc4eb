package parley

import (
	"fmt"
	"testing"
)

func mkTurn(id string, role Role, text string) Turn {
	return Turn{ID: id, Role: role, Text: text}
}

func TestTranscriptAppendAndAccess(t *testing.T) {
	tr := NewTranscript(nil)
	if tr.Len() != 0 {
		t.Fatalf("empty transcript Len = %d, want 0", tr.Len())
	}
	if tr.LastKey() != "" {
		t.Errorf("empty transcript LastKey = %q, want empty", tr.LastKey())
	}
	if tr.Turn(0) != nil {
		t.Error("Turn(0) on empty transcript should be nil")
	}

	tr.Append(mkTurn("a", RoleUser, "hello"))
	tr.Append(mkTurn("b", RoleAssistant, "hi there"))

	if tr.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tr.Len())
	}
	if tr.LastKey() != "b" {
		t.Errorf("LastKey = %q, want b", tr.LastKey())
	}
	if got := tr.Turn(1).Text; got != "hi there" {
		t.Errorf("Turn(1).Text = %q", got)
	}
	if tr.IndexOf("a") != 0 || tr.IndexOf("b") != 1 {
		t.Errorf("IndexOf: a=%d b=%d", tr.IndexOf("a"), tr.IndexOf("b"))
	}
	if tr.IndexOf("missing") != -1 {
		t.Errorf("IndexOf(missing) = %d, want -1", tr.IndexOf("missing"))
	}
}

func TestTranscriptAppendKeepsGeneration(t *testing.T) {
	tr := NewTranscript(nil)
	g0 := tr.Generation()
	for i := 0; i < 10; i++ {
		tr.Append(mkTurn(fmt.Sprintf("t%d", i), RoleUser, "x"))
	}
	if tr.Generation() != g0 {
		t.Errorf("append bumped generation: %d -> %d", g0, tr.Generation())
	}
}

func TestTranscriptStreamingDeltas(t *testing.T) {
	tr := NewTranscript(nil)
	tr.Append(mkTurn("q", RoleUser, "question"))

	tr.BeginStream(Turn{ID: "ans", Role: RoleAssistant})
	if !tr.Streaming() {
		t.Fatal("expected Streaming after BeginStream")
	}
	if tr.LastKey() != "ans" {
		t.Fatalf("LastKey = %q, want ans", tr.LastKey())
	}

	tr.AppendStreamDelta("Hello")
	tr.AppendStreamDelta(", world")
	if got := tr.Turn(1).Text; got != "Hello, world" {
		t.Errorf("streamed text = %q", got)
	}
	// Identity stays stable across deltas.
	if tr.Turn(1).ID != "ans" {
		t.Errorf("streaming turn ID changed to %q", tr.Turn(1).ID)
	}

	tr.FinalizeStream()
	if tr.Streaming() {
		t.Error("still streaming after FinalizeStream")
	}
	if got := tr.Turn(1).Text; got != "Hello, world" {
		t.Errorf("text after finalize = %q", got)
	}
}

func TestTranscriptResumeStream(t *testing.T) {
	tr := NewTranscript([]Turn{
		mkTurn("q", RoleUser, "question"),
		mkTurn("ans", RoleAssistant, "partial answ"),
	})

	if tr.ResumeStream("q") {
		t.Error("ResumeStream accepted a non-terminal turn")
	}
	if !tr.ResumeStream("ans") {
		t.Fatal("ResumeStream rejected the last turn")
	}
	if !tr.Streaming() {
		t.Fatal("expected Streaming after ResumeStream")
	}

	tr.AppendStreamDelta("er")
	if got := tr.Turn(1).Text; got != "partial answer" {
		t.Errorf("resumed stream text = %q, want %q", got, "partial answer")
	}

	// Resuming the already open stream is a no-op that reports true.
	if !tr.ResumeStream("ans") {
		t.Error("ResumeStream on the open stream reported false")
	}
	tr.FinalizeStream()
	if got := tr.Turn(1).Text; got != "partial answer" {
		t.Errorf("text after finalize = %q", got)
	}
}

func TestTranscriptDeltaWithoutStreamIgnored(t *testing.T) {
	tr := NewTranscript(nil)
	tr.Append(mkTurn("a", RoleUser, "hi"))
	tr.AppendStreamDelta("stray")
	if got := tr.Turn(0).Text; got != "hi" {
		t.Errorf("stray delta mutated settled turn: %q", got)
	}
}

func TestTranscriptAppendFinalizesOpenStream(t *testing.T) {
	tr := NewTranscript(nil)
	tr.BeginStream(Turn{ID: "s1", Role: RoleAssistant})
	tr.AppendStreamDelta("in flight")
	tr.Append(mkTurn("u2", RoleUser, "next question"))

	if tr.Streaming() {
		t.Error("stream should be finalized by Append")
	}
	if got := tr.Turn(0).Text; got != "in flight" {
		t.Errorf("finalized stream text = %q", got)
	}
	if tr.LastKey() != "u2" {
		t.Errorf("LastKey = %q, want u2", tr.LastKey())
	}
}

func TestTranscriptStructuralChangesBumpGeneration(t *testing.T) {
	tr := NewTranscript([]Turn{
		mkTurn("a", RoleUser, "one"),
		mkTurn("b", RoleAssistant, "two"),
		mkTurn("c", RoleUser, "three"),
	})

	g := tr.Generation()
	tr.Remove(1)
	if tr.Generation() != g+1 {
		t.Errorf("Remove: generation = %d, want %d", tr.Generation(), g+1)
	}
	if tr.Len() != 2 || tr.Turn(1).ID != "c" {
		t.Errorf("after Remove: len=%d turn1=%v", tr.Len(), tr.Turn(1))
	}

	tr.Remove(99)
	if tr.Generation() != g+1 {
		t.Error("out-of-range Remove should be a no-op")
	}

	tr.Truncate(1)
	if tr.Generation() != g+2 || tr.Len() != 1 {
		t.Errorf("after Truncate: gen=%d len=%d", tr.Generation(), tr.Len())
	}

	tr.Replace(0, mkTurn("a2", RoleUser, "rewritten"))
	if tr.Generation() != g+3 || tr.Turn(0).ID != "a2" {
		t.Errorf("after Replace: gen=%d id=%q", tr.Generation(), tr.Turn(0).ID)
	}
}

func TestTurnContentLen(t *testing.T) {
	tests := []struct {
		name string
		turn Turn
		want int
	}{
		{"plain text", Turn{Text: "hello"}, 5},
		{"empty", Turn{}, 0},
		{"blocks only", Turn{Blocks: []ContentBlock{{Type: "text", Text: "abc"}, {Type: "text", Text: "de"}}}, 5},
		{"text plus image block", Turn{Text: "hi", Blocks: []ContentBlock{{Type: "image", MediaData: "AAAA"}}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.turn.ContentLen(); got != tt.want {
				t.Errorf("ContentLen = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTurnContentJoinsBlocks(t *testing.T) {
	turn := Turn{Blocks: []ContentBlock{
		{Type: "text", Text: "first"},
		{Type: "image", MediaData: "AAAA"},
		{Type: "text", Text: "second"},
	}}
	if got := turn.Content(); got != "first\nsecond" {
		t.Errorf("Content = %q", got)
	}

	withText := Turn{Text: "direct", Blocks: []ContentBlock{{Type: "text", Text: "ignored"}}}
	if got := withText.Content(); got != "direct" {
		t.Errorf("Content = %q, want direct", got)
	}
}
