package parley

import (
	"strings"
	"time"
)

// Transcript is the ordered turn list a viewer session operates on.
// It is mutated only from the TUI update loop, so it takes no locks.
//
// Structural changes that alter the identity of existing positions
// (Remove, Truncate, Replace) bump the generation counter; plain
// appends do not, because every existing turn keeps its identity.
// Asynchronous work scheduled against an older generation re-validates
// its target turn by ID before touching any state.
type Transcript struct {
	turns      []Turn
	generation uint64

	streaming    bool
	streamBuf    strings.Builder
	streamTurnID string
}

// NewTranscript creates a transcript seeded with the given turns.
func NewTranscript(turns []Turn) *Transcript {
	return &Transcript{turns: turns}
}

// Len returns the number of turns.
func (tr *Transcript) Len() int { return len(tr.turns) }

// Turn returns the i-th turn. The pointer stays valid until the next
// structural change.
func (tr *Transcript) Turn(i int) *Turn {
	if i < 0 || i >= len(tr.turns) {
		return nil
	}
	return &tr.turns[i]
}

// Generation returns the current structure generation.
func (tr *Transcript) Generation() uint64 { return tr.generation }

// Streaming reports whether the last turn is actively receiving text.
func (tr *Transcript) Streaming() bool { return tr.streaming }

// LastKey returns the ID of the last turn, or "" when empty.
func (tr *Transcript) LastKey() string {
	if len(tr.turns) == 0 {
		return ""
	}
	return tr.turns[len(tr.turns)-1].ID
}

// IndexOf returns the index of the turn with the given ID, or -1.
func (tr *Transcript) IndexOf(id string) int {
	for i := range tr.turns {
		if tr.turns[i].ID == id {
			return i
		}
	}
	return -1
}

// Append adds a settled turn to the end. Appending finalizes any
// in-flight stream first so the streaming turn cannot end up mid-list.
func (tr *Transcript) Append(t Turn) {
	if tr.streaming {
		tr.FinalizeStream()
	}
	tr.turns = append(tr.turns, t)
}

// BeginStream appends a new turn whose text will arrive in deltas.
// The turn's ID is stable from the first delta on.
func (tr *Transcript) BeginStream(t Turn) {
	if tr.streaming {
		tr.FinalizeStream()
	}
	tr.streamBuf.Reset()
	tr.streamBuf.WriteString(t.Text)
	t.Text = tr.streamBuf.String()
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	tr.turns = append(tr.turns, t)
	tr.streaming = true
	tr.streamTurnID = t.ID
}

// ResumeStream re-opens streaming onto the existing last turn. Used
// when a loaded file ended with an unfinished stream: the tail will
// deliver further deltas for a turn that is already in the list.
// Reports false when the last turn's ID does not match.
func (tr *Transcript) ResumeStream(id string) bool {
	if len(tr.turns) == 0 || tr.turns[len(tr.turns)-1].ID != id {
		return false
	}
	if tr.streaming {
		return tr.streamTurnID == id
	}
	tr.streamBuf.Reset()
	tr.streamBuf.WriteString(tr.turns[len(tr.turns)-1].Text)
	tr.streaming = true
	tr.streamTurnID = id
	return true
}

// AppendStreamDelta grows the streaming turn's text in place. A delta
// with no stream open is ignored.
func (tr *Transcript) AppendStreamDelta(delta string) {
	if !tr.streaming || delta == "" {
		return
	}
	tr.streamBuf.WriteString(delta)
	tr.turns[len(tr.turns)-1].Text = tr.streamBuf.String()
}

// FinalizeStream marks the streaming turn as settled.
func (tr *Transcript) FinalizeStream() {
	if !tr.streaming {
		return
	}
	tr.streaming = false
	tr.streamTurnID = ""
	tr.streamBuf.Reset()
}

// Remove deletes the turn at index i and bumps the generation.
// Out-of-range indices are a no-op.
func (tr *Transcript) Remove(i int) {
	if i < 0 || i >= len(tr.turns) {
		return
	}
	if tr.streaming && i == len(tr.turns)-1 {
		tr.FinalizeStream()
	}
	tr.turns = append(tr.turns[:i], tr.turns[i+1:]...)
	tr.generation++
}

// Truncate keeps the first n turns and bumps the generation.
func (tr *Transcript) Truncate(n int) {
	if n < 0 || n >= len(tr.turns) {
		return
	}
	if tr.streaming {
		tr.FinalizeStream()
	}
	tr.turns = tr.turns[:n]
	tr.generation++
}

// Replace swaps the turn at index i for a different one and bumps the
// generation. Used when a source re-delivers a corrected turn.
func (tr *Transcript) Replace(i int, t Turn) {
	if i < 0 || i >= len(tr.turns) {
		return
	}
	if tr.streaming && i == len(tr.turns)-1 {
		tr.FinalizeStream()
	}
	tr.turns[i] = t
	tr.generation++
}
