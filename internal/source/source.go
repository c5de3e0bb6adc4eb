// Package source reads parley transcript files and turns them into
// turn streams: full loads, live tails of a file being written, and
// timed replays of recorded conversations.
//
// A transcript file is JSONL, one record per line:
//
//	{"type":"meta","title":"...","pid":1234}
//	{"type":"turn","id":"u1","role":"user","text":"...","ts":"..."}
//	{"type":"begin","id":"a1","role":"assistant","model":"..."}
//	{"type":"delta","id":"a1","text":"token chunk"}
//	{"type":"end","id":"a1"}
//
// Settled turns arrive as single "turn" records. A writer that streams
// a response opens it with "begin", grows it with "delta" records, and
// settles it with "end"; readers that load a finished file fold the
// three back into one settled turn. Blank lines and an unterminated
// final line (a write in progress) are tolerated everywhere.
package source

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/parleyhq/go-parley/internal/parley"
)

// EventKind discriminates stream events.
type EventKind int

const (
	// EventTurn delivers a settled turn.
	EventTurn EventKind = iota
	// EventBegin opens a streaming turn.
	EventBegin
	// EventDelta grows the streaming turn's text.
	EventDelta
	// EventEnd settles the streaming turn.
	EventEnd
	// EventClosed reports that the source ended (file removed, replay
	// finished, context cancelled). The channel closes after it.
	EventClosed
)

// Event is one item of a live turn stream.
type Event struct {
	Kind EventKind
	Turn parley.Turn // EventTurn, EventBegin
	ID   string      // EventDelta, EventEnd
	Text string      // EventDelta
}

// record is the wire shape of one transcript line.
type record struct {
	Type   string                `json:"type"`
	ID     string                `json:"id,omitempty"`
	Role   parley.Role           `json:"role,omitempty"`
	Text   string                `json:"text,omitempty"`
	Blocks []parley.ContentBlock `json:"blocks,omitempty"`
	TS     time.Time             `json:"ts,omitempty"`
	Model  string                `json:"model,omitempty"`

	// meta records
	Title string `json:"title,omitempty"`
	PID   int    `json:"pid,omitempty"`
}

// parseLine parses one transcript line. Blank lines and garbage yield
// ok=false; a viewer skips what it cannot read rather than failing the
// whole file.
func parseLine(line []byte) (record, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return record{}, false
	}
	var r record
	if err := json.Unmarshal(line, &r); err != nil {
		return record{}, false
	}
	if r.Type == "" {
		return record{}, false
	}
	return r, true
}

// turnFromRecord converts a turn/begin record into a Turn.
func turnFromRecord(r record) parley.Turn {
	role := r.Role
	if role == "" {
		role = parley.RoleAssistant
	}
	return parley.Turn{
		ID:        r.ID,
		Role:      role,
		Text:      r.Text,
		Blocks:    r.Blocks,
		Timestamp: r.TS,
		Model:     r.Model,
	}
}
