// Package parley defines the conversation model shared by the sources,
// the windowing engine, and the TUI: turns, content blocks, and the
// in-memory transcript they belong to.
package parley

import (
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ContentBlock is a piece of content within a turn. Text is the common
// case; image blocks carry a base64 payload for terminals that can
// display them inline.
type ContentBlock struct {
	Type string `json:"type"`

	// Text block
	Text string `json:"text,omitempty"`

	// Image block
	MediaType string `json:"media_type,omitempty"`
	MediaData string `json:"media_data,omitempty"`
}

// Turn is a single message in a transcript. A turn is immutable once
// appended, with one exception: the turn currently being streamed into
// grows its Text in place while keeping its ID stable.
type Turn struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Text      string         `json:"text,omitempty"`
	Blocks    []ContentBlock `json:"blocks,omitempty"`
	Timestamp time.Time      `json:"ts,omitempty"`
	Model     string         `json:"model,omitempty"`
}

// ContentLen returns the length in bytes of the turn's textual content,
// including text carried in blocks. Used by the size estimator and the
// disclosure threshold check.
func (t *Turn) ContentLen() int {
	n := len(t.Text)
	for _, b := range t.Blocks {
		n += len(b.Text)
	}
	return n
}

// Content returns the turn's textual content. Turns produced by the
// JSONL reader populate either Text or Blocks, not both.
func (t *Turn) Content() string {
	if t.Text != "" || len(t.Blocks) == 0 {
		return t.Text
	}
	var sb []byte
	for _, b := range t.Blocks {
		if b.Text == "" {
			continue
		}
		if len(sb) > 0 {
			sb = append(sb, '\n')
		}
		sb = append(sb, b.Text...)
	}
	return string(sb)
}

// HasImages reports whether any block carries image data.
func (t *Turn) HasImages() bool {
	for _, b := range t.Blocks {
		if b.Type == "image" && b.MediaData != "" {
			return true
		}
	}
	return false
}

// TranscriptMeta describes a transcript file without its turns, as
// collected by the directory scanner for the picker.
type TranscriptMeta struct {
	Path        string    `json:"path"`
	Title       string    `json:"title,omitempty"`
	FirstPrompt string    `json:"first_prompt,omitempty"`
	TurnCount   int       `json:"turn_count"`
	SizeBytes   int64     `json:"size_bytes"`
	ModifiedAt  time.Time `json:"modified_at"`
	WriterPID   int       `json:"writer_pid,omitempty"`
}
