package source

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/parleyhq/go-parley/internal/parley"
)

// ReadResult is a fully loaded transcript file.
type ReadResult struct {
	Meta  parley.TranscriptMeta
	Turns []parley.Turn

	// Offset is the byte position after the last complete line, where
	// a live tail should continue so nothing is lost between the load
	// and the watch.
	Offset int64

	// OpenStream is the ID of a streaming turn that was begun but not
	// ended by the file's last complete line. The writer is likely
	// still appending to it.
	OpenStream string
}

// ReadFile loads a transcript file, folding begin/delta/end sequences
// into settled turns. Unknown record types and unparseable lines are
// skipped; an unterminated final line is left for the tail to pick up.
func ReadFile(path string) (*ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	res := &ReadResult{}
	res.Meta.Path = path
	if fi, err := f.Stat(); err == nil {
		res.Meta.SizeBytes = fi.Size()
		res.Meta.ModifiedAt = fi.ModTime()
	}

	// Streaming turns under assembly, keyed by ID.
	type assembling struct {
		idx int
		buf strings.Builder
	}
	open := map[string]*assembling{}

	reader := bufio.NewReader(f)
	var offset int64
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			// Unterminated tail: a write in progress. Leave it at
			// res.Offset for the tail to re-read once complete.
			break
		}
		offset += int64(len(line))
		res.Offset = offset

		r, ok := parseLine(line)
		if !ok {
			continue
		}
		switch r.Type {
		case "meta":
			res.Meta.Title = r.Title
			res.Meta.WriterPID = r.PID
		case "turn":
			res.Turns = append(res.Turns, turnFromRecord(r))
		case "begin":
			a := &assembling{idx: len(res.Turns)}
			a.buf.WriteString(r.Text)
			open[r.ID] = a
			res.Turns = append(res.Turns, turnFromRecord(r))
		case "delta":
			if a, ok := open[r.ID]; ok {
				a.buf.WriteString(r.Text)
			}
		case "end":
			if a, ok := open[r.ID]; ok {
				res.Turns[a.idx].Text = a.buf.String()
				delete(open, r.ID)
			}
		}
	}

	// A begin without an end means the writer is mid-response.
	for id, a := range open {
		res.Turns[a.idx].Text = a.buf.String()
		res.OpenStream = id
	}

	res.Meta.TurnCount = len(res.Turns)
	if res.Meta.FirstPrompt == "" {
		for i := range res.Turns {
			if res.Turns[i].Role == parley.RoleUser {
				res.Meta.FirstPrompt = firstLineOf(res.Turns[i].Content())
				break
			}
		}
	}
	return res, nil
}

// firstLineOf returns the first non-empty line of s, trimmed to a
// picker-friendly length.
func firstLineOf(s string) string {
	const max = 120
	start := 0
	for start < len(s) && (s[start] == '\n' || s[start] == ' ' || s[start] == '\t') {
		start++
	}
	end := start
	for end < len(s) && s[end] != '\n' {
		end++
	}
	if end-start > max {
		end = start + max
	}
	return s[start:end]
}
