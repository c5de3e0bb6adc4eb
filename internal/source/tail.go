package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/parleyhq/go-parley/internal/parley"
	"github.com/parleyhq/go-parley/internal/tuilog"
)

// tailDebounce coalesces bursts of writes before reading new lines.
const tailDebounce = 100 * time.Millisecond

// Tail watches a transcript file and streams records appended after
// offset. Pass the Offset from a preceding ReadFile so nothing written
// between the load and the watch is lost, or the file's current size
// to follow only new content. The channel closes after an EventClosed,
// when ctx is cancelled, or when the file disappears.
func Tail(ctx context.Context, path string, offset int64) (<-chan Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek transcript: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		f.Close()
		return nil, err
	}

	ch := make(chan Event, 64)
	go tailLoop(ctx, f, watcher, ch)
	return ch, nil
}

func tailLoop(ctx context.Context, f *os.File, watcher *fsnotify.Watcher, ch chan<- Event) {
	defer close(ch)
	defer f.Close()
	defer watcher.Close()

	reader := bufio.NewReader(f)
	var pending []byte
	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	// Drain anything already appended between seek and watch.
	if !drainLines(ctx, reader, &pending, ch) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) {
				debounce.Reset(tailDebounce)
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				emit(ctx, ch, Event{Kind: EventTurn, Turn: parley.Turn{
					ID:        "tail-closed",
					Role:      parley.RoleSystem,
					Text:      "Transcript file removed, stream ending.",
					Timestamp: time.Now(),
				}})
				emit(ctx, ch, Event{Kind: EventClosed})
				return
			}

		case <-debounce.C:
			if !drainLines(ctx, reader, &pending, ch) {
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			tuilog.Log.Warn("Tail watcher error", "error", err)
		}
	}
}

// drainLines reads every complete new line and emits its event.
// Returns false when the context is done. A torn write leaves a
// partial head in pending until its newline arrives.
func drainLines(ctx context.Context, reader *bufio.Reader, pending *[]byte, ch chan<- Event) bool {
	for {
		chunk, err := reader.ReadBytes('\n')
		if err != nil {
			if len(chunk) > 0 {
				*pending = append(*pending, chunk...)
			}
			return true
		}
		line := chunk
		if len(*pending) > 0 {
			line = append(*pending, chunk...)
			*pending = nil
		}
		r, ok := parseLine(line)
		if !ok {
			continue
		}
		var ev Event
		switch r.Type {
		case "turn":
			ev = Event{Kind: EventTurn, Turn: turnFromRecord(r)}
		case "begin":
			ev = Event{Kind: EventBegin, Turn: turnFromRecord(r)}
		case "delta":
			ev = Event{Kind: EventDelta, ID: r.ID, Text: r.Text}
		case "end":
			ev = Event{Kind: EventEnd, ID: r.ID}
		default:
			continue
		}
		if !emit(ctx, ch, ev) {
			return false
		}
	}
}

func emit(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
