package source

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/parleyhq/go-parley/internal/parley"
)

const (
	// replayTurnGap paces turns that carry no usable timestamps.
	replayTurnGap = 600 * time.Millisecond
	// replayMaxGap caps recorded silences so replays stay watchable.
	replayMaxGap = 3 * time.Second
	// replayDeltaGap is the pause between streamed chunks.
	replayDeltaGap = 40 * time.Millisecond
	// replayChunkChars is how much text one streamed delta carries.
	replayChunkChars = 24
)

// ReplayOptions tunes playback pacing.
type ReplayOptions struct {
	// Speed divides every pause; 2 plays twice as fast. Non-positive
	// values mean real time.
	Speed float64

	// ChunkChars overrides how much text each delta carries.
	ChunkChars int
}

// Replay plays a recorded transcript back as a timed event stream.
// Turns are paced by their recorded timestamp gaps (capped, scaled by
// Speed); assistant text arrives as begin/delta/end the way a live
// writer would have produced it. The channel closes after an
// EventClosed or when ctx is cancelled.
func Replay(ctx context.Context, turns []parley.Turn, opts ReplayOptions) <-chan Event {
	ch := make(chan Event, 64)
	go replayLoop(ctx, turns, opts, ch)
	return ch
}

func replayLoop(ctx context.Context, turns []parley.Turn, opts ReplayOptions, ch chan<- Event) {
	defer close(ch)

	speed := opts.Speed
	if speed <= 0 {
		speed = 1
	}
	chunk := opts.ChunkChars
	if chunk <= 0 {
		chunk = replayChunkChars
	}

	for i, t := range turns {
		if i > 0 {
			if !pause(ctx, scaleGap(replayGap(turns[i-1], t), speed)) {
				return
			}
		}
		if t.Role != parley.RoleAssistant || t.Text == "" {
			if !emit(ctx, ch, Event{Kind: EventTurn, Turn: t}) {
				return
			}
			continue
		}

		head := t
		head.Text = ""
		if !emit(ctx, ch, Event{Kind: EventBegin, Turn: head}) {
			return
		}
		text := t.Text
		for off := 0; off < len(text); {
			end := off + chunk
			if end >= len(text) {
				end = len(text)
			} else {
				// A live writer emits whole tokens; never tear a rune.
				for end < len(text) && !utf8.RuneStart(text[end]) {
					end++
				}
			}
			if !emit(ctx, ch, Event{Kind: EventDelta, ID: t.ID, Text: text[off:end]}) {
				return
			}
			off = end
			if off < len(text) && !pause(ctx, scaleGap(replayDeltaGap, speed)) {
				return
			}
		}
		if !emit(ctx, ch, Event{Kind: EventEnd, ID: t.ID}) {
			return
		}
	}
	emit(ctx, ch, Event{Kind: EventClosed})
}

// replayGap is the pause before next, from recorded timestamps when
// both turns carry one.
func replayGap(prev, next parley.Turn) time.Duration {
	if prev.Timestamp.IsZero() || next.Timestamp.IsZero() {
		return replayTurnGap
	}
	gap := next.Timestamp.Sub(prev.Timestamp)
	if gap <= 0 {
		return replayTurnGap
	}
	if gap > replayMaxGap {
		return replayMaxGap
	}
	return gap
}

func scaleGap(d time.Duration, speed float64) time.Duration {
	return time.Duration(float64(d) / speed)
}

// pause sleeps d, returning false if ctx ends first.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
