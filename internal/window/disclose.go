package window

// Default disclosure tuning. A turn above DefaultThreshold bytes opens
// at DefaultPreview bytes and grows DefaultChunk bytes per step.
const (
	DefaultThreshold = 8000
	DefaultPreview   = 3000
	DefaultChunk     = 20000
)

// State is the disclosure position of one oversized turn.
type State struct {
	Revealed  int
	Expanding bool
}

// Discloser manages how much of each oversized turn is revealed.
// States live in an explicit map keyed by turn ID, created lazily the
// first time a turn crosses the threshold and destroyed when the turn
// leaves the transcript. Revealed only moves forward; the single way
// back is an explicit Collapse.
//
// The discloser never spans scheduling turns on its own: a full reveal
// is driven by the host calling Step once per scheduled continuation,
// so no single call does unbounded work.
type Discloser struct {
	threshold int
	preview   int
	chunk     int
	states    map[string]*State
}

// NewDiscloser creates a discloser with the given tuning. Non-positive
// values fall back to the defaults.
func NewDiscloser(threshold, preview, chunk int) *Discloser {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if preview <= 0 {
		preview = DefaultPreview
	}
	if chunk <= 0 {
		chunk = DefaultChunk
	}
	return &Discloser{
		threshold: threshold,
		preview:   preview,
		chunk:     chunk,
		states:    make(map[string]*State),
	}
}

// Threshold returns the size in bytes above which a turn discloses
// progressively.
func (d *Discloser) Threshold() int { return d.threshold }

// Oversized reports whether content of the given length participates
// in disclosure.
func (d *Discloser) Oversized(contentLen int) bool {
	return contentLen > d.threshold
}

func (d *Discloser) state(key string, contentLen int) *State {
	if s, ok := d.states[key]; ok {
		return s
	}
	s := &State{Revealed: clampLen(d.preview, contentLen)}
	d.states[key] = s
	return s
}

// Revealed returns the revealed byte count for a turn, creating
// preview state lazily for oversized turns. Content at or below the
// threshold is always fully revealed and holds no state.
func (d *Discloser) Revealed(key string, contentLen int) int {
	if !d.Oversized(contentLen) {
		return contentLen
	}
	s := d.state(key, contentLen)
	if s.Revealed > contentLen {
		return contentLen
	}
	return s.Revealed
}

// Expanding reports whether a full reveal is in progress for key.
func (d *Discloser) Expanding(key string) bool {
	s, ok := d.states[key]
	return ok && s.Expanding
}

// RequestChunk grows the revealed amount by one chunk and returns the
// new revealed count. A no-op for content that is not oversized or
// already fully revealed.
func (d *Discloser) RequestChunk(key string, contentLen int) int {
	if !d.Oversized(contentLen) {
		return contentLen
	}
	s := d.state(key, contentLen)
	s.Revealed = grow(s.Revealed, d.chunk, contentLen)
	s.Expanding = s.Revealed < contentLen
	return s.Revealed
}

// Step performs one bounded growth step of a full reveal and reports
// whether the content is now fully revealed. The host schedules the
// next step as a new message when done is false, yielding to the event
// loop between steps. Stepping fully revealed content is a no-op that
// reports done.
func (d *Discloser) Step(key string, contentLen int) (revealed int, done bool) {
	if !d.Oversized(contentLen) {
		return contentLen, true
	}
	s := d.state(key, contentLen)
	if s.Revealed >= contentLen {
		s.Revealed = contentLen
		s.Expanding = false
		return contentLen, true
	}
	s.Revealed = grow(s.Revealed, d.chunk, contentLen)
	if s.Revealed >= contentLen {
		s.Expanding = false
		return s.Revealed, true
	}
	s.Expanding = true
	return s.Revealed, false
}

// Collapse resets a turn to its preview length from any state.
func (d *Discloser) Collapse(key string, contentLen int) {
	if !d.Oversized(contentLen) {
		return
	}
	s := d.state(key, contentLen)
	s.Revealed = clampLen(d.preview, contentLen)
	s.Expanding = false
}

// Drop destroys the state for a removed turn.
func (d *Discloser) Drop(key string) {
	delete(d.states, key)
}

// Retain destroys every state whose key fails keep. Called after
// structural transcript changes so state never outlives its turn.
func (d *Discloser) Retain(keep func(key string) bool) {
	for k := range d.states {
		if !keep(k) {
			delete(d.states, k)
		}
	}
}

// StateCount returns the number of live disclosure states.
func (d *Discloser) StateCount() int { return len(d.states) }

// Slice returns the text to display for a turn and whether it is
// truncated. The result is always exactly content[:revealed] for the
// stored revealed count; the renderer owns trimming a torn trailing
// rune at the cut. Streaming content bypasses disclosure and renders
// in full as it arrives; truncating a still-growing answer would read
// as broken.
func (d *Discloser) Slice(key, content string, streaming bool) (string, bool) {
	if streaming || !d.Oversized(len(content)) {
		return content, false
	}
	rev := d.Revealed(key, len(content))
	if rev >= len(content) {
		return content, false
	}
	return content[:rev], true
}

func grow(revealed, chunk, contentLen int) int {
	next := revealed + chunk
	if next > contentLen {
		next = contentLen
	}
	return next
}

func clampLen(n, contentLen int) int {
	if n > contentLen {
		return contentLen
	}
	if n < 0 {
		return 0
	}
	return n
}
