package window

// Snapshot captures everything that determines a turn's rendered
// output. Content is a string view, not a copy; comparing snapshots is
// cheap because settled turns keep the same backing string.
type Snapshot struct {
	Key      string
	Index    int
	Content  string
	Revealed int
	Width    int
}

// ShouldReuse decides whether a previous rendering may be shown
// unchanged. The turn receiving the stream is always re-rendered, even
// for identical snapshots, so the in-flight answer can never display
// stale. Every other turn is reused iff identity, content, revealed
// slice, index, and width all match, which keeps steady-state
// streaming at O(1) turn renders per token instead of O(transcript).
func ShouldReuse(prev, next Snapshot, isLast, streaming bool) bool {
	if isLast && streaming {
		return false
	}
	return prev == next
}

type renderedTurn struct {
	snap  Snapshot
	lines []string
}

// MemoCache stores rendered lines per turn key, guarded by ShouldReuse.
type MemoCache struct {
	rendered map[string]renderedTurn
}

// NewMemoCache returns an empty cache.
func NewMemoCache() *MemoCache {
	return &MemoCache{rendered: make(map[string]renderedTurn)}
}

// Lookup returns the cached lines for next's turn when reuse is
// allowed.
func (m *MemoCache) Lookup(next Snapshot, isLast, streaming bool) ([]string, bool) {
	e, ok := m.rendered[next.Key]
	if !ok {
		return nil, false
	}
	if !ShouldReuse(e.snap, next, isLast, streaming) {
		return nil, false
	}
	return e.lines, true
}

// Store records freshly rendered lines for a snapshot.
func (m *MemoCache) Store(snap Snapshot, lines []string) {
	m.rendered[snap.Key] = renderedTurn{snap: snap, lines: lines}
}

// Drop forgets one turn's rendering.
func (m *MemoCache) Drop(key string) {
	delete(m.rendered, key)
}

// Clear forgets everything. Used on width and theme changes.
func (m *MemoCache) Clear() {
	m.rendered = make(map[string]renderedTurn)
}

// Len returns the number of cached renderings.
func (m *MemoCache) Len() int { return len(m.rendered) }
