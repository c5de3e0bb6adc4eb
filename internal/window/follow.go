package window

// Follow decides when the view snaps to the end of the transcript.
// A new terminal turn or active streaming asserts the snap, but only
// while the user has not scrolled away: an explicit scroll gesture
// disengages follow mode, and it re-arms when the user returns to the
// bottom. New content arriving while the user reads history never
// yanks the viewport.
type Follow struct {
	lastKey   string
	following bool
}

// NewFollow creates a controller. following sets the initial mode
// (views open pinned to the end when tailing).
func NewFollow(following bool) *Follow {
	return &Follow{following: following}
}

// Following reports whether the view is pinned to the end.
func (f *Follow) Following() bool { return f.following }

// UserScrolled records the outcome of an explicit scroll gesture.
// Scrolling away disengages follow; landing back on the bottom row
// re-engages it.
func (f *Follow) UserScrolled(atBottom bool) {
	f.following = atBottom
}

// Observe inspects the transcript tail after a change and reports
// whether the view should snap to the end now. The snap fires when a
// new last turn appeared or streaming is active, and only while
// following. An empty transcript never snaps.
func (f *Follow) Observe(lastKey string, streaming bool) bool {
	newTail := lastKey != "" && lastKey != f.lastKey
	f.lastKey = lastKey
	if !f.following || lastKey == "" {
		return false
	}
	return newTail || streaming
}
