// Package window implements the windowed-rendering engine of the
// transcript view: size estimation, measured-extent caching, visible
// range calculation, follow-the-tail scrolling, render memoization,
// and progressive disclosure of oversized turns.
//
// All units are terminal rows ("extent") and row offsets from the top
// of the virtual content. The engine is single-threaded: every method
// is called from the TUI update loop, and the only work spanning
// multiple scheduling turns is the disclosure continuation, which the
// host re-schedules one bounded step at a time.
package window

import (
	"sort"

	"github.com/parleyhq/go-parley/internal/parley"
)

// DefaultOverscan is how many extra items the window keeps rendered
// beyond each edge of the viewport.
const DefaultOverscan = 4

// Source is the turn-list surface the calculator reads. The transcript
// page implements it over *parley.Transcript; tests implement it over
// a slice.
type Source interface {
	// Len returns the number of turns.
	Len() int
	// Key returns the stable identity of turn i.
	Key(i int) string
	// Role returns the role of turn i.
	Role(i int) parley.Role
	// ContentLen returns the content length of turn i in bytes.
	ContentLen(i int) int
}

// Item is one materialized entry of the visible window.
type Item struct {
	Index  int
	Key    string
	Offset int
	Extent int
}

// Window is the result of a recompute: the contiguous items to
// materialize and the full virtual extent of the transcript.
type Window struct {
	Items       []Item
	TotalExtent int
}

// Calculator owns the size cache and computes visible windows from
// scroll state. Materialization cost is O(viewport + overscan) items
// per recompute regardless of transcript length; the offset pass over
// sizes is a single integer prefix sum.
type Calculator struct {
	src    Source
	cache  *SizeCache
	width  int
	prefix []int
}

// NewCalculator creates a calculator over src.
func NewCalculator(src Source) *Calculator {
	return &Calculator{
		src:   src,
		cache: NewSizeCache(),
		width: minEstimateWidth,
	}
}

// SetWidth records the render width. A width change invalidates every
// measurement: extents were measured at the old wrap width.
func (c *Calculator) SetWidth(w int) {
	if w == c.width {
		return
	}
	c.width = w
	c.cache.InvalidateAll()
}

// Width returns the current render width.
func (c *Calculator) Width() int { return c.width }

// Cache exposes the size cache for targeted invalidation (streaming
// growth of the last turn, structural changes).
func (c *Calculator) Cache() *SizeCache { return c.cache }

// Size returns the extent of turn i, preferring a real measurement
// over the estimate.
func (c *Calculator) Size(i int) int {
	if m, ok := c.cache.Get(i); ok {
		return m
	}
	return EstimateExtent(c.src.Role(i), c.src.ContentLen(i), c.width)
}

// prefixSums rebuilds the offset table: prefix[i] is the offset of
// turn i, prefix[n] the total extent. Rebuilt on every query so a
// recompute always observes the latest committed cache state.
func (c *Calculator) prefixSums() []int {
	n := c.src.Len()
	if cap(c.prefix) < n+1 {
		c.prefix = make([]int, n+1)
	}
	c.prefix = c.prefix[:n+1]
	c.prefix[0] = 0
	for i := 0; i < n; i++ {
		c.prefix[i+1] = c.prefix[i] + c.Size(i)
	}
	return c.prefix
}

// TotalExtent returns the summed extent of all turns.
func (c *Calculator) TotalExtent() int {
	p := c.prefixSums()
	return p[len(p)-1]
}

// OffsetOf returns the row offset of turn i, clamped into range.
func (c *Calculator) OffsetOf(i int) int {
	p := c.prefixSums()
	if i < 0 {
		return 0
	}
	if i >= len(p) {
		return p[len(p)-1]
	}
	return p[i]
}

// ClampOffset clamps a scroll offset so the viewport never scrolls
// past the end of the content or above the start.
func (c *Calculator) ClampOffset(offset, viewportExtent int) int {
	max := c.TotalExtent() - viewportExtent
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// Recompute computes the visible window for the given scroll state.
// The range is the set of turns intersecting [scrollOffset,
// scrollOffset+viewportExtent), widened by overscan extra items on
// each side. Overscan is an item count, fixed and small, which is what
// bounds materialization at viewport-derived count + 2*overscan no
// matter how long the transcript grows.
//
// An empty transcript yields an empty window with zero total extent.
func (c *Calculator) Recompute(scrollOffset, viewportExtent, overscan int) Window {
	n := c.src.Len()
	if n == 0 {
		return Window{}
	}
	if viewportExtent < 0 {
		viewportExtent = 0
	}
	if overscan < 0 {
		overscan = 0
	}

	p := c.prefixSums()
	total := p[n]

	scrollOffset = c.clampAgainst(total, scrollOffset, viewportExtent)

	// First turn whose bottom edge is below the viewport top.
	first := sort.Search(n, func(i int) bool { return p[i+1] > scrollOffset })
	// Last turn whose top edge is above the viewport bottom.
	last := sort.Search(n, func(i int) bool { return p[i] >= scrollOffset+viewportExtent }) - 1

	if first >= n || last < first {
		// Zero-height viewport or fully out of range after clamping.
		return Window{TotalExtent: total}
	}

	first -= overscan
	if first < 0 {
		first = 0
	}
	last += overscan
	if last > n-1 {
		last = n - 1
	}

	items := make([]Item, 0, last-first+1)
	for i := first; i <= last; i++ {
		items = append(items, Item{
			Index:  i,
			Key:    c.src.Key(i),
			Offset: p[i],
			Extent: p[i+1] - p[i],
		})
	}
	return Window{Items: items, TotalExtent: total}
}

func (c *Calculator) clampAgainst(total, offset, viewportExtent int) int {
	max := total - viewportExtent
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// ReportMeasured records a real measured extent for a materialized
// turn. Reports for indices outside the current turn count are stale
// (the turn was removed since layout) and are ignored. The return
// value is true only when the cached value actually changed: the
// caller recomputes the window exactly once per real change, which is
// what keeps measurement from thrashing into a recompute loop.
func (c *Calculator) ReportMeasured(index, extent int) bool {
	if index < 0 || index >= c.src.Len() || extent < 0 {
		return false
	}
	return c.cache.Set(index, extent)
}
