package window

// SizeCache holds the last real measured row extent per turn index.
// A measurement is authoritative over the estimate until the content
// at that index changes identity (streaming growth, replacement), at
// which point the owner invalidates it and the next layout pass
// re-measures.
type SizeCache struct {
	measured map[int]int
}

// NewSizeCache returns an empty cache.
func NewSizeCache() *SizeCache {
	return &SizeCache{measured: make(map[int]int)}
}

// Get returns the measured extent for index, if one exists.
func (c *SizeCache) Get(index int) (int, bool) {
	v, ok := c.measured[index]
	return v, ok
}

// Set records a measured extent. It reports whether the stored value
// actually changed, so callers can recompute exactly once per real
// change instead of cascading.
func (c *SizeCache) Set(index, extent int) bool {
	if prev, ok := c.measured[index]; ok && prev == extent {
		return false
	}
	c.measured[index] = extent
	return true
}

// Invalidate forgets the measurement for a single index.
func (c *SizeCache) Invalidate(index int) {
	delete(c.measured, index)
}

// InvalidateFrom forgets measurements for index and everything after
// it. Used when the tail of the list changes identity (truncation,
// removal shifting indices).
func (c *SizeCache) InvalidateFrom(index int) {
	for i := range c.measured {
		if i >= index {
			delete(c.measured, i)
		}
	}
}

// InvalidateAll forgets every measurement. Used on width change, when
// every extent is stale at once.
func (c *SizeCache) InvalidateAll() {
	c.measured = make(map[int]int)
}

// Len returns the number of cached measurements.
func (c *SizeCache) Len() int { return len(c.measured) }
