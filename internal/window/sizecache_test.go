package window

import "testing"

func TestSizeCacheSetReportsChange(t *testing.T) {
	c := NewSizeCache()

	if !c.Set(0, 5) {
		t.Error("first Set should report a change")
	}
	if c.Set(0, 5) {
		t.Error("identical Set should report no change")
	}
	if !c.Set(0, 6) {
		t.Error("different Set should report a change")
	}
	if v, ok := c.Get(0); !ok || v != 6 {
		t.Errorf("Get = (%d, %v), want (6, true)", v, ok)
	}
}

func TestSizeCacheInvalidate(t *testing.T) {
	c := NewSizeCache()
	for i := 0; i < 6; i++ {
		c.Set(i, 10+i)
	}

	c.Invalidate(2)
	if _, ok := c.Get(2); ok {
		t.Error("invalidated entry still present")
	}
	if c.Len() != 5 {
		t.Errorf("Len = %d, want 5", c.Len())
	}

	c.InvalidateFrom(3)
	for i := 3; i < 6; i++ {
		if _, ok := c.Get(i); ok {
			t.Errorf("index %d survived InvalidateFrom(3)", i)
		}
	}
	if _, ok := c.Get(0); !ok {
		t.Error("index 0 should survive InvalidateFrom(3)")
	}

	c.InvalidateAll()
	if c.Len() != 0 {
		t.Errorf("Len after InvalidateAll = %d", c.Len())
	}
}
