package focus

import "testing"

func TestNextPrevWrap(t *testing.T) {
	c := NewCycle()
	c.Add(1)
	c.Add(2)
	c.Add(3)

	if got := c.Next(); got != 2 {
		t.Fatalf("Next = %d, want 2", got)
	}
	if got := c.Next(); got != 3 {
		t.Fatalf("Next = %d, want 3", got)
	}
	if got := c.Next(); got != 1 {
		t.Fatalf("expected wrap to 1, got %d", got)
	}
	if got := c.Prev(); got != 3 {
		t.Fatalf("expected wrap back to 3, got %d", got)
	}
}

func TestEmptyCycleReturnsSentinel(t *testing.T) {
	c := NewCycle()
	if got := c.Next(); got != 0 {
		t.Fatalf("Next on empty = %d, want 0", got)
	}
	if got := c.Prev(); got != 0 {
		t.Fatalf("Prev on empty = %d, want 0", got)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	c := NewCycle()
	c.Add(1)
	c.Add(1)
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
}

func TestRemoveCursorAdvances(t *testing.T) {
	c := NewCycle()
	c.Add(1)
	c.Add(2)
	c.Add(3)

	// Move the cursor onto 2, then remove it.
	if got := c.Next(); got != 2 {
		t.Fatalf("Next = %d, want 2", got)
	}
	c.Remove(2)

	if got := c.Next(); got != 3 {
		t.Fatalf("expected 3 after removing cursor window, got %d", got)
	}
	if c.Has(2) {
		t.Fatalf("expected 2 gone")
	}
}

func TestRemoveLastEntry(t *testing.T) {
	c := NewCycle()
	c.Add(1)
	c.Remove(1)
	if got := c.Next(); got != 0 {
		t.Fatalf("expected sentinel on emptied cycle, got %d", got)
	}
	// Removing again is harmless.
	c.Remove(1)
}
