// Package focus keeps the ordered, cyclic list of focusable windows used for
// next/previous focus cycling. The cycle is only an ordering view: it never
// owns client state, and membership is maintained by the event layer as
// windows are mapped and unmapped.
package focus

import "github.com/BurntSushi/xgb/xproto"

// Cycle is an insertion-ordered ring of window handles with a cursor.
// The zero window is the "nothing to focus" sentinel.
type Cycle struct {
	order  []xproto.Window
	member map[xproto.Window]bool
	pos    int
}

// NewCycle creates an empty focus cycle.
func NewCycle() *Cycle {
	return &Cycle{member: make(map[xproto.Window]bool)}
}

// Add appends a window to the cycle. Adding a window already present is a
// no-op, so remaps do not duplicate entries.
func (c *Cycle) Add(w xproto.Window) {
	if w == 0 || c.member[w] {
		return
	}
	c.member[w] = true
	c.order = append(c.order, w)
}

// Remove drops a window from the cycle. If the cursor sat on the removed
// window it effectively advances: the next Next call yields the window that
// followed the removed one.
func (c *Cycle) Remove(w xproto.Window) {
	if !c.member[w] {
		return
	}
	delete(c.member, w)
	for i, have := range c.order {
		if have != w {
			continue
		}
		c.order = append(c.order[:i], c.order[i+1:]...)
		if c.pos > i {
			c.pos--
		}
		if c.pos >= len(c.order) {
			c.pos = 0
		}
		return
	}
}

// Has reports whether the window participates in the cycle.
func (c *Cycle) Has(w xproto.Window) bool {
	return c.member[w]
}

// Len returns the number of participating windows.
func (c *Cycle) Len() int {
	return len(c.order)
}

// Next advances the cursor and returns the window under it, wrapping past
// the end. Returns zero when the cycle is empty.
func (c *Cycle) Next() xproto.Window {
	if len(c.order) == 0 {
		return 0
	}
	c.pos = (c.pos + 1) % len(c.order)
	return c.order[c.pos]
}

// Prev steps the cursor back and returns the window under it, wrapping past
// the start. Returns zero when the cycle is empty.
func (c *Cycle) Prev() xproto.Window {
	if len(c.order) == 0 {
		return 0
	}
	c.pos = (c.pos + len(c.order) - 1) % len(c.order)
	return c.order[c.pos]
}
