// Package session tracks the resources that shadow clients without being
// clients themselves: the icon windows standing in for iconified clients,
// and the single move-or-resize interaction that may be in flight. The
// registry owns each icon's drawing surface from registration until
// unregistration, and releases it exactly once.
package session

import "github.com/BurntSushi/xgb/xproto"

// Surface is an icon's drawing surface. The registry takes ownership at
// Register time and destroys the surface at Unregister time; nothing else
// may release it.
type Surface interface {
	// Redraw repaints the icon contents (pixmap and title).
	Redraw()
	// Destroy releases the surface's server-side resources.
	Destroy()
}

// Icon pairs a hidden client with the icon window representing it.
type Icon struct {
	Client xproto.Window
	Window xproto.Window

	surface Surface
}

// Redraw repaints the icon via its surface.
func (i *Icon) Redraw() {
	if i.surface != nil {
		i.surface.Redraw()
	}
}

// MoveResizeState tags the kind of interaction a session represents.
type MoveResizeState int

const (
	// MoveResizeNone is the sentinel returned when no session is active.
	MoveResizeNone MoveResizeState = iota
	MoveResizeMove
	MoveResizeResize
)

// String returns the string representation of the state.
func (s MoveResizeState) String() string {
	switch s {
	case MoveResizeMove:
		return "move"
	case MoveResizeResize:
		return "resize"
	default:
		return "none"
	}
}

type moveResize struct {
	client      xproto.Window
	placeholder xproto.Window
	state       MoveResizeState
	pointerX    int
	pointerY    int
}

// Registry is the icon bimap plus the at-most-one move/resize session.
type Registry struct {
	iconsByClient map[xproto.Window]*Icon
	iconsByWindow map[xproto.Window]*Icon
	session       *moveResize
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		iconsByClient: make(map[xproto.Window]*Icon),
		iconsByWindow: make(map[xproto.Window]*Icon),
	}
}

// RegisterIcon records a new icon and takes ownership of its surface.
func (r *Registry) RegisterIcon(client, window xproto.Window, surface Surface) *Icon {
	icon := &Icon{Client: client, Window: window, surface: surface}
	r.iconsByClient[client] = icon
	r.iconsByWindow[window] = icon
	return icon
}

// UnregisterIcon removes the icon from both mappings and destroys its
// surface. The icon window itself belongs to the display adapter and must be
// released by the caller afterwards.
func (r *Registry) UnregisterIcon(icon *Icon) {
	if icon == nil {
		return
	}
	delete(r.iconsByClient, icon.Client)
	delete(r.iconsByWindow, icon.Window)
	if icon.surface != nil {
		icon.surface.Destroy()
		icon.surface = nil
	}
}

// IconByClient returns the icon hiding the given client, or nil.
func (r *Registry) IconByClient(client xproto.Window) *Icon {
	return r.iconsByClient[client]
}

// IconByWindow returns the icon drawn in the given icon window, or nil.
func (r *Registry) IconByWindow(window xproto.Window) *Icon {
	return r.iconsByWindow[window]
}

// Icons returns every registered icon, in no particular order.
func (r *Registry) Icons() []*Icon {
	icons := make([]*Icon, 0, len(r.iconsByClient))
	for _, icon := range r.iconsByClient {
		icons = append(icons, icon)
	}
	return icons
}

// EnterMove starts a move session, recording the pointer position the next
// motion delta is measured from. A call while any session is active is a
// silent no-op: the first session wins until it is explicitly exited.
func (r *Registry) EnterMove(client, placeholder xproto.Window, pointerX, pointerY int) {
	r.enter(client, placeholder, MoveResizeMove, pointerX, pointerY)
}

// EnterResize starts a resize session under the same single-session rule.
func (r *Registry) EnterResize(client, placeholder xproto.Window, pointerX, pointerY int) {
	r.enter(client, placeholder, MoveResizeResize, pointerX, pointerY)
}

func (r *Registry) enter(client, placeholder xproto.Window, state MoveResizeState, x, y int) {
	if r.session != nil {
		return
	}
	r.session = &moveResize{
		client:      client,
		placeholder: placeholder,
		state:       state,
		pointerX:    x,
		pointerY:    y,
	}
}

// ExitMoveResize clears the session. Idempotent when none is active.
func (r *Registry) ExitMoveResize() {
	r.session = nil
}

// Placeholder returns the active session's placeholder window, or zero.
func (r *Registry) Placeholder() xproto.Window {
	if r.session == nil {
		return 0
	}
	return r.session.placeholder
}

// SessionClient returns the client being moved or resized, or zero.
func (r *Registry) SessionClient() xproto.Window {
	if r.session == nil {
		return 0
	}
	return r.session.client
}

// State returns the active session's kind, or MoveResizeNone.
func (r *Registry) State() MoveResizeState {
	if r.session == nil {
		return MoveResizeNone
	}
	return r.session.state
}

// UpdatePointer records a new pointer sample and returns the delta since the
// previous one. Without an active session it returns zero deltas.
func (r *Registry) UpdatePointer(x, y int) (dx, dy int) {
	if r.session == nil {
		return 0, 0
	}
	dx = x - r.session.pointerX
	dy = y - r.session.pointerY
	r.session.pointerX = x
	r.session.pointerY = y
	return dx, dy
}
