// Package events translates display-server notifications into transitions on
// the client model, the icon/session registry and the focus cycle, and plays
// the model's resulting change stream back onto the display. It is the only
// package that calls more than one of those components, so every ordering
// rule between them lives here.
package events

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/slimwm/internal/geometry"
	"github.com/1broseidon/slimwm/internal/session"
)

// Kind tags a display-server notification.
type Kind int

const (
	KindKeyPress Kind = iota
	KindButtonPress
	KindButtonRelease
	KindMotion
	KindMap
	KindUnmap
	KindDestroy
	KindExpose
	KindScreenChange
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindKeyPress:
		return "key-press"
	case KindButtonPress:
		return "button-press"
	case KindButtonRelease:
		return "button-release"
	case KindMotion:
		return "motion"
	case KindMap:
		return "map"
	case KindUnmap:
		return "unmap"
	case KindDestroy:
		return "destroy"
	case KindExpose:
		return "expose"
	case KindScreenChange:
		return "screen-change"
	default:
		return "unknown"
	}
}

// Event is one display-server notification, already reduced to the fields the
// mapper needs. Window is the notification's subject: the client, icon or
// placeholder window, or zero for events on the bare root (a desktop click,
// or a key press with nothing under the pointer).
type Event struct {
	Kind   Kind
	Window xproto.Window

	// Button events.
	Button   byte
	Modified bool // window-manager modifier held

	// Key events. Shift distinguishes the secondary chord on the same keysym.
	Keysym string
	Shift  bool

	// Pointer position in root coordinates, for button and motion events.
	RootX int
	RootY int

	// New monitor set, for screen-change events.
	Screens []geometry.Rect
}

// Attributes are the per-window properties the mapper consults when deciding
// whether and how to manage a window.
type Attributes struct {
	// Manageable is false for windows that asked not to be managed
	// (override-redirect); such windows are ignored permanently.
	Manageable bool
	// Class is the window's class name, used for per-class actions.
	Class string
	// StartIconified is set when the window's hints ask to start hidden.
	StartIconified bool
	// Dialog is set for transient dialog windows, which stack above all
	// normal layers.
	Dialog bool
}

// Display is the mapper's view of the display server. The x11 package
// provides the real implementation; tests substitute a fake. Mutating calls
// carry no error return: the adapter treats failures as its own concern and
// the mapper assumes they succeed or no-op.
type Display interface {
	// WaitForEvent blocks until the next notification arrives. It is the
	// event loop's only suspension point.
	WaitForEvent() (Event, error)

	// Attributes queries the manageability and hints of a window.
	Attributes(w xproto.Window) (Attributes, error)
	// Geometry queries a window's current position and size.
	Geometry(w xproto.Window) (geometry.Rect, error)

	MapWindow(w xproto.Window)
	UnmapWindow(w xproto.Window)
	MoveWindow(w xproto.Window, x, y int)
	ResizeWindow(w xproto.Window, width, height int)
	// Restack raises the given windows into the given bottom-to-top order.
	Restack(bottomToTop []xproto.Window)
	// FocusWindow moves the input focus; zero reverts focus to the root.
	FocusWindow(w xproto.Window)
	// AnnounceDesktop publishes the displayed desktop index to interested
	// clients (pagers, bars).
	AnnounceDesktop(index int)

	// CreatePlaceholder creates the outline window that tracks the pointer
	// during a move or resize.
	CreatePlaceholder(geom geometry.Rect) (xproto.Window, error)
	// CreateIcon creates an icon window for a hidden client and the surface
	// that draws its pixmap and title.
	CreateIcon(client xproto.Window, width, height int) (xproto.Window, session.Surface, error)
	// DestroyWindow releases a window the manager created (icon or
	// placeholder).
	DestroyWindow(w xproto.Window)

	// RequestClose asks the client to close itself via the delete protocol.
	RequestClose(w xproto.Window)
	// KillClient forcibly disconnects the client owning the window.
	KillClient(w xproto.Window)
}
