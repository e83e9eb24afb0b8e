package model

import "fmt"

// DesktopKind enumerates the states a client's desktop slot can be in. A
// client is always in exactly one of them: either it sits on a numbered
// desktop, is visible everywhere, or is hidden by an interaction mode
// (iconified, or the subject of a move/resize).
type DesktopKind int

const (
	// Numbered means the client lives on one numbered desktop.
	Numbered DesktopKind = iota
	// AllDesktops means the client is visible on every numbered desktop.
	AllDesktops
	// Iconified means the client is hidden behind its icon.
	Iconified
	// Moving means the client is the subject of the active move session.
	Moving
	// Resizing means the client is the subject of the active resize session.
	Resizing
)

// Desktop is the tagged desktop/mode slot of a client. Index is meaningful
// only when Kind is Numbered.
type Desktop struct {
	Kind  DesktopKind
	Index int
}

// OnDesktop returns the Numbered desktop with the given index.
func OnDesktop(index int) Desktop {
	return Desktop{Kind: Numbered, Index: index}
}

// Hidden reports whether the tag denotes a state with no on-screen window:
// iconified clients and move/resize subjects are represented by their icon or
// placeholder, never by the client window itself.
func (d Desktop) Hidden() bool {
	switch d.Kind {
	case Iconified, Moving, Resizing:
		return true
	case Numbered, AllDesktops:
		return false
	}
	return false
}

// String returns a readable form of the tag, for logs.
func (d Desktop) String() string {
	switch d.Kind {
	case Numbered:
		return fmt.Sprintf("desktop %d", d.Index)
	case AllDesktops:
		return "all desktops"
	case Iconified:
		return "iconified"
	case Moving:
		return "moving"
	case Resizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// ScaleMode is the geometry policy of a client.
type ScaleMode int

const (
	// ModeFloating keeps the client's explicit geometry.
	ModeFloating ScaleMode = iota
	// ModeMaximized fills the client's monitor.
	ModeMaximized
	// ModeSplitTop through ModeSplitRight pin the client to half the monitor.
	ModeSplitTop
	ModeSplitBottom
	ModeSplitLeft
	ModeSplitRight
)

// String returns the string representation of the mode.
func (s ScaleMode) String() string {
	switch s {
	case ModeFloating:
		return "floating"
	case ModeMaximized:
		return "maximized"
	case ModeSplitTop:
		return "split-top"
	case ModeSplitBottom:
		return "split-bottom"
	case ModeSplitLeft:
		return "split-left"
	case ModeSplitRight:
		return "split-right"
	default:
		return "unknown"
	}
}

// Visibility is a window's requested initial state, taken from its WM hints.
type Visibility int

const (
	// VisibilityVisible maps the window onto the current desktop.
	VisibilityVisible Visibility = iota
	// VisibilityHidden iconifies the window as soon as it is managed.
	VisibilityHidden
)
