package model

import "github.com/BurntSushi/xgb/xproto"

// Change is a notification that the model mutated in a way the display must
// mirror. The model queues changes as transitions run; the event layer
// flushes the queue after each transition and applies every change to the
// display server. The variants form a closed set: consumers type-switch over
// all of them.
type Change interface {
	change()
}

// ChangeFocus reports that the focused client changed. New is zero when the
// focus was cleared.
type ChangeFocus struct {
	Old xproto.Window
	New xproto.Window
}

// ChangeClientDesktop reports that one client's desktop tag changed.
type ChangeClientDesktop struct {
	Window  xproto.Window
	Desktop Desktop
}

// ChangeCurrentDesktop reports that the displayed desktop changed, which
// affects the visibility of every non-sticky client.
type ChangeCurrentDesktop struct {
	Desktop int
}

// ChangeLayer reports that a client moved to a different stacking layer.
type ChangeLayer struct {
	Window xproto.Window
	Layer  int
}

// ChangeLocation reports that a client's position changed.
type ChangeLocation struct {
	Window xproto.Window
	X      int
	Y      int
}

// ChangeSize reports that a client's size changed.
type ChangeSize struct {
	Window xproto.Window
	Width  int
	Height int
}

func (ChangeFocus) change()          {}
func (ChangeClientDesktop) change()  {}
func (ChangeCurrentDesktop) change() {}
func (ChangeLayer) change()          {}
func (ChangeLocation) change()       {}
func (ChangeSize) change()           {}
