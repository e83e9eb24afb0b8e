// Package x11 is the display-server adapter: it owns the X connection and
// implements the event translation and window operations the event mapper
// needs, on top of xgb and xgbutil.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/1broseidon/slimwm/internal/config"
)

// wmModifier is the chord modifier for every manager key and button binding.
const wmModifier = xproto.ModMask4

// Connection manages the X11 connection and core X resources.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection establishes a connection to the X11 server and initializes
// the extensions the manager depends on.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	// Initialize keybind module (required for keysym lookup and key grabs)
	keybind.Initialize(xu)

	if err := randr.Init(xu.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// BecomeWM claims window-manager duties by selecting substructure
// notifications on the root window. It fails when another manager already
// holds the selection.
func (c *Connection) BecomeWM() error {
	err := xproto.ChangeWindowAttributesChecked(
		c.XUtil.Conn(),
		c.Root,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskSubstructureNotify},
	).Check()
	if err != nil {
		return fmt.Errorf("another window manager is running: %w", err)
	}

	// Screen-change notifications keep the monitor set current.
	if err := randr.SelectInputChecked(c.XUtil.Conn(), c.Root, randr.NotifyMaskScreenChange).Check(); err != nil {
		return fmt.Errorf("failed to select randr events: %w", err)
	}
	return nil
}

// Announce publishes the manager's desktop layout so pagers and bars can
// follow along.
func (c *Connection) Announce(desktops int) {
	ewmh.SupportedSet(c.XUtil, []string{
		"_NET_NUMBER_OF_DESKTOPS",
		"_NET_CURRENT_DESKTOP",
		"_NET_ACTIVE_WINDOW",
	})
	ewmh.NumberOfDesktopsSet(c.XUtil, uint(desktops))
	ewmh.CurrentDesktopSet(c.XUtil, 0)
}

// GrabKeys registers every binding chord on the root window, each with the
// manager modifier.
func (c *Connection) GrabKeys(bindings map[config.KeyBinding]config.Action) error {
	for binding := range bindings {
		spec := "Mod4-"
		if binding.Shift {
			spec += "Shift-"
		}
		spec += binding.Keysym

		mods, keycodes, err := keybind.ParseString(c.XUtil, spec)
		if err != nil {
			return fmt.Errorf("failed to parse key %q: %w", spec, err)
		}
		for _, keycode := range keycodes {
			if err := keybind.GrabChecked(c.XUtil, c.Root, mods, keycode); err != nil {
				return fmt.Errorf("failed to grab key %q: %w", spec, err)
			}
		}
	}
	return nil
}

// GrabButtons registers the modified pointer chords for move, resize and
// launch on the root window.
func (c *Connection) GrabButtons() {
	for _, button := range []xproto.Button{1, 3} {
		xproto.GrabButton(
			c.XUtil.Conn(),
			true,
			c.Root,
			uint16(xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|xproto.EventMaskPointerMotion),
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
			xproto.WindowNone,
			0,
			byte(button),
			wmModifier,
		)
	}
}

// Close cleanly disconnects from the X11 server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
