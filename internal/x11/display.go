package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/slimwm/internal/config"
	"github.com/1broseidon/slimwm/internal/events"
	"github.com/1broseidon/slimwm/internal/geometry"
	"github.com/1broseidon/slimwm/internal/session"
)

// Display implements events.Display on a live X connection.
type Display struct {
	conn *Connection
	cfg  *config.Config

	// Unmaps the manager performed itself. The server echoes every unmap
	// back as an UnmapNotify; those must not reach the mapper, which treats
	// an unmap as the client withdrawing itself.
	selfUnmaps map[xproto.Window]int

	// Placeholder currently holding the pointer grab, if any.
	grabbed xproto.Window
}

// NewDisplay wraps an established connection.
func NewDisplay(conn *Connection, cfg *config.Config) *Display {
	return &Display{
		conn:       conn,
		cfg:        cfg,
		selfUnmaps: make(map[xproto.Window]int),
	}
}

// WaitForEvent blocks until a notification the mapper cares about arrives.
// Uninteresting events are swallowed here.
func (d *Display) WaitForEvent() (events.Event, error) {
	for {
		raw, xerr := d.conn.XUtil.Conn().WaitForEvent()
		if raw == nil && xerr == nil {
			return events.Event{}, fmt.Errorf("X connection closed")
		}
		if xerr != nil {
			// Request errors are asynchronous; report and keep reading.
			continue
		}

		switch ev := raw.(type) {
		case xproto.KeyPressEvent:
			return events.Event{
				Kind: events.KindKeyPress,
				// Keys are grabbed on the root; the child is the window
				// under the pointer.
				Window: ev.Child,
				// Look the keysym up unshifted so the chord table can match
				// on the base symbol plus the shift flag.
				Keysym: keybind.LookupString(d.conn.XUtil, 0, ev.Detail),
				Shift:  ev.State&xproto.ModMaskShift != 0,
				RootX:  int(ev.RootX),
				RootY:  int(ev.RootY),
			}, nil

		case xproto.ButtonPressEvent:
			// Click-to-focus grabs are synchronous; release the click to the
			// application once observed.
			xproto.AllowEvents(d.conn.XUtil.Conn(), xproto.AllowReplayPointer, ev.Time)
			return events.Event{
				Kind:     events.KindButtonPress,
				Window:   d.subjectWindow(ev.Event, ev.Child),
				Button:   byte(ev.Detail),
				Modified: ev.State&wmModifier != 0,
				RootX:    int(ev.RootX),
				RootY:    int(ev.RootY),
			}, nil

		case xproto.ButtonReleaseEvent:
			return events.Event{
				Kind:     events.KindButtonRelease,
				Window:   d.subjectWindow(ev.Event, ev.Child),
				Button:   byte(ev.Detail),
				Modified: ev.State&wmModifier != 0,
				RootX:    int(ev.RootX),
				RootY:    int(ev.RootY),
			}, nil

		case xproto.MotionNotifyEvent:
			return events.Event{
				Kind:  events.KindMotion,
				RootX: int(ev.RootX),
				RootY: int(ev.RootY),
			}, nil

		case xproto.MapNotifyEvent:
			if ev.OverrideRedirect {
				continue
			}
			return events.Event{Kind: events.KindMap, Window: ev.Window}, nil

		case xproto.UnmapNotifyEvent:
			if d.selfUnmaps[ev.Window] > 0 {
				d.selfUnmaps[ev.Window]--
				if d.selfUnmaps[ev.Window] == 0 {
					delete(d.selfUnmaps, ev.Window)
				}
				continue
			}
			return events.Event{Kind: events.KindUnmap, Window: ev.Window}, nil

		case xproto.DestroyNotifyEvent:
			delete(d.selfUnmaps, ev.Window)
			return events.Event{Kind: events.KindDestroy, Window: ev.Window}, nil

		case xproto.ExposeEvent:
			if ev.Count > 0 {
				continue
			}
			return events.Event{Kind: events.KindExpose, Window: ev.Window}, nil

		case randr.ScreenChangeNotifyEvent:
			screens, err := d.conn.Monitors()
			if err != nil {
				continue
			}
			return events.Event{Kind: events.KindScreenChange, Screens: screens}, nil
		}
	}
}

// subjectWindow resolves which window a root-grabbed pointer event is about:
// the child under the pointer for root events, the event window itself for
// events delivered to icons and placeholders.
func (d *Display) subjectWindow(event, child xproto.Window) xproto.Window {
	if event == d.conn.Root {
		return child
	}
	return event
}

// Attributes queries a window's manageability and hints, and sets up the
// per-client event selections the manager relies on afterwards.
func (d *Display) Attributes(w xproto.Window) (events.Attributes, error) {
	winAttrs, err := xproto.GetWindowAttributes(d.conn.XUtil.Conn(), w).Reply()
	if err != nil {
		return events.Attributes{}, fmt.Errorf("failed to get window attributes: %w", err)
	}
	attrs := events.Attributes{Manageable: !winAttrs.OverrideRedirect}
	if !attrs.Manageable {
		return attrs, nil
	}

	if class, err := icccm.WmClassGet(d.conn.XUtil, w); err == nil && class != nil {
		attrs.Class = class.Class
	}
	if hints, err := icccm.WmHintsGet(d.conn.XUtil, w); err == nil && hints != nil {
		if hints.Flags&icccm.HintState != 0 && hints.InitialState == icccm.StateIconic {
			attrs.StartIconified = true
		}
	}
	if transient, err := icccm.WmTransientForGet(d.conn.XUtil, w); err == nil && transient != 0 {
		attrs.Dialog = true
	}

	d.prepareClient(w)
	return attrs, nil
}

// prepareClient configures a freshly managed window: border width, and a
// synchronous button grab so a plain click reaches the manager for focus
// before being replayed to the application.
func (d *Display) prepareClient(w xproto.Window) {
	xproto.ConfigureWindow(
		d.conn.XUtil.Conn(),
		w,
		xproto.ConfigWindowBorderWidth,
		[]uint32{uint32(d.cfg.BorderWidth)},
	)
	xproto.GrabButton(
		d.conn.XUtil.Conn(),
		true,
		w,
		uint16(xproto.EventMaskButtonPress),
		xproto.GrabModeSync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		0,
		xproto.ButtonIndex1,
		xproto.ModMaskAny,
	)
}

// Geometry queries a window's current position and size.
func (d *Display) Geometry(w xproto.Window) (geometry.Rect, error) {
	geom, err := xproto.GetGeometry(d.conn.XUtil.Conn(), xproto.Drawable(w)).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to get geometry: %w", err)
	}
	return geometry.Rect{
		X:      int(geom.X),
		Y:      int(geom.Y),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

func (d *Display) MapWindow(w xproto.Window) {
	xwindow.New(d.conn.XUtil, w).Map()
}

func (d *Display) UnmapWindow(w xproto.Window) {
	d.selfUnmaps[w]++
	xwindow.New(d.conn.XUtil, w).Unmap()
}

func (d *Display) MoveWindow(w xproto.Window, x, y int) {
	xwindow.New(d.conn.XUtil, w).Move(x, y)
}

func (d *Display) ResizeWindow(w xproto.Window, width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	xwindow.New(d.conn.XUtil, w).Resize(width, height)
}

// Restack raises the windows into the given bottom-to-top order by chaining
// sibling configures.
func (d *Display) Restack(bottomToTop []xproto.Window) {
	if len(bottomToTop) == 0 {
		return
	}
	xwindow.New(d.conn.XUtil, bottomToTop[0]).Stack(xproto.StackModeBelow)
	for i := 1; i < len(bottomToTop); i++ {
		xwindow.New(d.conn.XUtil, bottomToTop[i]).StackSibling(bottomToTop[i-1], xproto.StackModeAbove)
	}
}

// FocusWindow moves the input focus and publishes the active window; zero
// reverts to pointer-root focus.
func (d *Display) FocusWindow(w xproto.Window) {
	focus := w
	if focus == 0 {
		focus = xproto.Window(xproto.InputFocusPointerRoot)
	}
	xproto.SetInputFocus(
		d.conn.XUtil.Conn(),
		xproto.InputFocusPointerRoot,
		focus,
		xproto.TimeCurrentTime,
	)
	ewmh.ActiveWindowSet(d.conn.XUtil, w)
}

// AnnounceDesktop publishes the displayed desktop index for pagers and bars.
func (d *Display) AnnounceDesktop(index int) {
	ewmh.CurrentDesktopSet(d.conn.XUtil, uint(index))
}

// CreatePlaceholder creates the override-redirect outline window that tracks
// the pointer during a drag, maps it, and grabs the pointer so release and
// motion events keep arriving wherever the pointer goes.
func (d *Display) CreatePlaceholder(geom geometry.Rect) (xproto.Window, error) {
	w, err := d.createOverrideWindow(geom, xproto.EventMaskButtonRelease|xproto.EventMaskPointerMotion)
	if err != nil {
		return 0, fmt.Errorf("failed to create placeholder: %w", err)
	}
	xproto.MapWindow(d.conn.XUtil.Conn(), w)
	xproto.ConfigureWindow(
		d.conn.XUtil.Conn(),
		w,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	)

	xproto.GrabPointer(
		d.conn.XUtil.Conn(),
		true,
		d.conn.Root,
		uint16(xproto.EventMaskButtonRelease|xproto.EventMaskPointerMotion),
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		0,
		xproto.TimeCurrentTime,
	)
	d.grabbed = w
	return w, nil
}

func (d *Display) createOverrideWindow(geom geometry.Rect, eventMask uint32) (xproto.Window, error) {
	w, err := xproto.NewWindowId(d.conn.XUtil.Conn())
	if err != nil {
		return 0, err
	}
	screen := d.conn.XUtil.Screen()

	err = xproto.CreateWindowChecked(
		d.conn.XUtil.Conn(),
		screen.RootDepth,
		w,
		d.conn.Root,
		int16(geom.X), int16(geom.Y),
		uint16(geom.Width), uint16(geom.Height),
		1,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{screen.WhitePixel, screen.BlackPixel, 1, eventMask},
	).Check()
	if err != nil {
		return 0, err
	}
	return w, nil
}

// DestroyWindow releases a manager-created window, dropping the pointer grab
// if the window held it.
func (d *Display) DestroyWindow(w xproto.Window) {
	if d.grabbed == w {
		xproto.UngrabPointer(d.conn.XUtil.Conn(), xproto.TimeCurrentTime)
		d.grabbed = 0
	}
	delete(d.selfUnmaps, w)
	xwindow.New(d.conn.XUtil, w).Destroy()
}

// RequestClose asks the client to close itself via WM_DELETE_WINDOW.
func (d *Display) RequestClose(w xproto.Window) {
	protocols, err := xprop.Atm(d.conn.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return
	}
	deleteWindow, err := xprop.Atm(d.conn.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		return
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w,
		Type:   protocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(deleteWindow),
			uint32(xproto.TimeCurrentTime),
			0, 0, 0,
		}),
	}
	xproto.SendEvent(
		d.conn.XUtil.Conn(),
		false,
		w,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	)
}

// KillClient forcibly disconnects the client owning the window.
func (d *Display) KillClient(w xproto.Window) {
	xwindow.New(d.conn.XUtil, w).Kill()
}

var _ events.Display = (*Display)(nil)

// Interface check helper; session.Surface is implemented in icons.go.
var _ session.Surface = (*iconSurface)(nil)
