package events

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/slimwm/internal/config"
	"github.com/1broseidon/slimwm/internal/focus"
	"github.com/1broseidon/slimwm/internal/geometry"
	"github.com/1broseidon/slimwm/internal/model"
	"github.com/1broseidon/slimwm/internal/session"
)

type resizeCall struct {
	window xproto.Window
	width  int
	height int
}

type fakeSurface struct {
	redraws  int
	destroys int
}

func (s *fakeSurface) Redraw()  { s.redraws++ }
func (s *fakeSurface) Destroy() { s.destroys++ }

// fakeDisplay records every call the mapper makes, and hands out window ids
// for the placeholders and icons the mapper asks it to create.
type fakeDisplay struct {
	events []Event
	attrs  map[xproto.Window]Attributes
	geoms  map[xproto.Window]geometry.Rect

	nextWindow xproto.Window

	mapped    map[xproto.Window]bool
	moves     map[xproto.Window][]geometry.Rect
	resizes   []resizeCall
	destroyed []xproto.Window
	focused   xproto.Window
	desktops  []int
	restacks  [][]xproto.Window
	closed    []xproto.Window
	killed    []xproto.Window
	surfaces  map[xproto.Window]*fakeSurface
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		attrs:      make(map[xproto.Window]Attributes),
		geoms:      make(map[xproto.Window]geometry.Rect),
		nextWindow: 1000,
		mapped:     make(map[xproto.Window]bool),
		moves:      make(map[xproto.Window][]geometry.Rect),
		surfaces:   make(map[xproto.Window]*fakeSurface),
	}
}

func (d *fakeDisplay) WaitForEvent() (Event, error) {
	if len(d.events) == 0 {
		return Event{}, fmt.Errorf("no more events")
	}
	ev := d.events[0]
	d.events = d.events[1:]
	return ev, nil
}

func (d *fakeDisplay) Attributes(w xproto.Window) (Attributes, error) {
	attrs, ok := d.attrs[w]
	if !ok {
		return Attributes{}, fmt.Errorf("no such window %d", w)
	}
	return attrs, nil
}

func (d *fakeDisplay) Geometry(w xproto.Window) (geometry.Rect, error) {
	geom, ok := d.geoms[w]
	if !ok {
		return geometry.Rect{}, fmt.Errorf("no such window %d", w)
	}
	return geom, nil
}

func (d *fakeDisplay) MapWindow(w xproto.Window)   { d.mapped[w] = true }
func (d *fakeDisplay) UnmapWindow(w xproto.Window) { d.mapped[w] = false }

func (d *fakeDisplay) MoveWindow(w xproto.Window, x, y int) {
	d.moves[w] = append(d.moves[w], geometry.Rect{X: x, Y: y})
}

func (d *fakeDisplay) ResizeWindow(w xproto.Window, width, height int) {
	d.resizes = append(d.resizes, resizeCall{w, width, height})
}

func (d *fakeDisplay) Restack(order []xproto.Window) {
	d.restacks = append(d.restacks, order)
}

func (d *fakeDisplay) FocusWindow(w xproto.Window) { d.focused = w }

func (d *fakeDisplay) AnnounceDesktop(index int) { d.desktops = append(d.desktops, index) }

func (d *fakeDisplay) CreatePlaceholder(geom geometry.Rect) (xproto.Window, error) {
	w := d.nextWindow
	d.nextWindow++
	d.geoms[w] = geom
	return w, nil
}

func (d *fakeDisplay) CreateIcon(client xproto.Window, width, height int) (xproto.Window, session.Surface, error) {
	w := d.nextWindow
	d.nextWindow++
	surface := &fakeSurface{}
	d.surfaces[w] = surface
	return w, surface, nil
}

func (d *fakeDisplay) DestroyWindow(w xproto.Window) {
	d.destroyed = append(d.destroyed, w)
}

func (d *fakeDisplay) RequestClose(w xproto.Window) { d.closed = append(d.closed, w) }
func (d *fakeDisplay) KillClient(w xproto.Window)   { d.killed = append(d.killed, w) }

func (d *fakeDisplay) wasDestroyed(w xproto.Window) bool {
	for _, have := range d.destroyed {
		if have == w {
			return true
		}
	}
	return false
}

type fixture struct {
	mapper   *Mapper
	display  *fakeDisplay
	clients  *model.Model
	sessions *session.Registry
	cycle    *focus.Cycle
	launched []string
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	f := &fixture{
		display:  newFakeDisplay(),
		clients:  model.New(cfg.Desktops, []geometry.Rect{{X: 0, Y: 0, Width: 1920, Height: 1080}}),
		sessions: session.NewRegistry(),
		cycle:    focus.NewCycle(),
	}
	run := func(command string) error {
		f.launched = append(f.launched, command)
		return nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mapper, err := NewMapper(f.display, f.clients, f.sessions, f.cycle, cfg, run, logger)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	f.mapper = mapper
	return f
}

// manage registers a window with the fake display and delivers its map event.
func (f *fixture) manage(t *testing.T, w xproto.Window, attrs Attributes, geom geometry.Rect) {
	t.Helper()
	f.display.attrs[w] = attrs
	f.display.geoms[w] = geom
	f.mapper.Handle(Event{Kind: KindMap, Window: w})
	if !f.clients.IsClient(w) {
		t.Fatalf("window %d not managed", w)
	}
}

func basicAttrs() Attributes {
	return Attributes{Manageable: true, Class: "xterm"}
}

func TestManageFocusesAndMaps(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{X: 10, Y: 10, Width: 200, Height: 100})

	if !f.display.mapped[1] {
		t.Fatalf("expected client mapped")
	}
	if f.display.focused != 1 {
		t.Fatalf("expected client focused, got %d", f.display.focused)
	}
	if !f.cycle.Has(1) {
		t.Fatalf("expected client in focus cycle")
	}
	if len(f.display.restacks) == 0 {
		t.Fatalf("expected a restack after managing")
	}
}

func TestUnmanageableWindowIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.display.attrs[1] = Attributes{Manageable: false}
	f.display.geoms[1] = geometry.Rect{Width: 100, Height: 100}

	f.mapper.Handle(Event{Kind: KindMap, Window: 1})
	if f.clients.IsClient(1) {
		t.Fatalf("override-redirect window must not be managed")
	}
}

func TestStartIconifiedWindow(t *testing.T) {
	f := newFixture(t, nil)
	f.display.attrs[1] = Attributes{Manageable: true, Class: "xterm", StartIconified: true}
	f.display.geoms[1] = geometry.Rect{Width: 100, Height: 100}
	f.mapper.Handle(Event{Kind: KindMap, Window: 1})

	desktop, err := f.clients.FindDesktop(1)
	if err != nil {
		t.Fatalf("FindDesktop: %v", err)
	}
	if desktop.Kind != model.Iconified {
		t.Fatalf("expected iconified start, got %s", desktop)
	}
	if f.sessions.IconByClient(1) == nil {
		t.Fatalf("expected icon registered for hidden start")
	}
	if f.display.focused == 1 {
		t.Fatalf("hidden window must not take focus")
	}
}

func TestDialogGetsDialogLayer(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, Attributes{Manageable: true, Class: "xterm", Dialog: true}, geometry.Rect{Width: 100, Height: 100})

	layer, err := f.clients.Layer(1)
	if err != nil {
		t.Fatalf("Layer: %v", err)
	}
	if layer != model.DialogLayer {
		t.Fatalf("Layer = %d, want %d", layer, model.DialogLayer)
	}
}

func TestUnmapKeepsRecordThenRemapResets(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})

	// Push the client off the current desktop, then unmap it.
	if err := f.clients.ClientNextDesktop(1); err != nil {
		t.Fatalf("ClientNextDesktop: %v", err)
	}
	f.mapper.Handle(Event{Kind: KindUnmap, Window: 1})

	if !f.clients.IsClient(1) {
		t.Fatalf("unmap must not remove the client record")
	}
	if f.clients.Focused() == 1 {
		t.Fatalf("unmap must clear focus")
	}
	if f.cycle.Has(1) {
		t.Fatalf("unmap must drop cycle participation")
	}

	// The remap finds the same record and resets it to the current desktop.
	f.mapper.Handle(Event{Kind: KindMap, Window: 1})
	desktop, _ := f.clients.FindDesktop(1)
	if desktop != model.OnDesktop(f.clients.CurrentDesktop()) {
		t.Fatalf("expected reset to current desktop, got %s", desktop)
	}
	if !f.display.mapped[1] {
		t.Fatalf("expected client visible after remap")
	}
	if !f.cycle.Has(1) {
		t.Fatalf("expected cycle participation restored by remap")
	}
}

func TestIconifyAndIconClick(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})

	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "h"})

	if f.display.mapped[1] {
		t.Fatalf("expected client unmapped after iconify")
	}
	icon := f.sessions.IconByClient(1)
	if icon == nil {
		t.Fatalf("expected icon registered")
	}
	if !f.display.mapped[icon.Window] {
		t.Fatalf("expected icon window mapped")
	}
	if f.display.surfaces[icon.Window].redraws == 0 {
		t.Fatalf("expected icon drawn after reflow")
	}

	// Clicking the icon brings the client back and releases the icon.
	iconWin := icon.Window
	f.mapper.Handle(Event{Kind: KindButtonPress, Window: iconWin, Button: MoveButton})

	if !f.display.mapped[1] {
		t.Fatalf("expected client mapped after icon click")
	}
	if f.display.focused != 1 {
		t.Fatalf("expected client refocused, got %d", f.display.focused)
	}
	if f.sessions.IconByClient(1) != nil || f.sessions.IconByWindow(iconWin) != nil {
		t.Fatalf("expected icon unregistered")
	}
	if !f.display.wasDestroyed(iconWin) {
		t.Fatalf("expected icon window destroyed")
	}
	if f.display.surfaces[iconWin].destroys != 1 {
		t.Fatalf("expected surface destroyed once, got %d", f.display.surfaces[iconWin].destroys)
	}
}

func TestExposeRedrawsIcon(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})
	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "h"})

	icon := f.sessions.IconByClient(1)
	before := f.display.surfaces[icon.Window].redraws
	f.mapper.Handle(Event{Kind: KindExpose, Window: icon.Window})
	if got := f.display.surfaces[icon.Window].redraws; got != before+1 {
		t.Fatalf("expected one more redraw, got %d (was %d)", got, before)
	}
}

func TestMoveSessionProtocol(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{X: 10, Y: 20, Width: 100, Height: 50})

	f.mapper.Handle(Event{Kind: KindButtonPress, Window: 1, Button: MoveButton, Modified: true, RootX: 50, RootY: 50})

	ph := f.sessions.Placeholder()
	if ph == 0 {
		t.Fatalf("expected placeholder window")
	}
	if f.display.mapped[1] {
		t.Fatalf("expected client hidden during move")
	}

	// Motion drags the placeholder, not the client.
	f.mapper.Handle(Event{Kind: KindMotion, RootX: 60, RootY: 45})
	moves := f.display.moves[ph]
	if len(moves) != 1 || moves[0].X != 20 || moves[0].Y != 15 {
		t.Fatalf("unexpected placeholder moves: %+v", moves)
	}
	if len(f.display.moves[1]) != 0 {
		t.Fatalf("client must not move mid-session")
	}

	// Release commits the placeholder position to the client.
	f.mapper.Handle(Event{Kind: KindButtonRelease})

	if f.sessions.State() != session.MoveResizeNone {
		t.Fatalf("expected session over")
	}
	if !f.display.wasDestroyed(ph) {
		t.Fatalf("expected placeholder destroyed")
	}
	geom, _ := f.clients.Geometry(1)
	if geom.X != 20 || geom.Y != 15 {
		t.Fatalf("committed position = %d,%d, want 20,15", geom.X, geom.Y)
	}
	if !f.display.mapped[1] {
		t.Fatalf("expected client visible after commit")
	}
	if f.display.focused != 1 {
		t.Fatalf("expected client refocused after commit")
	}
}

func TestReleaseOnOtherWindowKeepsSession(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})
	f.manage(t, 2, basicAttrs(), geometry.Rect{Width: 100, Height: 100})

	f.mapper.Handle(Event{Kind: KindButtonPress, Window: 1, Button: MoveButton, Modified: true})
	ph := f.sessions.Placeholder()

	// A stray release on another window is not the drag ending.
	f.mapper.Handle(Event{Kind: KindButtonRelease, Window: 2})
	if f.sessions.State() == session.MoveResizeNone {
		t.Fatalf("stray release must not end the session")
	}

	f.mapper.Handle(Event{Kind: KindButtonRelease, Window: ph})
	if f.sessions.State() != session.MoveResizeNone {
		t.Fatalf("expected commit on placeholder release")
	}
}

func TestSecondSessionIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})
	f.manage(t, 2, basicAttrs(), geometry.Rect{Width: 100, Height: 100})

	f.mapper.Handle(Event{Kind: KindButtonPress, Window: 1, Button: MoveButton, Modified: true})
	first := f.sessions.SessionClient()
	f.mapper.Handle(Event{Kind: KindButtonPress, Window: 2, Button: ResizeButton, Modified: true})

	if got := f.sessions.SessionClient(); got != first {
		t.Fatalf("expected first session kept, client = %d", got)
	}
	desktop, _ := f.clients.FindDesktop(2)
	if desktop.Hidden() {
		t.Fatalf("second client must stay visible, got %s", desktop)
	}
}

func TestResizeClampsAtZero(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{X: 0, Y: 0, Width: 50, Height: 40})

	f.mapper.Handle(Event{Kind: KindButtonPress, Window: 1, Button: ResizeButton, Modified: true, RootX: 100, RootY: 100})
	ph := f.sessions.Placeholder()

	// A delta that would drive the width negative clamps to zero.
	f.mapper.Handle(Event{Kind: KindMotion, RootX: 20, RootY: 90})
	if len(f.display.resizes) != 1 {
		t.Fatalf("expected one resize, got %d", len(f.display.resizes))
	}
	if got := f.display.resizes[0]; got.window != ph || got.width != 0 || got.height != 30 {
		t.Fatalf("unexpected resize: %+v", got)
	}

	// The committed client size never goes below one pixel.
	f.mapper.Handle(Event{Kind: KindButtonRelease})
	geom, _ := f.clients.Geometry(1)
	if geom.Width != 1 || geom.Height != 30 {
		t.Fatalf("committed size = %dx%d, want 1x30", geom.Width, geom.Height)
	}
}

func TestRemapDuringSessionCommits(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100})

	f.mapper.Handle(Event{Kind: KindButtonPress, Window: 1, Button: MoveButton, Modified: true, RootX: 0, RootY: 0})
	f.mapper.Handle(Event{Kind: KindMotion, RootX: 30, RootY: 0})

	// The client mapping itself mid-drag ends the session at the placeholder
	// position.
	f.mapper.Handle(Event{Kind: KindMap, Window: 1})

	if f.sessions.State() != session.MoveResizeNone {
		t.Fatalf("expected session over after remap")
	}
	geom, _ := f.clients.Geometry(1)
	if geom.X != 30 {
		t.Fatalf("expected committed x=30, got %d", geom.X)
	}
}

func TestDestroyMidMove(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})

	f.mapper.Handle(Event{Kind: KindButtonPress, Window: 1, Button: MoveButton, Modified: true})
	ph := f.sessions.Placeholder()

	f.mapper.Handle(Event{Kind: KindDestroy, Window: 1})

	if f.clients.IsClient(1) {
		t.Fatalf("expected client removed")
	}
	if f.sessions.State() != session.MoveResizeNone {
		t.Fatalf("expected session aborted")
	}
	if !f.display.wasDestroyed(ph) {
		t.Fatalf("expected placeholder destroyed")
	}
	if f.cycle.Has(1) {
		t.Fatalf("expected cycle participation dropped")
	}
}

func TestDestroyIconifiedClientReleasesIcon(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})
	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "h"})
	iconWin := f.sessions.IconByClient(1).Window

	f.mapper.Handle(Event{Kind: KindDestroy, Window: 1})

	if f.sessions.IconByWindow(iconWin) != nil {
		t.Fatalf("expected icon mapping cleaned up")
	}
	if !f.display.wasDestroyed(iconWin) {
		t.Fatalf("expected icon window destroyed")
	}
}

func TestPlainClickFocuses(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})
	f.manage(t, 2, basicAttrs(), geometry.Rect{Width: 100, Height: 100})

	f.mapper.Handle(Event{Kind: KindButtonPress, Window: 1, Button: MoveButton})
	if f.display.focused != 1 {
		t.Fatalf("expected click to focus, got %d", f.display.focused)
	}
	if f.sessions.State() != session.MoveResizeNone {
		t.Fatalf("plain click must not start a session")
	}
}

func TestLaunchClickOnDesktop(t *testing.T) {
	f := newFixture(t, nil)
	f.mapper.Handle(Event{Kind: KindButtonPress, Window: 0, Button: LaunchButton, Modified: true})

	if len(f.launched) != 1 || f.launched[0] != "xterm" {
		t.Fatalf("expected xterm launched, got %v", f.launched)
	}
}

func TestKeyActionsOnFocusedClient(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{X: 5, Y: 5, Width: 100, Height: 100})

	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "m"})
	mode, _ := f.clients.Mode(1)
	if mode != model.ModeMaximized {
		t.Fatalf("expected maximized, got %s", mode)
	}

	// The same key toggles back to floating geometry.
	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "m"})
	mode, _ = f.clients.Mode(1)
	if mode != model.ModeFloating {
		t.Fatalf("expected floating again, got %s", mode)
	}
	geom, _ := f.clients.Geometry(1)
	if geom.X != 5 || geom.Width != 100 {
		t.Fatalf("expected floating geometry restored, got %+v", geom)
	}

	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "c"})
	if len(f.display.closed) != 1 || f.display.closed[0] != 1 {
		t.Fatalf("expected close request, got %v", f.display.closed)
	}

	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "x"})
	if len(f.display.killed) != 1 || f.display.killed[0] != 1 {
		t.Fatalf("expected kill, got %v", f.display.killed)
	}
}

func TestHotkeyTargetMouse(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.HotkeyTarget = config.TargetMouse
	f := newFixture(t, cfg)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})
	f.manage(t, 2, basicAttrs(), geometry.Rect{Width: 100, Height: 100})

	// Focus is on 2; the pointer hovers 1. The hovered window is iconified.
	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "h", Window: 1})

	desktop, _ := f.clients.FindDesktop(1)
	if desktop.Kind != model.Iconified {
		t.Fatalf("expected hovered client iconified, got %s", desktop)
	}
	desktop, _ = f.clients.FindDesktop(2)
	if desktop.Kind == model.Iconified {
		t.Fatalf("focused client must be untouched")
	}
}

func TestDesktopSwitchRemapsClients(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})

	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "period"})
	if f.display.mapped[1] {
		t.Fatalf("expected client hidden after desktop switch")
	}
	if len(f.display.desktops) != 1 || f.display.desktops[0] != 1 {
		t.Fatalf("expected desktop 1 announced, got %v", f.display.desktops)
	}

	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "comma"})
	if !f.display.mapped[1] {
		t.Fatalf("expected client back on its desktop")
	}
}

func TestStickySurvivesDesktopSwitch(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})

	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "backslash"})
	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "period"})

	if !f.display.mapped[1] {
		t.Fatalf("expected sticky client to stay visible")
	}
	if f.display.focused != 1 {
		t.Fatalf("expected sticky client to keep focus, got %d", f.display.focused)
	}
}

func TestCycleFocusSkipsHiddenClients(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})
	f.manage(t, 2, basicAttrs(), geometry.Rect{Width: 100, Height: 100})
	f.manage(t, 3, basicAttrs(), geometry.Rect{Width: 100, Height: 100})

	// Iconify the focused client (3), refocus 2, then cycle: the cycle must
	// never land on the hidden client.
	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "h"})
	f.clients.ForceFocus(2)
	f.mapper.Handle(Event{Kind: KindKeyPress, Keysym: "Tab"})

	focused := f.clients.Focused()
	if focused == 0 {
		t.Fatalf("expected a focus target")
	}
	if desktop, _ := f.clients.FindDesktop(focused); desktop.Hidden() {
		t.Fatalf("cycle landed on hidden client %d", focused)
	}
}

func TestClassActionSnap(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ClassActions["browser"] = config.ClassAction{Snap: "right", Layer: 7}
	f := newFixture(t, cfg)
	f.manage(t, 1, Attributes{Manageable: true, Class: "browser"}, geometry.Rect{X: 5, Y: 5, Width: 100, Height: 100})

	geom, _ := f.clients.Geometry(1)
	want := geometry.Rect{X: 960, Y: 0, Width: 960, Height: 1080}
	if geom != want {
		t.Fatalf("geometry = %+v, want %+v", geom, want)
	}
	layer, _ := f.clients.Layer(1)
	if layer != 7 {
		t.Fatalf("layer = %d, want 7", layer)
	}
}

func TestClassActionExplicitPositionBeatsSnap(t *testing.T) {
	x, y := 0.5, 0.25
	cfg := config.DefaultConfig()
	cfg.ClassActions["browser"] = config.ClassAction{Snap: "right", XRel: &x, YRel: &y}
	f := newFixture(t, cfg)
	f.manage(t, 1, Attributes{Manageable: true, Class: "browser"}, geometry.Rect{X: 5, Y: 5, Width: 100, Height: 100})

	mode, _ := f.clients.Mode(1)
	if mode != model.ModeFloating {
		t.Fatalf("expected floating (position beats snap), got %s", mode)
	}
	geom, _ := f.clients.Geometry(1)
	if geom.X != 960 || geom.Y != 270 {
		t.Fatalf("position = %d,%d, want 960,270", geom.X, geom.Y)
	}
}

func TestClassActionsSkippedWhenHidden(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ClassActions["browser"] = config.ClassAction{Maximize: true}
	f := newFixture(t, cfg)
	f.display.attrs[1] = Attributes{Manageable: true, Class: "browser", StartIconified: true}
	f.display.geoms[1] = geometry.Rect{Width: 100, Height: 100}
	f.mapper.Handle(Event{Kind: KindMap, Window: 1})

	mode, _ := f.clients.Mode(1)
	if mode != model.ModeFloating {
		t.Fatalf("class actions must not apply to hidden start, got %s", mode)
	}
}

func TestNoAutofocusClass(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.NoAutofocus = []string{"notification"}
	f := newFixture(t, cfg)
	f.manage(t, 1, basicAttrs(), geometry.Rect{Width: 100, Height: 100})
	f.manage(t, 2, Attributes{Manageable: true, Class: "notification"}, geometry.Rect{Width: 50, Height: 50})

	if f.clients.Focused() != 1 {
		t.Fatalf("expected focus kept on 1, got %d", f.clients.Focused())
	}
}

func TestScreenChangeReassignsClients(t *testing.T) {
	f := newFixture(t, nil)
	f.manage(t, 1, basicAttrs(), geometry.Rect{X: 10, Y: 10, Width: 100, Height: 100})
	f.clients.ChangeMode(1, model.ModeMaximized)
	f.mapper.Handle(Event{Kind: KindScreenChange, Screens: []geometry.Rect{{X: 0, Y: 0, Width: 1280, Height: 720}}})

	geom, _ := f.clients.Geometry(1)
	want := geometry.Rect{X: 0, Y: 0, Width: 1280, Height: 720}
	if geom != want {
		t.Fatalf("geometry = %+v, want %+v", geom, want)
	}
}

func TestExitActionStopsLoop(t *testing.T) {
	f := newFixture(t, nil)
	f.display.events = []Event{{Kind: KindKeyPress, Keysym: "Escape"}}

	cont, err := f.mapper.ProcessNext()
	if err != nil {
		t.Fatalf("ProcessNext: %v", err)
	}
	if cont {
		t.Fatalf("expected loop stop after exit action")
	}
}

func TestAdoptWindow(t *testing.T) {
	f := newFixture(t, nil)
	f.display.attrs[1] = Attributes{Manageable: true, Class: "xterm"}
	f.display.geoms[1] = geometry.Rect{X: 1, Y: 2, Width: 300, Height: 200}

	f.mapper.AdoptWindow(1)
	if !f.clients.IsClient(1) {
		t.Fatalf("expected window adopted")
	}

	// Adopting twice must not duplicate the record.
	f.mapper.AdoptWindow(1)
	if len(f.clients.Clients()) != 1 {
		t.Fatalf("expected one client, got %d", len(f.clients.Clients()))
	}
}
