package events

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/slimwm/internal/config"
	"github.com/1broseidon/slimwm/internal/focus"
	"github.com/1broseidon/slimwm/internal/geometry"
	"github.com/1broseidon/slimwm/internal/model"
	"github.com/1broseidon/slimwm/internal/session"
)

// Pointer buttons used by the interaction protocol. Move and launch share
// button 1; they are distinguished by what sits under the pointer.
const (
	MoveButton   = 1
	ResizeButton = 3
	LaunchButton = 1
)

// Mapper drives the whole manager: it consumes the event stream, applies
// transitions to the model, registry and focus cycle, and mirrors the model's
// change stream back onto the display.
type Mapper struct {
	display  Display
	clients  *model.Model
	sessions *session.Registry
	cycle    *focus.Cycle
	cfg      *config.Config
	bindings map[config.KeyBinding]config.Action
	run      func(command string) error
	logger   *slog.Logger

	// Placeholder geometry during a move/resize. The placeholder is the only
	// window updated live; this is the value committed at session end.
	phGeom geometry.Rect

	done bool
}

// NewMapper builds a mapper over the given collaborators. run launches the
// configured shell command and may be nil to disable launching.
func NewMapper(display Display, clients *model.Model, sessions *session.Registry, cycle *focus.Cycle, cfg *config.Config, run func(string) error, logger *slog.Logger) (*Mapper, error) {
	bindings, err := cfg.BindingTable()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve key bindings: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{
		display:  display,
		clients:  clients,
		sessions: sessions,
		cycle:    cycle,
		cfg:      cfg,
		bindings: bindings,
		run:      run,
		logger:   logger,
	}, nil
}

// Bindings returns the resolved key table so the display adapter grabs
// exactly the chords the mapper dispatches.
func (m *Mapper) Bindings() map[config.KeyBinding]config.Action {
	return m.bindings
}

// ProcessNext blocks for one notification, handles it, and applies the
// resulting model changes to the display. It returns false once an exit
// action has run.
func (m *Mapper) ProcessNext() (bool, error) {
	ev, err := m.display.WaitForEvent()
	if err != nil {
		return false, fmt.Errorf("failed to read event: %w", err)
	}
	m.Handle(ev)
	return !m.done, nil
}

// Handle processes a single notification and flushes the change stream.
func (m *Mapper) Handle(ev Event) {
	switch ev.Kind {
	case KindMap:
		m.handleMap(ev.Window)
	case KindUnmap:
		m.handleUnmap(ev.Window)
	case KindDestroy:
		m.handleDestroy(ev.Window)
	case KindButtonPress:
		m.handleButtonPress(ev)
	case KindButtonRelease:
		m.handleButtonRelease(ev)
	case KindMotion:
		m.handleMotion(ev)
	case KindKeyPress:
		m.handleKeyPress(ev)
	case KindExpose:
		if icon := m.sessions.IconByWindow(ev.Window); icon != nil {
			icon.Redraw()
		}
	case KindScreenChange:
		m.logger.Info("screen configuration changed", "monitors", len(ev.Screens))
		m.clients.UpdateScreens(ev.Screens)
		m.reflowIcons()
	}
	m.applyChanges()
}

// AdoptWindow imports a window that predates the manager. It runs the same
// path as a map notification for an unknown window.
func (m *Mapper) AdoptWindow(w xproto.Window) {
	if m.clients.IsClient(w) {
		return
	}
	m.manage(w)
	m.applyChanges()
}

// handleMap implements the remap policies: a map of a known client is a
// deiconify, a session commit, or a desktop reset depending on its tag; a map
// of an unknown window starts management.
func (m *Mapper) handleMap(w xproto.Window) {
	if !m.clients.IsClient(w) {
		m.manage(w)
		return
	}

	desktop, err := m.clients.FindDesktop(w)
	if err != nil {
		return
	}
	// A remap restores the cycle participation an earlier unmap dropped.
	m.cycle.Add(w)
	switch desktop.Kind {
	case model.Iconified:
		m.deiconify(w)
	case model.Moving, model.Resizing:
		m.commitSession()
	case model.Numbered:
		if sticky, _ := m.clients.IsSticky(w); !sticky {
			if err := m.clients.ClientResetDesktop(w); err != nil {
				m.logger.Warn("desktop reset failed", "window", w, "error", err)
			}
		}
	case model.AllDesktops:
		// Visible everywhere already; nothing to reset.
	}
}

func (m *Mapper) manage(w xproto.Window) {
	attrs, err := m.display.Attributes(w)
	if err != nil {
		m.logger.Debug("attribute query failed, not managing", "window", w, "error", err)
		return
	}
	if !attrs.Manageable {
		m.logger.Debug("window declined management", "window", w)
		return
	}
	geom, err := m.display.Geometry(w)
	if err != nil {
		m.logger.Debug("geometry query failed, not managing", "window", w, "error", err)
		return
	}

	vis := model.VisibilityVisible
	if attrs.StartIconified {
		vis = model.VisibilityHidden
	}
	autoFocus := !attrs.StartIconified && !m.noAutofocus(attrs.Class)

	if err := m.clients.AddClient(w, vis, geom, autoFocus); err != nil {
		m.logger.Warn("failed to manage window", "window", w, "error", err)
		return
	}
	m.cycle.Add(w)
	m.logger.Info("managing window", "window", w, "class", attrs.Class, "hidden", attrs.StartIconified)

	if attrs.Dialog {
		m.clients.SetLayer(w, model.DialogLayer)
	}
	if attrs.StartIconified {
		m.createIcon(w)
		return
	}
	m.applyClassActions(w, attrs.Class)
}

func (m *Mapper) noAutofocus(class string) bool {
	for _, have := range m.cfg.NoAutofocus {
		if have == class {
			return true
		}
	}
	return false
}

// applyClassActions applies the configured actions for a window's class on
// first management. An explicit relative position overrides a configured
// snap: the snap would pin the mode and swallow the move.
func (m *Mapper) applyClassActions(w xproto.Window, class string) {
	act, ok := m.cfg.ClassActions[class]
	if !ok {
		return
	}

	if act.Stick {
		m.clients.ToggleStick(w)
	}
	if act.Layer != 0 {
		m.clients.SetLayer(w, act.Layer)
	}
	if act.Maximize {
		m.clients.ChangeMode(w, model.ModeMaximized)
		return
	}

	if act.XRel != nil || act.YRel != nil {
		screen, err := m.clients.GetScreen(w)
		if err != nil {
			return
		}
		geom, err := m.clients.Geometry(w)
		if err != nil {
			return
		}
		x, y := geom.X, geom.Y
		if act.XRel != nil {
			x = screen.X + int(*act.XRel*float64(screen.Width))
		}
		if act.YRel != nil {
			y = screen.Y + int(*act.YRel*float64(screen.Height))
		}
		m.clients.SetLocation(w, x, y)
		return
	}

	switch act.Snap {
	case "left":
		m.clients.ChangeMode(w, model.ModeSplitLeft)
	case "right":
		m.clients.ChangeMode(w, model.ModeSplitRight)
	case "top":
		m.clients.ChangeMode(w, model.ModeSplitTop)
	case "bottom":
		m.clients.ChangeMode(w, model.ModeSplitBottom)
	}
}

// handleUnmap keeps the client record (an unmap may be a temporary hide, not
// a destroy) but drops its focus and cycle participation.
func (m *Mapper) handleUnmap(w xproto.Window) {
	if !m.clients.IsClient(w) {
		return
	}
	m.clients.UnfocusIfFocused(w)
	m.cycle.Remove(w)
}

// handleDestroy removes the record entirely and cascades icon and session
// cleanup.
func (m *Mapper) handleDestroy(w xproto.Window) {
	if !m.clients.IsClient(w) {
		return
	}

	if icon := m.sessions.IconByClient(w); icon != nil {
		m.sessions.UnregisterIcon(icon)
		m.display.DestroyWindow(icon.Window)
		m.reflowIcons()
	}
	if m.sessions.SessionClient() == w {
		m.abortSession()
	}

	if err := m.clients.RemoveClient(w); err != nil {
		m.logger.Warn("remove failed", "window", w, "error", err)
	}
	m.cycle.Remove(w)
	m.logger.Info("window destroyed", "window", w)
}

func (m *Mapper) handleButtonPress(ev Event) {
	if icon := m.sessions.IconByWindow(ev.Window); icon != nil {
		m.deiconify(icon.Client)
		return
	}

	if m.clients.IsClient(ev.Window) {
		if !ev.Modified {
			if err := m.clients.ForceFocus(ev.Window); err != nil {
				m.logger.Debug("focus refused", "window", ev.Window, "error", err)
			}
			return
		}
		switch ev.Button {
		case MoveButton:
			m.startSession(ev, false)
		case ResizeButton:
			m.startSession(ev, true)
		}
		return
	}

	// Nothing managed under the pointer: a modified launch click on the bare
	// desktop runs the configured command.
	if ev.Modified && ev.Button == LaunchButton && m.run != nil {
		if err := m.run(m.cfg.Shell); err != nil {
			m.logger.Error("launch failed", "command", m.cfg.Shell, "error", err)
		}
	}
}

func (m *Mapper) startSession(ev Event, resize bool) {
	w := ev.Window
	geom, err := m.clients.Geometry(w)
	if err != nil {
		return
	}

	var start func(xproto.Window) error
	if resize {
		start = m.clients.StartResizing
	} else {
		start = m.clients.StartMoving
	}
	if err := start(w); err != nil {
		if errors.Is(err, model.ErrSessionActive) {
			m.logger.Debug("session already active", "window", w)
		} else {
			m.logger.Warn("session start refused", "window", w, "error", err)
		}
		return
	}

	ph, err := m.display.CreatePlaceholder(geom)
	if err != nil {
		// Roll the tag back so the client is not stranded hidden.
		m.logger.Error("placeholder creation failed", "window", w, "error", err)
		if resize {
			m.clients.StopResizing(w, geom.Width, geom.Height)
		} else {
			m.clients.StopMoving(w, geom.X, geom.Y)
		}
		return
	}

	if resize {
		m.sessions.EnterResize(w, ph, ev.RootX, ev.RootY)
	} else {
		m.sessions.EnterMove(w, ph, ev.RootX, ev.RootY)
	}
	m.phGeom = geom
}

// handleButtonRelease commits the active session when the release lands on
// the placeholder. The pointer grab during a drag reports the placeholder as
// the event window; a zero window is accepted for adapters without a grab.
func (m *Mapper) handleButtonRelease(ev Event) {
	if m.sessions.State() == session.MoveResizeNone {
		return
	}
	if ev.Window != 0 && ev.Window != m.sessions.Placeholder() {
		return
	}
	m.commitSession()
}

func (m *Mapper) commitSession() {
	client := m.sessions.SessionClient()
	ph := m.sessions.Placeholder()
	state := m.sessions.State()
	if state == session.MoveResizeNone {
		return
	}

	m.sessions.ExitMoveResize()
	m.display.DestroyWindow(ph)

	var err error
	switch state {
	case session.MoveResizeMove:
		err = m.clients.StopMoving(client, m.phGeom.X, m.phGeom.Y)
	case session.MoveResizeResize:
		err = m.clients.StopResizing(client, m.phGeom.Width, m.phGeom.Height)
	}
	if err != nil {
		m.logger.Warn("session commit failed", "window", client, "error", err)
	}
}

// abortSession tears the session down without committing geometry, for a
// client destroyed mid-drag.
func (m *Mapper) abortSession() {
	ph := m.sessions.Placeholder()
	m.sessions.ExitMoveResize()
	if ph != 0 {
		m.display.DestroyWindow(ph)
	}
}

// handleMotion applies the pointer delta to the placeholder: to its position
// during a move, to its size during a resize. Resize deltas are clamped so
// the placeholder never goes negative.
func (m *Mapper) handleMotion(ev Event) {
	state := m.sessions.State()
	if state == session.MoveResizeNone {
		return
	}
	dx, dy := m.sessions.UpdatePointer(ev.RootX, ev.RootY)
	if dx == 0 && dy == 0 {
		return
	}
	ph := m.sessions.Placeholder()

	switch state {
	case session.MoveResizeMove:
		m.phGeom.X += dx
		m.phGeom.Y += dy
		m.display.MoveWindow(ph, m.phGeom.X, m.phGeom.Y)
	case session.MoveResizeResize:
		m.phGeom.Width = max(0, m.phGeom.Width+dx)
		m.phGeom.Height = max(0, m.phGeom.Height+dy)
		m.display.ResizeWindow(ph, m.phGeom.Width, m.phGeom.Height)
	}
}

func (m *Mapper) handleKeyPress(ev Event) {
	action, ok := m.bindings[config.KeyBinding{Keysym: ev.Keysym, Shift: ev.Shift}]
	if !ok {
		return
	}

	// Client actions target the focused window or the window under the
	// pointer, per configuration. The adapter reports the hovered window in
	// ev.Window for key events.
	target := m.clients.Focused()
	if m.cfg.HotkeyTarget == config.TargetMouse {
		target = ev.Window
	}

	switch action {
	case config.ActionExit:
		m.logger.Info("exit requested")
		m.done = true
	case config.ActionCycleFocus:
		m.cycleFocus(m.cycle.Next, m.cycle.Len())
	case config.ActionCycleFocusBack:
		m.cycleFocus(m.cycle.Prev, m.cycle.Len())
	case config.ActionNextDesktop:
		m.switchDesktop(m.clients.NextDesktop)
	case config.ActionPrevDesktop:
		m.switchDesktop(m.clients.PrevDesktop)
	default:
		m.clientAction(action, target)
	}
}

func (m *Mapper) switchDesktop(op func() error) {
	if err := op(); err != nil {
		if errors.Is(err, model.ErrSessionActive) {
			m.logger.Debug("desktop switch refused during move/resize")
			return
		}
		m.logger.Warn("desktop switch failed", "error", err)
	}
}

// cycleFocus walks the focus order until it finds a visible client, trying
// each participant at most once.
func (m *Mapper) cycleFocus(step func() xproto.Window, limit int) {
	for i := 0; i < limit; i++ {
		w := step()
		if w == 0 {
			return
		}
		if visible, err := m.clients.IsVisible(w); err != nil || !visible {
			continue
		}
		if err := m.clients.ForceFocus(w); err == nil {
			return
		}
	}
}

func (m *Mapper) clientAction(action config.Action, target xproto.Window) {
	if !m.clients.IsClient(target) {
		return
	}

	var err error
	switch action {
	case config.ActionIconify:
		m.iconify(target)
	case config.ActionToggleStick:
		err = m.clients.ToggleStick(target)
	case config.ActionMaximize:
		err = m.toggleMode(target, model.ModeMaximized)
	case config.ActionSnapLeft:
		err = m.toggleMode(target, model.ModeSplitLeft)
	case config.ActionSnapRight:
		err = m.toggleMode(target, model.ModeSplitRight)
	case config.ActionSnapTop:
		err = m.toggleMode(target, model.ModeSplitTop)
	case config.ActionSnapBottom:
		err = m.toggleMode(target, model.ModeSplitBottom)
	case config.ActionScreenLeft:
		err = m.clients.ToRelativeScreen(target, geometry.DirLeft)
	case config.ActionScreenRight:
		err = m.clients.ToRelativeScreen(target, geometry.DirRight)
	case config.ActionScreenTop:
		err = m.clients.ToRelativeScreen(target, geometry.DirUp)
	case config.ActionScreenBottom:
		err = m.clients.ToRelativeScreen(target, geometry.DirDown)
	case config.ActionClientNextDesktop:
		err = m.clients.ClientNextDesktop(target)
	case config.ActionClientPrevDesktop:
		err = m.clients.ClientPrevDesktop(target)
	case config.ActionLayerUp:
		err = m.clients.UpLayer(target)
	case config.ActionLayerDown:
		err = m.clients.DownLayer(target)
	case config.ActionLayerTop:
		err = m.clients.SetLayer(target, model.MaxLayer)
	case config.ActionLayerBottom:
		err = m.clients.SetLayer(target, model.MinLayer)
	case config.ActionLayer1, config.ActionLayer2, config.ActionLayer3,
		config.ActionLayer4, config.ActionLayer5, config.ActionLayer6,
		config.ActionLayer7, config.ActionLayer8, config.ActionLayer9:
		layer := int(action[len(action)-1] - '0')
		err = m.clients.SetLayer(target, layer)
	case config.ActionRequestClose:
		m.display.RequestClose(target)
	case config.ActionForceClose:
		m.display.KillClient(target)
	}
	if err != nil {
		m.logger.Debug("action refused", "action", action, "window", target, "error", err)
	}
}

// toggleMode applies a scale mode, or returns to floating when the client is
// already in that mode.
func (m *Mapper) toggleMode(w xproto.Window, mode model.ScaleMode) error {
	current, err := m.clients.Mode(w)
	if err != nil {
		return err
	}
	if current == mode {
		mode = model.ModeFloating
	}
	return m.clients.ChangeMode(w, mode)
}

func (m *Mapper) iconify(w xproto.Window) {
	if err := m.clients.Iconify(w); err != nil {
		m.logger.Debug("iconify refused", "window", w, "error", err)
		return
	}
	m.createIcon(w)
}

func (m *Mapper) createIcon(w xproto.Window) {
	iconWin, surface, err := m.display.CreateIcon(w, m.cfg.IconWidth, m.cfg.IconHeight)
	if err != nil {
		m.logger.Error("icon creation failed", "window", w, "error", err)
		return
	}
	m.sessions.RegisterIcon(w, iconWin, surface)
	m.reflowIcons()
}

func (m *Mapper) deiconify(w xproto.Window) {
	if err := m.clients.Deiconify(w); err != nil {
		m.logger.Debug("deiconify refused", "window", w, "error", err)
		return
	}
	if icon := m.sessions.IconByClient(w); icon != nil {
		m.sessions.UnregisterIcon(icon)
		m.display.DestroyWindow(icon.Window)
		m.reflowIcons()
	}
}

// reflowIcons lays the icon windows out in rows from the top-left corner of
// the first monitor, in client order so the layout is stable across reflows.
func (m *Mapper) reflowIcons() {
	icons := m.sessions.Icons()
	if len(icons) == 0 {
		return
	}
	sort.Slice(icons, func(i, j int) bool { return icons[i].Client < icons[j].Client })

	monitors := m.clients.Monitors()
	screen := geometry.Rect{Width: m.cfg.IconWidth}
	if len(monitors) > 0 {
		screen = monitors[0]
	}

	x, y := screen.X, screen.Y
	for _, icon := range icons {
		if x+m.cfg.IconWidth > screen.X+screen.Width && x > screen.X {
			x = screen.X
			y += m.cfg.IconHeight
		}
		m.display.MoveWindow(icon.Window, x, y)
		m.display.MapWindow(icon.Window)
		icon.Redraw()
		x += m.cfg.IconWidth
	}
}
