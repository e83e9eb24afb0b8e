// Package model is the authoritative state table for every managed client:
// desktop placement, stacking layer, scale mode, geometry, monitor
// assignment, and the focus flag. All transitions run strictly sequentially
// from event handling; the model itself performs no display-server calls and
// instead queues Change values for the event layer to apply.
package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/slimwm/internal/geometry"
)

// Stacking layers. User windows occupy [MinLayer, MaxLayer]; transient
// dialogs get the reserved DialogLayer above them.
const (
	MinLayer     = 1
	MaxLayer     = 9
	DefaultLayer = 5
	DialogLayer  = 10
)

var (
	// ErrUnknownClient is returned when an operation names a window that is
	// not in the table.
	ErrUnknownClient = errors.New("unknown client")
	// ErrBadTransition is returned when a client's current desktop tag does
	// not permit the requested transition.
	ErrBadTransition = errors.New("invalid transition")
	// ErrSessionActive is returned when a transition is refused because a
	// move/resize is in progress somewhere in the table.
	ErrSessionActive = errors.New("move/resize in progress")
)

type client struct {
	desktop   Desktop
	prior     Desktop // restore target for deiconify and stop-move/resize
	layer     int
	mode      ScaleMode
	geom      geometry.Rect
	floatGeom geometry.Rect // last explicit geometry, restored by ModeFloating
	screen    geometry.Rect
	sticky    bool
	seq       uint64 // managed order; breaks stacking ties, oldest at bottom
}

// Model holds every client record plus the process-wide current desktop and
// monitor set. It is not safe for concurrent use; the event loop is its only
// caller.
type Model struct {
	clients  map[xproto.Window]*client
	monitors []geometry.Rect
	desktops int
	current  int
	focused  xproto.Window
	changes  []Change
	nextSeq  uint64
}

// New creates an empty model with the given number of numbered desktops
// (0-based) and the current monitor set.
func New(desktops int, monitors []geometry.Rect) *Model {
	if desktops < 1 {
		desktops = 1
	}
	return &Model{
		clients:  make(map[xproto.Window]*client),
		monitors: append([]geometry.Rect(nil), monitors...),
		desktops: desktops,
	}
}

func (m *Model) push(ch Change) {
	m.changes = append(m.changes, ch)
}

// FlushChanges returns the queued changes and clears the queue.
func (m *Model) FlushChanges() []Change {
	changes := m.changes
	m.changes = nil
	return changes
}

func (m *Model) get(w xproto.Window) (*client, error) {
	c, ok := m.clients[w]
	if !ok {
		return nil, fmt.Errorf("window %#x: %w", w, ErrUnknownClient)
	}
	return c, nil
}

// AddClient registers a new client. A hidden initial visibility puts the
// client straight onto the icon state; otherwise it lands on the current
// desktop. The caller guarantees the window is not already managed; a
// duplicate add is a programming error and is reported as such.
func (m *Model) AddClient(w xproto.Window, vis Visibility, geom geometry.Rect, autoFocus bool) error {
	if _, ok := m.clients[w]; ok {
		return fmt.Errorf("window %#x already managed", w)
	}

	screen, ok := geometry.Nearest(m.monitors, geom)
	if !ok {
		screen = geometry.Rect{}
	}

	c := &client{
		desktop:   OnDesktop(m.current),
		prior:     OnDesktop(m.current),
		layer:     DefaultLayer,
		mode:      ModeFloating,
		geom:      geom,
		floatGeom: geom,
		screen:    screen,
		seq:       m.nextSeq,
	}
	m.nextSeq++
	m.clients[w] = c

	if vis == VisibilityHidden {
		c.desktop = Desktop{Kind: Iconified}
	}

	m.push(ChangeClientDesktop{Window: w, Desktop: c.desktop})
	m.push(ChangeLayer{Window: w, Layer: c.layer})

	if autoFocus && !c.desktop.Hidden() {
		m.setFocus(w)
	}
	return nil
}

// RemoveClient drops the record. The focus is cleared if this client held
// it; it is not reassigned. Icon and session cleanup are the event layer's
// responsibility, since those resources live in the session registry.
func (m *Model) RemoveClient(w xproto.Window) error {
	if _, err := m.get(w); err != nil {
		return err
	}
	m.UnfocusIfFocused(w)
	delete(m.clients, w)
	return nil
}

// IsClient reports whether the window is managed.
func (m *Model) IsClient(w xproto.Window) bool {
	_, ok := m.clients[w]
	return ok
}

// FindDesktop returns the client's desktop tag.
func (m *Model) FindDesktop(w xproto.Window) (Desktop, error) {
	c, err := m.get(w)
	if err != nil {
		return Desktop{}, err
	}
	return c.desktop, nil
}

// Layer returns the client's stacking layer.
func (m *Model) Layer(w xproto.Window) (int, error) {
	c, err := m.get(w)
	if err != nil {
		return 0, err
	}
	return c.layer, nil
}

// Geometry returns the client's current geometry.
func (m *Model) Geometry(w xproto.Window) (geometry.Rect, error) {
	c, err := m.get(w)
	if err != nil {
		return geometry.Rect{}, err
	}
	return c.geom, nil
}

// Mode returns the client's scale mode.
func (m *Model) Mode(w xproto.Window) (ScaleMode, error) {
	c, err := m.get(w)
	if err != nil {
		return ModeFloating, err
	}
	return c.mode, nil
}

// GetScreen returns the bounding box of the monitor the client occupies.
func (m *Model) GetScreen(w xproto.Window) (geometry.Rect, error) {
	c, err := m.get(w)
	if err != nil {
		return geometry.Rect{}, err
	}
	return c.screen, nil
}

// IsSticky reports whether desktop switches skip the client.
func (m *Model) IsSticky(w xproto.Window) (bool, error) {
	c, err := m.get(w)
	if err != nil {
		return false, err
	}
	return c.sticky, nil
}

// CurrentDesktop returns the displayed desktop index.
func (m *Model) CurrentDesktop() int {
	return m.current
}

// Desktops returns the number of numbered desktops.
func (m *Model) Desktops() int {
	return m.desktops
}

// Focused returns the focused client, or zero when no client holds focus.
func (m *Model) Focused() xproto.Window {
	return m.focused
}

// IsVisible reports whether the client shows on the displayed desktop.
func (m *Model) IsVisible(w xproto.Window) (bool, error) {
	c, err := m.get(w)
	if err != nil {
		return false, err
	}
	return m.visible(c), nil
}

func (m *Model) visible(c *client) bool {
	switch c.desktop.Kind {
	case Numbered:
		return c.desktop.Index == m.current
	case AllDesktops:
		return true
	case Iconified, Moving, Resizing:
		return false
	}
	return false
}

// VisibleByLayer returns the visible clients ordered bottom to top: by layer
// first, then by managed order within a layer.
func (m *Model) VisibleByLayer() []xproto.Window {
	type entry struct {
		win xproto.Window
		c   *client
	}
	var entries []entry
	for w, c := range m.clients {
		if m.visible(c) {
			entries = append(entries, entry{w, c})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].c.layer != entries[j].c.layer {
			return entries[i].c.layer < entries[j].c.layer
		}
		return entries[i].c.seq < entries[j].c.seq
	})

	wins := make([]xproto.Window, len(entries))
	for i, e := range entries {
		wins[i] = e.win
	}
	return wins
}

// Clients returns every managed window, in no particular order.
func (m *Model) Clients() []xproto.Window {
	wins := make([]xproto.Window, 0, len(m.clients))
	for w := range m.clients {
		wins = append(wins, w)
	}
	return wins
}

// ForceFocus unconditionally focuses the client, clearing any previous
// holder. Hidden clients cannot take focus.
func (m *Model) ForceFocus(w xproto.Window) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}
	if !m.visible(c) {
		return fmt.Errorf("window %#x is not visible: %w", w, ErrBadTransition)
	}
	m.setFocus(w)
	return nil
}

func (m *Model) setFocus(w xproto.Window) {
	if m.focused == w {
		return
	}
	old := m.focused
	m.focused = w
	m.push(ChangeFocus{Old: old, New: w})
}

// Unfocus clears the focus, whoever holds it.
func (m *Model) Unfocus() {
	if m.focused == 0 {
		return
	}
	old := m.focused
	m.focused = 0
	m.push(ChangeFocus{Old: old, New: 0})
}

// UnfocusIfFocused clears the focus only if the given client holds it.
func (m *Model) UnfocusIfFocused(w xproto.Window) {
	if m.focused == w {
		m.Unfocus()
	}
}

func (m *Model) retag(w xproto.Window, c *client, d Desktop) {
	if c.desktop == d {
		return
	}
	c.desktop = d
	m.push(ChangeClientDesktop{Window: w, Desktop: d})
}

// restoreTarget reconciles the remembered desktop with the sticky flag, so a
// stick toggled while the client was hidden still takes effect when the
// client surfaces.
func (m *Model) restoreTarget(c *client) Desktop {
	target := c.prior
	if c.sticky && target.Kind == Numbered {
		target = Desktop{Kind: AllDesktops}
	}
	if !c.sticky && target.Kind == AllDesktops {
		target = OnDesktop(m.current)
	}
	return target
}

// Iconify hides the client behind its icon, remembering the desktop it came
// from so Deiconify can restore it.
func (m *Model) Iconify(w xproto.Window) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}
	if c.desktop.Hidden() {
		return fmt.Errorf("cannot iconify %s client: %w", c.desktop, ErrBadTransition)
	}

	c.prior = c.desktop
	m.UnfocusIfFocused(w)
	m.retag(w, c, Desktop{Kind: Iconified})
	return nil
}

// Deiconify restores the desktop tag remembered at iconify time, including
// AllDesktops, and focuses the client.
func (m *Model) Deiconify(w xproto.Window) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}
	if c.desktop.Kind != Iconified {
		return fmt.Errorf("client is not iconified: %w", ErrBadTransition)
	}

	m.retag(w, c, m.restoreTarget(c))
	if m.visible(c) {
		m.setFocus(w)
	}
	return nil
}

// StartMoving marks the client as the subject of a move. Only one
// move/resize may be active across the whole table.
func (m *Model) StartMoving(w xproto.Window) error {
	return m.startSession(w, Desktop{Kind: Moving})
}

// StartResizing marks the client as the subject of a resize.
func (m *Model) StartResizing(w xproto.Window) error {
	return m.startSession(w, Desktop{Kind: Resizing})
}

func (m *Model) startSession(w xproto.Window, tag Desktop) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}
	if c.desktop.Hidden() {
		return fmt.Errorf("cannot grab %s client: %w", c.desktop, ErrBadTransition)
	}
	if m.sessionActive() {
		return ErrSessionActive
	}

	c.prior = c.desktop
	m.UnfocusIfFocused(w)
	m.retag(w, c, tag)
	return nil
}

func (m *Model) sessionActive() bool {
	for _, c := range m.clients {
		if c.desktop.Kind == Moving || c.desktop.Kind == Resizing {
			return true
		}
	}
	return false
}

// StopMoving commits the final position, restores the pre-move desktop tag,
// and focuses the client.
func (m *Model) StopMoving(w xproto.Window, x, y int) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}
	if c.desktop.Kind != Moving {
		return fmt.Errorf("client is not moving: %w", ErrBadTransition)
	}

	m.retag(w, c, m.restoreTarget(c))

	c.geom.X = x
	c.geom.Y = y
	if c.mode == ModeFloating {
		c.floatGeom = c.geom
	}
	// A drag can land the window on another monitor.
	cx, cy := c.geom.Center()
	if mon, ok := geometry.MonitorAt(m.monitors, cx, cy); ok {
		c.screen = mon
	}
	m.push(ChangeLocation{Window: w, X: x, Y: y})

	if m.visible(c) {
		m.setFocus(w)
	}
	return nil
}

// StopResizing commits the final size, restores the pre-resize desktop tag,
// and focuses the client. Non-positive dimensions are clamped to 1 pixel.
func (m *Model) StopResizing(w xproto.Window, width, height int) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}
	if c.desktop.Kind != Resizing {
		return fmt.Errorf("client is not resizing: %w", ErrBadTransition)
	}

	m.retag(w, c, m.restoreTarget(c))

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c.geom.Width = width
	c.geom.Height = height
	if c.mode == ModeFloating {
		c.floatGeom = c.geom
	}
	m.push(ChangeSize{Window: w, Width: width, Height: height})

	if m.visible(c) {
		m.setFocus(w)
	}
	return nil
}

// ToggleStick flips the sticky flag. For a visible client the desktop tag is
// kept in lockstep: sticking retags to AllDesktops, unsticking retags to the
// current desktop. For a hidden client only the flag and the remembered
// restore target change.
func (m *Model) ToggleStick(w xproto.Window) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}

	c.sticky = !c.sticky
	if c.desktop.Hidden() {
		c.prior = m.restoreTarget(c)
		return nil
	}

	if c.sticky {
		m.retag(w, c, Desktop{Kind: AllDesktops})
	} else {
		m.retag(w, c, OnDesktop(m.current))
	}
	return nil
}

// NextDesktop advances the displayed desktop, wrapping past the last one.
// Refused while a move/resize is in progress.
func (m *Model) NextDesktop() error {
	return m.switchDesktop((m.current + 1) % m.desktops)
}

// PrevDesktop steps the displayed desktop back, wrapping past zero.
func (m *Model) PrevDesktop() error {
	return m.switchDesktop((m.current + m.desktops - 1) % m.desktops)
}

func (m *Model) switchDesktop(next int) error {
	if m.sessionActive() {
		return ErrSessionActive
	}

	// The focused window is about to vanish unless it is visible everywhere.
	if m.focused != 0 {
		if c, ok := m.clients[m.focused]; ok && c.desktop.Kind != AllDesktops {
			m.Unfocus()
		}
	}

	m.current = next
	m.push(ChangeCurrentDesktop{Desktop: next})
	return nil
}

// ClientNextDesktop moves one client to the following numbered desktop,
// wrapping at the end. Clients not on a numbered desktop are left alone.
func (m *Model) ClientNextDesktop(w xproto.Window) error {
	return m.clientShiftDesktop(w, 1)
}

// ClientPrevDesktop moves one client to the preceding numbered desktop.
func (m *Model) ClientPrevDesktop(w xproto.Window) error {
	return m.clientShiftDesktop(w, -1)
}

func (m *Model) clientShiftDesktop(w xproto.Window, delta int) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}
	if c.desktop.Kind != Numbered {
		return fmt.Errorf("cannot shift %s client between desktops: %w", c.desktop, ErrBadTransition)
	}

	next := (c.desktop.Index + delta + m.desktops) % m.desktops
	m.UnfocusIfFocused(w)
	m.retag(w, c, OnDesktop(next))
	return nil
}

// ClientResetDesktop forces the client onto the current desktop. Used when a
// non-sticky window remaps itself.
func (m *Model) ClientResetDesktop(w xproto.Window) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}
	if c.desktop.Hidden() {
		return fmt.Errorf("cannot reset %s client: %w", c.desktop, ErrBadTransition)
	}
	m.retag(w, c, OnDesktop(m.current))
	return nil
}

// ChangeMode sets the scale mode and recomputes the geometry from the
// client's monitor. ModeFloating restores the last explicit geometry.
func (m *Model) ChangeMode(w xproto.Window, mode ScaleMode) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}

	if c.mode == ModeFloating && mode != ModeFloating {
		c.floatGeom = c.geom
	}
	c.mode = mode
	m.applyMode(w, c)
	return nil
}

func (m *Model) applyMode(w xproto.Window, c *client) {
	var geom geometry.Rect
	switch c.mode {
	case ModeFloating:
		geom = c.floatGeom
	case ModeMaximized:
		geom = c.screen
	case ModeSplitTop:
		geom = geometry.Half(c.screen, geometry.DirUp)
	case ModeSplitBottom:
		geom = geometry.Half(c.screen, geometry.DirDown)
	case ModeSplitLeft:
		geom = geometry.Half(c.screen, geometry.DirLeft)
	case ModeSplitRight:
		geom = geometry.Half(c.screen, geometry.DirRight)
	}

	if geom == c.geom {
		return
	}
	c.geom = geom
	m.push(ChangeLocation{Window: w, X: geom.X, Y: geom.Y})
	m.push(ChangeSize{Window: w, Width: geom.Width, Height: geom.Height})
}

// SetLocation moves a floating client to an explicit position. Non-floating
// modes own their geometry and are left alone.
func (m *Model) SetLocation(w xproto.Window, x, y int) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}
	if c.mode != ModeFloating {
		return nil
	}
	if c.geom.X == x && c.geom.Y == y {
		return nil
	}
	c.geom.X = x
	c.geom.Y = y
	c.floatGeom = c.geom
	m.push(ChangeLocation{Window: w, X: x, Y: y})
	return nil
}

// SetLayer pins the client to a stacking layer, clamped to the normal range.
// DialogLayer is the one value allowed above it.
func (m *Model) SetLayer(w xproto.Window, layer int) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}

	if layer != DialogLayer {
		if layer < MinLayer {
			layer = MinLayer
		}
		if layer > MaxLayer {
			layer = MaxLayer
		}
	}
	if c.layer == layer {
		return nil
	}
	c.layer = layer
	m.push(ChangeLayer{Window: w, Layer: layer})
	return nil
}

// UpLayer raises the client one layer, saturating at MaxLayer.
func (m *Model) UpLayer(w xproto.Window) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}
	if c.layer >= MaxLayer {
		return nil
	}
	return m.SetLayer(w, c.layer+1)
}

// DownLayer lowers the client one layer, saturating at MinLayer.
func (m *Model) DownLayer(w xproto.Window) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}
	if c.layer <= MinLayer {
		return nil
	}
	return m.SetLayer(w, c.layer-1)
}

// ToRelativeScreen reassigns the client to the monitor adjacent in the given
// direction, preserving its offset from the monitor origin. A direction with
// no neighboring monitor is a no-op.
func (m *Model) ToRelativeScreen(w xproto.Window, dir geometry.Direction) error {
	c, err := m.get(w)
	if err != nil {
		return err
	}

	next, ok := geometry.Neighbor(m.monitors, c.screen, dir)
	if !ok {
		return nil
	}

	dx := c.geom.X - c.screen.X
	dy := c.geom.Y - c.screen.Y
	c.screen = next

	if c.mode == ModeFloating {
		c.geom.X = next.X + dx
		c.geom.Y = next.Y + dy
		c.floatGeom = c.geom
		m.push(ChangeLocation{Window: w, X: c.geom.X, Y: c.geom.Y})
	} else {
		m.applyMode(w, c)
	}
	return nil
}

// UpdateScreens replaces the monitor set. Clients whose monitor disappeared
// move to the nearest surviving one by center distance, and non-floating
// geometry is recomputed against the new bounds.
func (m *Model) UpdateScreens(monitors []geometry.Rect) {
	m.monitors = append([]geometry.Rect(nil), monitors...)

	for w, c := range m.clients {
		if containsRect(m.monitors, c.screen) {
			continue
		}
		next, ok := geometry.Nearest(m.monitors, c.geom)
		if !ok {
			continue
		}
		c.screen = next
		if c.mode != ModeFloating {
			m.applyMode(w, c)
		}
	}
}

// Monitors returns the current monitor set.
func (m *Model) Monitors() []geometry.Rect {
	return append([]geometry.Rect(nil), m.monitors...)
}

func containsRect(rects []geometry.Rect, r geometry.Rect) bool {
	for _, have := range rects {
		if have == r {
			return true
		}
	}
	return false
}
