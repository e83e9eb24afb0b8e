package events

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/slimwm/internal/model"
)

// applyChanges drains the model's change queue and mirrors each change onto
// the display. Visibility changes are applied as map/unmap calls; any change
// that can disturb stacking triggers one restack at the end.
func (m *Mapper) applyChanges() {
	changes := m.clients.FlushChanges()
	if len(changes) == 0 {
		return
	}

	restack := false
	for _, change := range changes {
		switch change := change.(type) {
		case model.ChangeFocus:
			m.display.FocusWindow(change.New)

		case model.ChangeClientDesktop:
			m.syncVisibility(change.Window)
			restack = true

		case model.ChangeCurrentDesktop:
			m.display.AnnounceDesktop(change.Desktop)
			// Every client's visibility may have flipped.
			for _, w := range m.clients.Clients() {
				m.syncVisibility(w)
			}
			restack = true

		case model.ChangeLayer:
			restack = true

		case model.ChangeLocation:
			m.display.MoveWindow(change.Window, change.X, change.Y)

		case model.ChangeSize:
			m.display.ResizeWindow(change.Window, change.Width, change.Height)
		}
	}

	if restack {
		m.display.Restack(m.clients.VisibleByLayer())
	}
}

func (m *Mapper) syncVisibility(w xproto.Window) {
	visible, err := m.clients.IsVisible(w)
	if err != nil {
		// The client was removed after the change was queued.
		return
	}
	if visible {
		m.display.MapWindow(w)
	} else {
		m.display.UnmapWindow(w)
	}
}
