package config

import (
	"fmt"
	"strings"
)

// Action names a window manager command that a key can be bound to.
type Action string

const (
	ActionCycleFocus        Action = "cycle_focus"
	ActionCycleFocusBack    Action = "cycle_focus_back"
	ActionNextDesktop       Action = "next_desktop"
	ActionPrevDesktop       Action = "prev_desktop"
	ActionClientNextDesktop Action = "client_next_desktop"
	ActionClientPrevDesktop Action = "client_prev_desktop"
	ActionToggleStick       Action = "toggle_stick"
	ActionIconify           Action = "iconify"
	ActionMaximize          Action = "maximize"
	ActionRequestClose      Action = "request_close"
	ActionForceClose        Action = "force_close"
	ActionSnapLeft          Action = "snap_left"
	ActionSnapRight         Action = "snap_right"
	ActionSnapTop           Action = "snap_top"
	ActionSnapBottom        Action = "snap_bottom"
	ActionScreenLeft        Action = "screen_left"
	ActionScreenRight       Action = "screen_right"
	ActionScreenTop         Action = "screen_top"
	ActionScreenBottom      Action = "screen_bottom"
	ActionLayerUp           Action = "layer_up"
	ActionLayerDown         Action = "layer_down"
	ActionLayerTop          Action = "layer_top"
	ActionLayerBottom       Action = "layer_bottom"
	ActionLayer1            Action = "layer_1"
	ActionLayer2            Action = "layer_2"
	ActionLayer3            Action = "layer_3"
	ActionLayer4            Action = "layer_4"
	ActionLayer5            Action = "layer_5"
	ActionLayer6            Action = "layer_6"
	ActionLayer7            Action = "layer_7"
	ActionLayer8            Action = "layer_8"
	ActionLayer9            Action = "layer_9"
	ActionExit              Action = "exit"
)

var actions = map[Action]bool{
	ActionCycleFocus:        true,
	ActionCycleFocusBack:    true,
	ActionNextDesktop:       true,
	ActionPrevDesktop:       true,
	ActionClientNextDesktop: true,
	ActionClientPrevDesktop: true,
	ActionToggleStick:       true,
	ActionIconify:           true,
	ActionMaximize:          true,
	ActionRequestClose:      true,
	ActionForceClose:        true,
	ActionSnapLeft:          true,
	ActionSnapRight:         true,
	ActionSnapTop:           true,
	ActionSnapBottom:        true,
	ActionScreenLeft:        true,
	ActionScreenRight:       true,
	ActionScreenTop:         true,
	ActionScreenBottom:      true,
	ActionLayerUp:           true,
	ActionLayerDown:         true,
	ActionLayerTop:          true,
	ActionLayerBottom:       true,
	ActionLayer1:            true,
	ActionLayer2:            true,
	ActionLayer3:            true,
	ActionLayer4:            true,
	ActionLayer5:            true,
	ActionLayer6:            true,
	ActionLayer7:            true,
	ActionLayer8:            true,
	ActionLayer9:            true,
	ActionExit:              true,
}

// IsAction reports whether name is a known binding action.
func IsAction(name string) bool {
	return actions[Action(name)]
}

// KeyBinding is a parsed key specification: the X keysym name, plus whether
// the shift modifier is part of the chord.
type KeyBinding struct {
	Keysym string
	Shift  bool
}

// DefaultBindings returns the built-in key table. Keys are action names,
// values are keysym names with an optional "shift-" prefix.
func DefaultBindings() map[string]string {
	return map[string]string{
		string(ActionCycleFocus):        "Tab",
		string(ActionCycleFocusBack):    "shift-Tab",
		string(ActionNextDesktop):       "period",
		string(ActionPrevDesktop):       "comma",
		string(ActionClientNextDesktop): "bracketright",
		string(ActionClientPrevDesktop): "bracketleft",
		string(ActionToggleStick):       "backslash",
		string(ActionIconify):           "h",
		string(ActionMaximize):          "m",
		string(ActionRequestClose):      "c",
		string(ActionForceClose):        "x",
		string(ActionSnapLeft):          "Left",
		string(ActionSnapRight):         "Right",
		string(ActionSnapTop):           "Up",
		string(ActionSnapBottom):        "Down",
		string(ActionScreenLeft):        "shift-Left",
		string(ActionScreenRight):       "shift-Right",
		string(ActionScreenTop):         "shift-Up",
		string(ActionScreenBottom):      "shift-Down",
		string(ActionLayerUp):           "Prior",
		string(ActionLayerDown):         "Next",
		string(ActionLayerTop):          "Home",
		string(ActionLayerBottom):       "End",
		string(ActionLayer1):            "1",
		string(ActionLayer2):            "2",
		string(ActionLayer3):            "3",
		string(ActionLayer4):            "4",
		string(ActionLayer5):            "5",
		string(ActionLayer6):            "6",
		string(ActionLayer7):            "7",
		string(ActionLayer8):            "8",
		string(ActionLayer9):            "9",
		string(ActionExit):              "Escape",
	}
}

// ParseKey parses a key specification of the form "keysym" or "shift-keysym".
func ParseKey(spec string) (KeyBinding, error) {
	name, shifted := strings.CutPrefix(spec, "shift-")
	if name == "" {
		return KeyBinding{}, fmt.Errorf("empty key spec %q", spec)
	}
	return KeyBinding{Keysym: name, Shift: shifted}, nil
}

// BindingTable resolves the effective key table: the defaults overlaid with
// the user's bindings, inverted to map each key chord to its action. A key
// bound to two actions is an error.
func (c *Config) BindingTable() (map[KeyBinding]Action, error) {
	specs := DefaultBindings()
	for action, key := range c.Bindings {
		specs[action] = key
	}

	table := make(map[KeyBinding]Action, len(specs))
	for action, spec := range specs {
		key, err := ParseKey(spec)
		if err != nil {
			return nil, &ValidationError{Path: "bindings." + action, Err: err}
		}
		if prev, ok := table[key]; ok {
			return nil, &ValidationError{
				Path: "bindings." + action,
				Err:  fmt.Errorf("key %q already bound to %s", spec, prev),
			}
		}
		table[key] = Action(action)
	}
	return table, nil
}
