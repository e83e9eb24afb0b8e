package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// ExistingWindows lists the viewable top-level windows present before the
// manager started, for adoption at startup. Override-redirect windows are
// excluded.
func (c *Connection) ExistingWindows() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query window tree: %w", err)
	}

	var windows []xproto.Window
	for _, w := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), w).Reply()
		if err != nil {
			continue
		}
		if attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		windows = append(windows, w)
	}
	return windows, nil
}
