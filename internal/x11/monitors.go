package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"

	"github.com/1broseidon/slimwm/internal/geometry"
)

// Monitors retrieves the bounding boxes of all active monitors using XRandR.
// When no CRTC reports an active mode the root screen dimensions are used as
// a single monitor.
func (c *Connection) Monitors() ([]geometry.Rect, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []geometry.Rect
	for _, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}
		monitors = append(monitors, geometry.Rect{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	if len(monitors) == 0 {
		screen := c.XUtil.Screen()
		monitors = append(monitors, geometry.Rect{
			Width:  int(screen.WidthInPixels),
			Height: int(screen.HeightInPixels),
		})
	}
	return monitors, nil
}
