package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/slimwm/internal/geometry"
	"github.com/1broseidon/slimwm/internal/session"
)

// CreateIcon creates the small window representing an iconified client and
// the surface that draws its pixmap and title. The window placement is left
// to the caller; the surface belongs to the registry once registered.
func (d *Display) CreateIcon(client xproto.Window, width, height int) (xproto.Window, session.Surface, error) {
	w, err := d.createOverrideWindow(
		geometry.Rect{Width: width, Height: height},
		xproto.EventMaskButtonPress|xproto.EventMaskExposure,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create icon window: %w", err)
	}

	gc, err := xproto.NewGcontextId(d.conn.XUtil.Conn())
	if err != nil {
		xproto.DestroyWindow(d.conn.XUtil.Conn(), w)
		return 0, nil, fmt.Errorf("failed to allocate gc: %w", err)
	}
	screen := d.conn.XUtil.Screen()
	xproto.CreateGC(
		d.conn.XUtil.Conn(),
		gc,
		xproto.Drawable(w),
		xproto.GcForeground|xproto.GcBackground,
		[]uint32{screen.BlackPixel, screen.WhitePixel},
	)

	surface := &iconSurface{
		conn:        d.conn,
		client:      client,
		window:      w,
		gc:          gc,
		width:       width,
		height:      height,
		showPixmaps: d.cfg.GetShowIcons(),
	}
	return w, surface, nil
}

// iconSurface draws one icon: the client's icon pixmap on the left when
// available, then its title.
type iconSurface struct {
	conn        *Connection
	client      xproto.Window
	window      xproto.Window
	gc          xproto.Gcontext
	width       int
	height      int
	showPixmaps bool
}

// Redraw repaints the icon window from the client's current hints.
func (s *iconSurface) Redraw() {
	conn := s.conn.XUtil.Conn()
	xproto.ClearArea(conn, false, s.window, 0, 0, 0, 0)

	textX := 2
	if s.showPixmaps {
		if drawn := s.drawPixmap(); drawn > 0 {
			textX = drawn + 2
		}
	}

	title := s.title()
	if title == "" {
		return
	}
	if len(title) > 255 {
		title = title[:255]
	}
	xproto.ImageText8(
		conn,
		byte(len(title)),
		xproto.Drawable(s.window),
		s.gc,
		int16(textX),
		int16(s.height-5),
		title,
	)
}

// drawPixmap copies the client's icon pixmap into the left edge of the icon
// window and returns the width consumed, or zero when the client has none.
func (s *iconSurface) drawPixmap() int {
	hints, err := icccm.WmHintsGet(s.conn.XUtil, s.client)
	if err != nil || hints == nil || hints.Flags&icccm.HintIconPixmap == 0 {
		return 0
	}
	pixmap := xproto.Pixmap(hints.IconPixmap)
	if pixmap == 0 {
		return 0
	}

	geom, err := xproto.GetGeometry(s.conn.XUtil.Conn(), xproto.Drawable(pixmap)).Reply()
	if err != nil {
		return 0
	}
	w := int(geom.Width)
	h := int(geom.Height)
	if w > s.width {
		w = s.width
	}
	if h > s.height {
		h = s.height
	}
	xproto.CopyArea(
		s.conn.XUtil.Conn(),
		xproto.Drawable(pixmap),
		xproto.Drawable(s.window),
		s.gc,
		0, 0,
		0, 0,
		uint16(w), uint16(h),
	)
	return w
}

func (s *iconSurface) title() string {
	if name, err := icccm.WmIconNameGet(s.conn.XUtil, s.client); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(s.conn.XUtil, s.client); err == nil {
		return name
	}
	return ""
}

// Destroy releases the surface's graphics context. The icon window itself is
// destroyed by the mapper through DestroyWindow.
func (s *iconSurface) Destroy() {
	xproto.FreeGC(s.conn.XUtil.Conn(), s.gc)
}
