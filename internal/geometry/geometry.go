// Package geometry provides the rectangle math used by the window model:
// monitor bounds, half-screen splits, and nearest/adjacent monitor searches.
package geometry

// Rect represents a window or monitor position and size.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Direction represents a cardinal direction used for half-screen snaps and
// relative-monitor navigation.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Half returns the half of screen adjacent to the given edge. DirLeft yields
// the left half, DirUp the top half, and so on.
func Half(screen Rect, dir Direction) Rect {
	half := screen

	switch dir {
	case DirLeft:
		half.Width = screen.Width / 2
	case DirRight:
		half.X = screen.X + screen.Width/2
		half.Width = screen.Width / 2
	case DirUp:
		half.Height = screen.Height / 2
	case DirDown:
		half.Y = screen.Y + screen.Height/2
		half.Height = screen.Height / 2
	}

	if half.Width < 1 {
		half.Width = 1
	}
	if half.Height < 1 {
		half.Height = 1
	}
	return half
}

// MonitorAt returns the monitor containing the point (x, y), or false if no
// monitor contains it.
func MonitorAt(monitors []Rect, x, y int) (Rect, bool) {
	for _, mon := range monitors {
		if mon.Contains(x, y) {
			return mon, true
		}
	}
	return Rect{}, false
}

// Nearest returns the monitor whose center is closest to the center of
// target, measured by squared euclidean distance. It returns false only when
// monitors is empty.
func Nearest(monitors []Rect, target Rect) (Rect, bool) {
	if len(monitors) == 0 {
		return Rect{}, false
	}

	tx, ty := target.Center()
	best := monitors[0]
	bestDist := -1

	for _, mon := range monitors {
		cx, cy := mon.Center()
		dist := (cx-tx)*(cx-tx) + (cy-ty)*(cy-ty)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = mon
		}
	}
	return best, true
}

// Neighbor returns the monitor adjacent to from in the given direction: the
// closest monitor whose center lies strictly in that direction from from's
// center. It returns false when no monitor lies that way.
func Neighbor(monitors []Rect, from Rect, dir Direction) (Rect, bool) {
	fx, fy := from.Center()

	var best Rect
	bestDist := -1

	for _, mon := range monitors {
		if mon == from {
			continue
		}
		cx, cy := mon.Center()

		inDirection := false
		switch dir {
		case DirUp:
			inDirection = cy < fy
		case DirDown:
			inDirection = cy > fy
		case DirLeft:
			inDirection = cx < fx
		case DirRight:
			inDirection = cx > fx
		}
		if !inDirection {
			continue
		}

		// Manhattan distance keeps diagonal monitors from beating the
		// straight-line neighbor.
		dist := abs(cx-fx) + abs(cy-fy)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = mon
		}
	}

	if bestDist < 0 {
		return Rect{}, false
	}
	return best, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
