package gesture

import (
	"sync"
	"time"
)

// Size is a width/height pair in px.
type Size struct {
	W, H float64
}

// Rect is an on-screen element's bounding box.
type Rect struct {
	Left, Top, Width, Height float64
}

// Menu footprints and offsets used for auto-positioning.
const (
	moveMenuW     = 200
	moveMenuH     = 300
	priorityMenuW = 160
	priorityMenuH = 200
	edgeMargin    = 10
	fingerOffset  = 30
)

// DismissGrace is how long after opening a menu outside interactions and
// Escape are ignored, so the gesture that opened the menu does not close it.
const DismissGrace = 50 * time.Millisecond

// DismissReason classifies how a menu close was requested.
type DismissReason int

const (
	DismissOutside DismissReason = iota
	DismissEscape
	DismissCancel // explicit cancel control, never subject to the grace
)

// MoveMenuPosition places the move-to-column menu next to a long-press at
// p, flipped to whichever side of the screen has room and clamped into the
// viewport.
func MoveMenuPosition(p Point, viewport Size) Point {
	var x float64
	if p.X > viewport.W/2 {
		x = max(edgeMargin, p.X-moveMenuW-fingerOffset)
	} else {
		x = min(viewport.W-moveMenuW-edgeMargin, p.X+fingerOffset)
	}
	y := max(edgeMargin, min(p.Y-moveMenuH/3, viewport.H-moveMenuH-edgeMargin))
	return Point{X: x, Y: y}
}

// PriorityMenuPosition centers the priority picker under its trigger,
// clamped horizontally and flipped above when it would overflow the bottom.
func PriorityMenuPosition(anchor Rect, viewport Size) Point {
	x := max(edgeMargin, min(anchor.Left+anchor.Width/2-priorityMenuW/2,
		viewport.W-priorityMenuW-edgeMargin))
	y := anchor.Top + anchor.Height + 8
	if y+priorityMenuH > viewport.H {
		y = anchor.Top - priorityMenuH
	}
	return Point{X: x, Y: y}
}

// Menu is an open context menu. Dismissal within the grace window is
// ignored for outside interactions and Escape; the explicit cancel control
// always closes.
type Menu struct {
	Pos Point

	mu       sync.Mutex
	openedAt time.Time
	grace    time.Duration
	closed   bool
	now      func() time.Time
}

// OpenMenu records a menu opening at pos.
func OpenMenu(pos Point) *Menu {
	return &Menu{
		Pos:      pos,
		openedAt: time.Now(),
		grace:    DismissGrace,
		now:      time.Now,
	}
}

// Dismiss attempts to close the menu and reports whether it closed.
func (m *Menu) Dismiss(reason DismissReason) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return true
	}
	if reason != DismissCancel && m.now().Sub(m.openedAt) < m.grace {
		return false
	}
	m.closed = true
	return true
}

// Open reports whether the menu is still showing.
func (m *Menu) Open() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}
