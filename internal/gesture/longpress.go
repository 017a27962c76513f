// Package gesture models the touch interactions of the board as explicit,
// cancellable scheduled tasks: the long-press recognizer that opens a
// context menu, and the menu lifecycle with its viewport clamping and
// dismissal grace period.
package gesture

import (
	"sync"
	"time"
)

// Point is a viewport coordinate in px.
type Point struct {
	X, Y float64
}

// Defaults matching the board's touch handling.
const (
	HoldDuration = 500 * time.Millisecond
	MoveSlop     = 10.0 // px, per axis
)

// LongPress recognizes a sustained contact. Begin arms a timer; movement
// beyond the slop in either axis before it fires cancels the pending press,
// and End cancels it outright. The callback runs off the timer goroutine.
type LongPress struct {
	hold   time.Duration
	slop   float64
	onFire func(Point)

	mu    sync.Mutex
	timer *time.Timer
	start Point
	fired bool
}

// NewLongPress creates a recognizer with the given hold time and movement
// slop. Zero values fall back to the defaults.
func NewLongPress(hold time.Duration, slop float64, onFire func(Point)) *LongPress {
	if hold <= 0 {
		hold = HoldDuration
	}
	if slop <= 0 {
		slop = MoveSlop
	}
	return &LongPress{hold: hold, slop: slop, onFire: onFire}
}

// Begin starts tracking a contact at p.
func (lp *LongPress) Begin(p Point) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	lp.cancelLocked()
	lp.start = p
	lp.fired = false
	lp.timer = time.AfterFunc(lp.hold, func() {
		lp.mu.Lock()
		lp.fired = true
		lp.timer = nil
		fire := lp.onFire
		at := lp.start
		lp.mu.Unlock()
		if fire != nil {
			fire(at)
		}
	})
}

// Move updates the contact position; drifting past the slop cancels the
// pending press.
func (lp *LongPress) Move(p Point) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if lp.timer == nil {
		return
	}
	if abs(p.X-lp.start.X) > lp.slop || abs(p.Y-lp.start.Y) > lp.slop {
		lp.cancelLocked()
	}
}

// End releases the contact, cancelling any press that has not fired yet.
// It reports whether the press fired during this contact, so a trailing tap
// event can be suppressed.
func (lp *LongPress) End() bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	lp.cancelLocked()
	fired := lp.fired
	lp.fired = false
	return fired
}

// Pending reports whether a press is armed but has not fired.
func (lp *LongPress) Pending() bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.timer != nil
}

func (lp *LongPress) cancelLocked() {
	if lp.timer != nil {
		lp.timer.Stop()
		lp.timer = nil
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
