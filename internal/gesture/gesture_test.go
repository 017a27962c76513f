package gesture

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestLongPress_FiresAfterHold(t *testing.T) {
	var fired atomic.Int32
	lp := NewLongPress(20*time.Millisecond, 10, func(Point) { fired.Add(1) })

	lp.Begin(Point{X: 100, Y: 100})
	time.Sleep(60 * time.Millisecond)

	if fired.Load() != 1 {
		t.Fatalf("expected 1 fire, got %d", fired.Load())
	}
	if !lp.End() {
		t.Error("End should report the press fired")
	}
}

func TestLongPress_MovementCancels(t *testing.T) {
	var fired atomic.Int32
	lp := NewLongPress(20*time.Millisecond, 10, func(Point) { fired.Add(1) })

	lp.Begin(Point{X: 100, Y: 100})
	lp.Move(Point{X: 100, Y: 115}) // 15px vertical drift, past the slop
	time.Sleep(60 * time.Millisecond)

	if fired.Load() != 0 {
		t.Fatalf("expected no fire after movement, got %d", fired.Load())
	}
	if lp.End() {
		t.Error("End should report no fire")
	}
}

func TestLongPress_SmallMovementDoesNotCancel(t *testing.T) {
	var fired atomic.Int32
	lp := NewLongPress(20*time.Millisecond, 10, func(Point) { fired.Add(1) })

	lp.Begin(Point{X: 100, Y: 100})
	lp.Move(Point{X: 105, Y: 92}) // within 10px on both axes
	time.Sleep(60 * time.Millisecond)

	if fired.Load() != 1 {
		t.Fatalf("expected fire despite small drift, got %d", fired.Load())
	}
}

func TestLongPress_EndBeforeHoldCancels(t *testing.T) {
	var fired atomic.Int32
	lp := NewLongPress(30*time.Millisecond, 10, func(Point) { fired.Add(1) })

	lp.Begin(Point{X: 0, Y: 0})
	if lp.End() {
		t.Error("short tap should not count as a long press")
	}
	time.Sleep(60 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("expected no fire after early release, got %d", fired.Load())
	}
}

func TestMoveMenuPosition_StaysInViewport(t *testing.T) {
	vp := Size{W: 400, H: 800}

	// Press on the right half: menu opens to the left of the finger.
	p := MoveMenuPosition(Point{X: 390, Y: 400}, vp)
	if p.X < edgeMargin || p.X+moveMenuW > vp.W {
		t.Errorf("right-side press: x=%v out of viewport", p.X)
	}

	// Press near the top edge: clamped down to the margin.
	p = MoveMenuPosition(Point{X: 50, Y: 0}, vp)
	if p.Y != edgeMargin {
		t.Errorf("top press: y=%v, want %v", p.Y, float64(edgeMargin))
	}

	// Press near the bottom edge: clamped up.
	p = MoveMenuPosition(Point{X: 50, Y: 795}, vp)
	if p.Y+moveMenuH > vp.H-edgeMargin {
		t.Errorf("bottom press: y=%v overflows", p.Y)
	}
}

func TestPriorityMenuPosition_FlipsAboveWhenBottomOverflows(t *testing.T) {
	vp := Size{W: 400, H: 800}
	anchor := Rect{Left: 180, Top: 750, Width: 20, Height: 20}

	p := PriorityMenuPosition(anchor, vp)
	if p.Y != anchor.Top-priorityMenuH {
		t.Errorf("expected flip above anchor, got y=%v", p.Y)
	}

	// Plenty of room below: opens under the anchor.
	anchor.Top = 100
	p = PriorityMenuPosition(anchor, vp)
	if p.Y != anchor.Top+anchor.Height+8 {
		t.Errorf("expected menu below anchor, got y=%v", p.Y)
	}
}

func TestMenu_DismissGrace(t *testing.T) {
	m := OpenMenu(Point{X: 10, Y: 10})

	// The opening gesture lands immediately: ignored.
	if m.Dismiss(DismissOutside) {
		t.Error("outside dismiss within grace should be ignored")
	}
	if m.Dismiss(DismissEscape) {
		t.Error("escape within grace should be ignored")
	}
	if !m.Open() {
		t.Fatal("menu should still be open")
	}

	// Explicit cancel always closes.
	if !m.Dismiss(DismissCancel) {
		t.Error("cancel should always close")
	}
	if m.Open() {
		t.Error("menu should be closed after cancel")
	}
}

func TestMenu_DismissAfterGrace(t *testing.T) {
	m := OpenMenu(Point{X: 10, Y: 10})
	m.now = func() time.Time { return m.openedAt.Add(DismissGrace + time.Millisecond) }

	if !m.Dismiss(DismissOutside) {
		t.Error("outside dismiss after grace should close")
	}
	if m.Open() {
		t.Error("menu should be closed")
	}
}
