package pick

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

type DragMode int

const (
	Idle DragMode = iota
	Dragging
	JustReleased
)

const (
	// pointer travel in pixels before a press counts as a drag
	DragPixelThreshold = 5.0
	// selection stays suppressed this long after a drag release
	ReleaseCooldown = 250 * time.Millisecond
)

// DragTracker classifies a pointer gesture as click or drag and gates
// click-selection right after a drag release, so the release itself is not
// reinterpreted as a new selection. Gizmo drags feed in through
// GizmoDragStart/GizmoDragEnd.
type DragTracker struct {
	mode       DragMode
	pressed    bool
	downPos    mgl32.Vec2
	gizmoBusy  bool
	releasedAt time.Time
}

func (d *DragTracker) Mode(now time.Time) DragMode {
	if d.mode == JustReleased && now.Sub(d.releasedAt) >= ReleaseCooldown {
		d.mode = Idle
	}
	return d.mode
}

func (d *DragTracker) PointerDown(x, y float32) {
	d.pressed = true
	d.downPos = mgl32.Vec2{x, y}
}

func (d *DragTracker) PointerMove(x, y float32) {
	if !d.pressed || d.mode == Dragging {
		return
	}
	if (mgl32.Vec2{x, y}).Sub(d.downPos).Len() > DragPixelThreshold {
		d.mode = Dragging
	}
}

// PointerUp ends the gesture and reports whether the release should count
// as a click. Releases that ended a drag, or that land inside the cooldown
// window, do not select.
func (d *DragTracker) PointerUp(now time.Time) bool {
	wasDrag := d.mode == Dragging || d.gizmoBusy
	d.pressed = false
	if wasDrag {
		d.mode = JustReleased
		d.releasedAt = now
		return false
	}
	return d.Mode(now) == Idle
}

func (d *DragTracker) GizmoDragStart() {
	d.gizmoBusy = true
	d.mode = Dragging
}

func (d *DragTracker) GizmoDragEnd(now time.Time) {
	d.gizmoBusy = false
	d.mode = JustReleased
	d.releasedAt = now
}

// GizmoActive reports whether a gizmo drag is in progress; per-frame
// passes (explosion) skip while it is.
func (d *DragTracker) GizmoActive() bool {
	return d.gizmoBusy
}
