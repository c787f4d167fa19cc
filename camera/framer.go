package camera

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/partscope/partscope/scene"
)

const (
	// fixed above-and-behind framing angles
	framePitch = 25.0
	frameYaw   = 35.0
	// camera distance per unit of the longest bounding dimension
	frameDistanceScale = 1.8
	// exponential approach rate per second
	frameRate = 6.0
	// remaining distance below which the animation snaps and ends
	frameEpsilon = 0.01
)

// Framer animates the orbit camera onto a freshly loaded model set. It
// runs once per set; any user camera manipulation destroys it for good.
type Framer struct {
	cam *Orbit

	active    bool
	cancelled bool

	targetLook  mgl32.Vec3
	targetDist  float32
	targetPitch float32
	targetYaw   float32
}

func NewFramer(cam *Orbit) *Framer {
	return &Framer{cam: cam}
}

func (f *Framer) Active() bool {
	return f.active
}

func (f *Framer) Cancelled() bool {
	return f.cancelled
}

// Frame aims the animation at the union bounding box. No-op when the user
// already took over the camera or the bounds are degenerate.
func (f *Framer) Frame(bounds scene.AABB) {
	if f.cancelled || bounds.IsDegenerate() {
		return
	}
	dim := bounds.LongestDimension()
	if dim <= 0 {
		return
	}

	f.targetLook = bounds.Center()
	f.targetDist = dim * frameDistanceScale
	f.targetPitch = framePitch
	f.targetYaw = frameYaw
	f.active = true
}

// Cancel permanently disables auto-framing for this model set. Called on
// any user-initiated camera drag, start or end, regardless of progress.
func (f *Framer) Cancel() {
	if f.active || !f.cancelled {
		log.Printf("[camera] auto-framing cancelled by user")
	}
	f.active = false
	f.cancelled = true
}

// Reset re-arms the framer for a fresh model set.
func (f *Framer) Reset() {
	f.active = false
	f.cancelled = false
}

// Update advances the animation by dt seconds with delta-time scaled
// exponential interpolation, snapping to the exact target once the
// remaining distance falls under epsilon.
func (f *Framer) Update(dt float32) {
	if !f.active {
		return
	}

	t := frameRate * dt
	if t > 1 {
		t = 1
	}
	f.cam.Target = f.cam.Target.Add(f.targetLook.Sub(f.cam.Target).Mul(t))
	f.cam.Distance += (f.targetDist - f.cam.Distance) * t
	f.cam.Pitch += (f.targetPitch - f.cam.Pitch) * t
	f.cam.Yaw += (f.targetYaw - f.cam.Yaw) * t

	remaining := f.targetLook.Sub(f.cam.Target).Len() +
		mgl32.Abs(f.targetDist-f.cam.Distance) +
		mgl32.Abs(f.targetPitch-f.cam.Pitch) +
		mgl32.Abs(f.targetYaw-f.cam.Yaw)
	if remaining < frameEpsilon {
		f.cam.Target = f.targetLook
		f.cam.Distance = f.targetDist
		f.cam.Pitch = f.targetPitch
		f.cam.Yaw = f.targetYaw
		f.active = false
	}
}
