package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	minDistance = 0.01
	zoomStep    = 0.8 // multiplicative, ZoomOut divides
)

// Orbit is a target-locked orbit camera: position derived from target,
// distance and pitch/yaw angles in degrees.
type Orbit struct {
	Target   mgl32.Vec3
	Distance float32
	Pitch    float32 // x rotation
	Yaw      float32 // y rotation

	Fov    float32
	Aspect float32
}

func NewOrbit(target mgl32.Vec3, dist, pitch, yaw float32) *Orbit {
	return &Orbit{
		Target:   target,
		Distance: dist,
		Pitch:    pitch,
		Yaw:      yaw,
		Fov:      45,
		Aspect:   16.0 / 9.0,
	}
}

func (c *Orbit) Position() mgl32.Vec3 {
	return mgl32.Vec3{
		c.Distance * float32(math.Cos(float64(mgl32.DegToRad(c.Pitch)))*math.Sin(float64(mgl32.DegToRad(c.Yaw)))),
		c.Distance * float32(math.Sin(float64(mgl32.DegToRad(c.Pitch)))),
		c.Distance * float32(math.Cos(float64(mgl32.DegToRad(c.Pitch)))*math.Cos(float64(mgl32.DegToRad(c.Yaw)))),
	}.Add(c.Target)
}

func (c *Orbit) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *Orbit) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, 0.01, 10000)
}

func (c *Orbit) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

func (c *Orbit) ZoomIn() {
	c.Distance *= zoomStep
	if c.Distance < minDistance {
		c.Distance = minDistance
	}
}

func (c *Orbit) ZoomOut() {
	c.Distance /= zoomStep
}
