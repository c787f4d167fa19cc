package snapshot

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Framebuffer is an off-screen render target. Row 0 is the BOTTOM of the
// image (render-target convention); readback flips.
type Framebuffer struct {
	Width, Height int
	color         []mgl32.Vec4
	depth         []float32
}

func NewFramebuffer(w, h int) *Framebuffer {
	return &Framebuffer{
		Width:  w,
		Height: h,
		color:  make([]mgl32.Vec4, w*h),
		depth:  make([]float32, w*h),
	}
}

func (fb *Framebuffer) Clear(c mgl32.Vec4) {
	for i := range fb.color {
		fb.color[i] = c
		fb.depth[i] = float32(math.Inf(1))
	}
}

func (fb *Framebuffer) set(x, y int, depth float32, c mgl32.Vec4) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	i := y*fb.Width + x
	if depth > fb.depth[i] {
		return
	}
	fb.depth[i] = depth
	fb.color[i] = c
}

func (fb *Framebuffer) At(x, y int) mgl32.Vec4 {
	return fb.color[y*fb.Width+x]
}

// rasterTriangle fills a screen-space triangle with edge functions and a
// z-buffer test. Vertices are (x, y, depth) with y growing upward.
func (fb *Framebuffer) rasterTriangle(v0, v1, v2 mgl32.Vec3, c mgl32.Vec4) {
	minX := int(math.Floor(float64(min3(v0.X(), v1.X(), v2.X()))))
	maxX := int(math.Ceil(float64(max3(v0.X(), v1.X(), v2.X()))))
	minY := int(math.Floor(float64(min3(v0.Y(), v1.Y(), v2.Y()))))
	maxY := int(math.Ceil(float64(max3(v0.Y(), v1.Y(), v2.Y()))))

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}

	area := edge(v0, v1, v2)
	if area == 0 {
		return
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, 0}
			w0 := edge(v1, v2, p) / area
			w1 := edge(v2, v0, p) / area
			w2 := edge(v0, v1, p) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			depth := w0*v0.Z() + w1*v1.Z() + w2*v2.Z()
			fb.set(x, y, depth, c)
		}
	}
}

// rasterLine draws a depth-tested line (wireframe edges), DDA stepping.
func (fb *Framebuffer) rasterLine(a, b mgl32.Vec3, c mgl32.Vec4) {
	dx := b.X() - a.X()
	dy := b.Y() - a.Y()
	steps := int(math.Max(math.Abs(float64(dx)), math.Abs(float64(dy))))
	if steps == 0 {
		fb.set(int(a.X()), int(a.Y()), a.Z(), c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		x := a.X() + dx*t
		y := a.Y() + dy*t
		// small depth bias so edges win over their own faces
		depth := a.Z() + (b.Z()-a.Z())*t - 1e-4
		fb.set(int(x), int(y), depth, c)
	}
}

func edge(a, b, p mgl32.Vec3) float32 {
	return (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
}

func min3(a, b, c float32) float32 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3(a, b, c float32) float32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
