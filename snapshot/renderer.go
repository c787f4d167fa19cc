package snapshot

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/partscope/partscope/scene"
)

const (
	snapshotFov = 35.0
	// fixed studio camera placement
	cameraElevation = 22.0 // degrees above the horizon
	cameraAzimuth   = 40.0
	// distance margin on top of the exact fit
	distanceMargin = 1.15
)

var defaultClearColor = mgl32.Vec4{0.94, 0.94, 0.96, 1}

// RenderState is the renderer-global state that must survive a snapshot
// pass, since snapshots interleave with live rendering.
type RenderState struct {
	Target     *Framebuffer // nil means the default (on-screen) target
	ClearColor mgl32.Vec4
	AutoClear  bool
}

// Renderer produces static images of a part or model subtree by rendering
// a restyled clone into an off-screen target.
type Renderer struct {
	Width, Height int

	state RenderState
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		Width:  width,
		Height: height,
		state: RenderState{
			ClearColor: defaultClearColor,
			AutoClear:  true,
		},
	}
}

func (r *Renderer) State() RenderState {
	return r.state
}

func (r *Renderer) SetState(s RenderState) {
	r.state = s
}

// Snapshot renders the subtree with the requested style and returns a PNG.
// A subtree without renderable bounds produces no image and no error.
func (r *Renderer) Snapshot(target *scene.Node, style Style) ([]byte, error) {
	if target == nil {
		return nil, errors.Errorf("snapshot of nil node")
	}

	clone := cloneSubtree(target)
	bakeWorldTransform(clone, target)
	restyle(clone, style)

	pivot := normalize(clone)
	if pivot == nil {
		log.Printf("[snapshot] %q has degenerate bounds, no image", target.Id)
		return nil, nil
	}

	// save and restore the renderer-global state around the pass
	saved := r.state
	defer func() { r.state = saved }()

	fb := NewFramebuffer(r.Width, r.Height)
	r.state.Target = fb
	r.state.AutoClear = false
	fb.Clear(r.state.ClearColor)

	r.renderTree(fb, pivot, style)

	img := readback(fb)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrapf(err, "Failed to encode snapshot of %q", target.Id)
	}
	return buf.Bytes(), nil
}

// studioCamera places the camera at the fixed elevation/azimuth, at a
// distance derived from the normalized size and the field of view.
func studioCamera(aspect float32) (view, proj mgl32.Mat4) {
	halfFov := float64(mgl32.DegToRad(snapshotFov / 2))
	dist := float32(normalizedSize/2.0/math.Tan(halfFov)) * distanceMargin

	el := float64(mgl32.DegToRad(cameraElevation))
	az := float64(mgl32.DegToRad(cameraAzimuth))
	eye := mgl32.Vec3{
		dist * float32(math.Cos(el)*math.Sin(az)),
		dist * float32(math.Sin(el)),
		dist * float32(math.Cos(el)*math.Cos(az)),
	}

	view = mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj = mgl32.Perspective(mgl32.DegToRad(snapshotFov), aspect, 0.01, 100)
	return view, proj
}

func (r *Renderer) renderTree(fb *Framebuffer, root *scene.Node, style Style) {
	view, proj := studioCamera(float32(fb.Width) / float32(fb.Height))
	viewProj := proj.Mul4(view)
	lights := newStudioLights()

	root.Traverse(func(n *scene.Node) bool {
		if n.Kind != scene.KindMesh || n.Mesh == nil {
			return true
		}
		world := n.WorldMatrix()
		mesh := n.Mesh

		for i := 0; i+2 < len(mesh.Indexes); i += 3 {
			var ws [3]mgl32.Vec3
			var ss [3]mgl32.Vec3
			visible := true
			for k := 0; k < 3; k++ {
				ws[k] = world.Mul4x1(mesh.Vertices[mesh.Indexes[i+k]].Vec4(1)).Vec3()
				clip := viewProj.Mul4x1(ws[k].Vec4(1))
				if clip.W() <= 0 {
					visible = false
					break
				}
				ndc := clip.Vec3().Mul(1 / clip.W())
				ss[k] = mgl32.Vec3{
					(ndc.X() + 1) / 2 * float32(fb.Width),
					(ndc.Y() + 1) / 2 * float32(fb.Height), // row 0 at the bottom
					ndc.Z(),
				}
			}
			if !visible {
				continue
			}

			if style == StyleWireframe {
				// flattened color, edges only
				fb.rasterLine(ss[0], ss[1], mesh.Material.Color)
				fb.rasterLine(ss[1], ss[2], mesh.Material.Color)
				fb.rasterLine(ss[2], ss[0], mesh.Material.Color)
				continue
			}

			normal := faceNormal(ws[0], ws[1], ws[2])
			fb.rasterTriangle(ss[0], ss[1], ss[2], lights.shade(normal, mesh.Material.Color))
		}
		return true
	})
}

func faceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// readback converts the bottom-up framebuffer into a top-down image.
func readback(fb *Framebuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		srcRow := fb.Height - 1 - y
		for x := 0; x < fb.Width; x++ {
			c := fb.At(x, srcRow)
			img.SetRGBA(x, y, color.RGBA{
				R: channel(c.X()),
				G: channel(c.Y()),
				B: channel(c.Z()),
				A: channel(c.W()),
			})
		}
	}
	return img
}

func channel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
