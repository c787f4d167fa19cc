package snapshot

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/partscope/partscope/scene"
)

func boxMesh(half float32) *scene.Mesh {
	return &scene.Mesh{
		Vertices: []mgl32.Vec3{
			{-half, -half, -half}, {half, -half, -half},
			{half, half, -half}, {-half, half, -half},
			{-half, -half, half}, {half, -half, half},
			{half, half, half}, {-half, half, half},
		},
		Indexes: []uint32{
			0, 1, 2, 0, 2, 3,
			4, 6, 5, 4, 7, 6,
			0, 4, 5, 0, 5, 1,
			3, 2, 6, 3, 6, 7,
			0, 3, 7, 0, 7, 4,
			1, 5, 6, 1, 6, 2,
		},
		Material: scene.DefaultMaterial(),
	}
}

func boxNode() *scene.Node {
	n := scene.NewNode("box", "Box", scene.KindMesh)
	n.Mesh = boxMesh(1)
	return n
}

func TestCloneIsDetached(t *testing.T) {
	root := scene.NewNode("root", "root", scene.KindGroup)
	n := boxNode()
	root.AddChild(n)
	n.OwnerModel = 3

	c := cloneSubtree(n)
	if c.Parent != nil {
		t.Error("clone must not keep the live parent")
	}
	if c.OwnerModel != -1 {
		t.Error("clone must not keep the registry back-link")
	}

	restyle(c, StyleDimmed)
	if n.Mesh.Material.Color == dimmedColor {
		t.Error("restyling the clone changed the live material")
	}
	if c.Mesh.Material.Color != dimmedColor {
		t.Error("clone material not restyled")
	}
	// geometry is shared, not copied
	if &c.Mesh.Vertices[0] != &n.Mesh.Vertices[0] {
		t.Error("clone should share vertex storage")
	}
}

func TestBakeWorldTransform(t *testing.T) {
	root := scene.NewNode("root", "root", scene.KindGroup)
	root.Transform.Position = mgl32.Vec3{5, 0, 0}
	root.Transform.Scale = mgl32.Vec3{2, 2, 2}
	n := boxNode()
	n.Transform.Position = mgl32.Vec3{1, 0, 0}
	root.AddChild(n)

	c := cloneSubtree(n)
	bakeWorldTransform(c, n)

	want := n.WorldPosition()
	if c.WorldPosition().Sub(want).Len() > 1e-5 {
		t.Errorf("baked position=%v; expected %v", c.WorldPosition(), want)
	}
	if c.Transform.Scale != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("baked scale=%v; expected (2,2,2)", c.Transform.Scale)
	}
}

func TestNormalizeRecenters(t *testing.T) {
	n := boxNode()
	n.Transform.Position = mgl32.Vec3{10, -4, 2}

	pivot := normalize(cloneAndBake(n))
	if pivot == nil {
		t.Fatal("expected a pivot")
	}
	b := pivot.WorldBounds()
	if b.Center().Len() > 1e-4 {
		t.Errorf("normalized center=%v; expected origin", b.Center())
	}
	if mgl32.Abs(b.LongestDimension()-normalizedSize) > 1e-4 {
		t.Errorf("normalized size=%v; expected %v", b.LongestDimension(), normalizedSize)
	}
}

func cloneAndBake(n *scene.Node) *scene.Node {
	c := cloneSubtree(n)
	bakeWorldTransform(c, n)
	return c
}

func TestSnapshotProducesPNG(t *testing.T) {
	r := NewRenderer(64, 64)
	data, err := r.Snapshot(boxNode(), StyleNormal)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty snapshot")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("not a decodable png: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Errorf("bounds=%v; expected 64x64", img.Bounds())
	}

	// the box must actually be visible: some pixel differs from the clear color
	bgR, bgG, bgB, _ := img.At(0, 0).RGBA()
	found := false
	for y := 0; y < 64 && !found; y++ {
		for x := 0; x < 64 && !found; x++ {
			r0, g0, b0, _ := img.At(x, y).RGBA()
			if r0 != bgR || g0 != bgG || b0 != bgB {
				found = true
			}
		}
	}
	if !found {
		t.Error("snapshot is entirely background")
	}
}

func TestSnapshotStylesDiffer(t *testing.T) {
	r := NewRenderer(64, 64)
	normal, err := r.Snapshot(boxNode(), StyleNormal)
	if err != nil {
		t.Fatal(err)
	}
	wire, err := r.Snapshot(boxNode(), StyleWireframe)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(normal, wire) {
		t.Error("wireframe snapshot should differ from normal")
	}
}

func TestSnapshotDegenerateBoundsNoImage(t *testing.T) {
	r := NewRenderer(64, 64)
	empty := scene.NewNode("empty", "Empty", scene.KindGroup)
	data, err := r.Snapshot(empty, StyleNormal)
	if err != nil {
		t.Fatalf("degenerate bounds should not error: %v", err)
	}
	if data != nil {
		t.Error("degenerate bounds should produce no image")
	}
}

func TestSnapshotRestoresRendererState(t *testing.T) {
	r := NewRenderer(32, 32)
	before := r.State()
	if _, err := r.Snapshot(boxNode(), StyleDimmed); err != nil {
		t.Fatal(err)
	}
	after := r.State()
	if after.Target != before.Target || after.AutoClear != before.AutoClear ||
		after.ClearColor != before.ClearColor {
		t.Errorf("renderer state not restored: before=%+v after=%+v", before, after)
	}
}

func TestFramebufferDepthTest(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	fb.Clear(mgl32.Vec4{0, 0, 0, 1})

	near := mgl32.Vec4{1, 0, 0, 1}
	far := mgl32.Vec4{0, 1, 0, 1}
	fb.set(4, 4, 0.2, near)
	fb.set(4, 4, 0.8, far)
	if fb.At(4, 4) != near {
		t.Error("farther fragment overwrote nearer one")
	}
	fb.set(4, 4, 0.1, far)
	if fb.At(4, 4) != far {
		t.Error("nearer fragment rejected")
	}
}
