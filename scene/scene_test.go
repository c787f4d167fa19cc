package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func vecNear(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func boxMesh(half float32) *Mesh {
	return &Mesh{
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
		Material: DefaultMaterial(),
	}
}

func TestWorldMatrixComposition(t *testing.T) {
	root := NewNode("root", "root", KindGroup)
	child := NewNode("child", "child", KindMesh)
	root.AddChild(child)

	root.Transform.Position = mgl32.Vec3{1, 2, 3}
	child.Transform.Position = mgl32.Vec3{0, 0, 1}
	root.Transform.Rotation = mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 1, 0})

	// (0,0,1) rotated 90 deg about Y lands on (1,0,0), then translated.
	want := mgl32.Vec3{2, 2, 3}
	if got := child.WorldPosition(); !vecNear(got, want, 1e-5) {
		t.Errorf("WorldPosition()=%v; expected %v", got, want)
	}
}

func TestWorldRotationAccumulates(t *testing.T) {
	root := NewNode("root", "root", KindGroup)
	child := NewNode("child", "child", KindMesh)
	root.AddChild(child)

	root.Transform.Rotation = mgl32.QuatRotate(float32(math.Pi/4), mgl32.Vec3{0, 1, 0})
	child.Transform.Rotation = mgl32.QuatRotate(float32(math.Pi/4), mgl32.Vec3{0, 1, 0})

	rotated := child.WorldRotation().Rotate(mgl32.Vec3{0, 0, 1})
	want := mgl32.Vec3{1, 0, 0}
	if !vecNear(rotated, want, 1e-5) {
		t.Errorf("world rotation of (0,0,1)=%v; expected %v", rotated, want)
	}
}

func TestWorldBounds(t *testing.T) {
	root := NewNode("root", "root", KindGroup)
	a := NewNode("a", "a", KindMesh)
	a.Mesh = boxMesh(1)
	a.Transform.Position = mgl32.Vec3{4, 0, 0}
	root.AddChild(a)

	b := root.WorldBounds()
	if !vecNear(b.Center(), mgl32.Vec3{4, 0, 0}, 1e-5) {
		t.Errorf("bounds center=%v; expected (4,0,0)", b.Center())
	}
	if d := b.LongestDimension(); mgl32.Abs(d-2) > 1e-5 {
		t.Errorf("longest dimension=%v; expected 2", d)
	}
}

func TestDegenerateBounds(t *testing.T) {
	n := NewNode("n", "n", KindGroup)
	if b := n.WorldBounds(); !b.IsDegenerate() {
		t.Errorf("meshless subtree bounds should be degenerate, got %+v", b)
	}
}

var policyTests = []struct {
	name       string
	metadata   bool
	childs     int
	policy     NamePolicy
	selectable bool
}{
	{"Valve", true, 0, NamePolicy{Marker: "mesh_", Mode: MatchSubstring}, true},
	{"", true, 1, NamePolicy{Marker: "mesh_", Mode: MatchSubstring}, false},
	{"Housing", false, 0, NamePolicy{Marker: "mesh_", Mode: MatchSubstring}, false},
	{"Housing", false, 2, NamePolicy{Marker: "mesh_", Mode: MatchSubstring}, true},
	{"mesh_004", true, 1, NamePolicy{Marker: "mesh_", Mode: MatchSubstring}, false},
	{"body_mesh_01", true, 1, NamePolicy{Marker: "mesh_", Mode: MatchSubstring}, false},
	{"body_mesh_01", true, 1, NamePolicy{Marker: "mesh_", Mode: MatchPrefix}, true},
	{"mesh_004", true, 1, NamePolicy{Marker: "mesh_", Mode: MatchPrefix}, false},
}

func TestNamePolicy(t *testing.T) {
	for _, test := range policyTests {
		n := NewNode("x", test.name, KindGroup)
		n.HasMetadata = test.metadata
		for i := 0; i < test.childs; i++ {
			n.AddChild(NewNode("c", "c", KindMesh))
		}
		if got := test.policy.IsSelectable(n); got != test.selectable {
			t.Errorf("IsSelectable(%q, meta=%v, childs=%d, mode=%d)=%v; expected %v",
				test.name, test.metadata, test.childs, test.policy.Mode, got, test.selectable)
		}
	}
}

func TestRegistryPartsPreferComposite(t *testing.T) {
	reg := NewRegistry(DefaultNamePolicy())

	root := NewNode("root", "root", KindGroup)
	leaf := NewNode("valve", "Valve", KindMesh)
	leaf.Mesh = boxMesh(1)
	leaf.HasMetadata = true
	group := NewNode("valve", "Valve", KindGroup)
	group.HasMetadata = true
	root.AddChild(leaf)
	root.AddChild(group)
	group.AddChild(NewNode("valve.body", "mesh_body", KindMesh))

	reg.Register(&Model{Id: "m0", Name: "pump", Root: root})

	parts := reg.ListSelectableParts()
	var found *PartInfo
	for i := range parts {
		if parts[i].Id == "valve" {
			if found != nil {
				t.Fatalf("duplicate id listed twice: %+v", parts)
			}
			found = &parts[i]
		}
	}
	if found == nil {
		t.Fatal("valve not listed")
	}
	if n := reg.NodeById("valve"); n == nil {
		t.Fatal("NodeById(valve) = nil")
	}
	// the composite must have won the duplicate id
	if !group.Selectable {
		t.Error("group should be selectable")
	}
}

func TestRegistryUnregisterKeepsSlots(t *testing.T) {
	reg := NewRegistry(DefaultNamePolicy())
	r0 := NewNode("r0", "r0", KindGroup)
	r1 := NewNode("r1", "r1", KindGroup)
	reg.Register(&Model{Id: "a", Root: r0})
	i1 := reg.Register(&Model{Id: "b", Root: r1})

	reg.Unregister(0)
	if reg.Model(0) != nil {
		t.Error("model 0 should be gone")
	}
	if m := reg.Model(i1); m == nil || m.Index != i1 {
		t.Errorf("model 1 lost its slot: %+v", m)
	}
	if r1.OwnerModel != i1 {
		t.Errorf("owner link broken: %d", r1.OwnerModel)
	}
}
