package pick

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/partscope/partscope/scene"
)

func quadMesh(half float32) *scene.Mesh {
	return &scene.Mesh{
		Vertices: []mgl32.Vec3{
			{-half, -half, 0}, {half, -half, 0}, {half, half, 0}, {-half, half, 0},
		},
		Indexes:  []uint32{0, 1, 2, 0, 2, 3},
		Material: scene.DefaultMaterial(),
	}
}

var aabbTests = []struct {
	origin, dir mgl32.Vec3
	min, max    mgl32.Vec3
	t           float32
	hit         bool
}{
	{mgl32.Vec3{0, 0, -10}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, 9, true},
	{mgl32.Vec3{0, 5, -10}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, 0, false},
	{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, 1, true},
	{mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, 0, false},
}

func TestIntersectAABB(t *testing.T) {
	for i, test := range aabbTests {
		r := Ray{Origin: test.origin, Direction: test.dir}
		got, hit := r.IntersectAABB(scene.AABB{Min: test.min, Max: test.max})
		if hit != test.hit {
			t.Errorf("case %d: hit=%v; expected %v", i, hit, test.hit)
			continue
		}
		if hit && mgl32.Abs(got-test.t) > 1e-5 {
			t.Errorf("case %d: t=%v; expected %v", i, got, test.t)
		}
	}
}

func TestIntersectTriangle(t *testing.T) {
	r := Ray{Origin: mgl32.Vec3{0.1, 0.1, -5}, Direction: mgl32.Vec3{0, 0, 1}}
	dist, hit := r.IntersectTriangle(
		mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, -1, 0}, mgl32.Vec3{0, 1, 0})
	if !hit {
		t.Fatal("expected hit")
	}
	if mgl32.Abs(dist-5) > 1e-5 {
		t.Errorf("t=%v; expected 5", dist)
	}

	if _, hit := r.IntersectTriangle(
		mgl32.Vec3{5, 5, 0}, mgl32.Vec3{6, 5, 0}, mgl32.Vec3{5, 6, 0}); hit {
		t.Error("expected miss on offset triangle")
	}
}

func TestScreenRayCenter(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	r := ScreenRay(0, 0, proj.Mul4(view).Inv())

	want := mgl32.Vec3{0, 0, -1}
	if r.Direction.Sub(want).Len() > 1e-4 {
		t.Errorf("center ray direction=%v; expected %v", r.Direction, want)
	}
}

// A mesh nested under a selectable group under a non-selectable wrapper
// must resolve to the group.
func TestPickResolvesToGroup(t *testing.T) {
	reg := scene.NewRegistry(scene.DefaultNamePolicy())

	root := scene.NewNode("root", "root", scene.KindGroup)
	wrapper := scene.NewNode("wrap", "mesh_wrap", scene.KindGroup)
	group := scene.NewNode("pump", "Pump", scene.KindGroup)
	group.HasMetadata = true
	leaf := scene.NewNode("pump.face", "", scene.KindMesh)
	leaf.Mesh = quadMesh(1)

	root.AddChild(group)
	group.AddChild(wrapper)
	wrapper.AddChild(leaf)

	reg.Register(&scene.Model{Id: "m", Name: "m", Root: root})

	ht := NewHitTester(reg)
	hit := ht.Pick(Ray{Origin: mgl32.Vec3{0, 0, -5}, Direction: mgl32.Vec3{0, 0, 1}})
	if hit == nil {
		t.Fatal("expected a hit")
	}
	if hit.Node != group {
		t.Errorf("resolved to %q; expected group %q", hit.Node.Id, group.Id)
	}
	if hit.Model == nil || hit.Model.Index != 0 {
		t.Errorf("wrong model resolution: %+v", hit.Model)
	}
}

func TestPickMissWithoutSelectableAncestor(t *testing.T) {
	reg := scene.NewRegistry(scene.DefaultNamePolicy())

	root := scene.NewNode("root", "", scene.KindGroup)
	leaf := scene.NewNode("leaf", "", scene.KindMesh)
	leaf.Mesh = quadMesh(1)
	root.AddChild(leaf)
	reg.Register(&scene.Model{Id: "m", Root: root})

	ht := NewHitTester(reg)
	if hit := ht.Pick(Ray{Origin: mgl32.Vec3{0, 0, -5}, Direction: mgl32.Vec3{0, 0, 1}}); hit != nil {
		t.Errorf("expected miss, got %q", hit.Node.Id)
	}
}

func TestPickEmptyRegistry(t *testing.T) {
	ht := NewHitTester(scene.NewRegistry(scene.DefaultNamePolicy()))
	if hit := ht.Pick(Ray{Origin: mgl32.Vec3{0, 0, -5}, Direction: mgl32.Vec3{0, 0, 1}}); hit != nil {
		t.Error("expected miss on empty registry")
	}
}

func TestDragTrackerClickVsTravel(t *testing.T) {
	now := time.Now()
	var d DragTracker

	d.PointerDown(100, 100)
	d.PointerMove(101, 101)
	if !d.PointerUp(now) {
		t.Error("small travel should still be a click")
	}

	d.PointerDown(100, 100)
	d.PointerMove(130, 100)
	if d.PointerUp(now) {
		t.Error("large travel should suppress the click")
	}
	if d.Mode(now) != JustReleased {
		t.Errorf("mode=%v; expected JustReleased", d.Mode(now))
	}
}

func TestDragTrackerCooldown(t *testing.T) {
	now := time.Now()
	var d DragTracker

	d.GizmoDragStart()
	if !d.GizmoActive() {
		t.Fatal("gizmo should be active")
	}
	d.GizmoDragEnd(now)

	// click right after the gizmo release is swallowed
	d.PointerDown(10, 10)
	if d.PointerUp(now.Add(50 * time.Millisecond)) {
		t.Error("click inside the cooldown should be suppressed")
	}

	// after the cooldown it selects again
	later := now.Add(ReleaseCooldown + 10*time.Millisecond)
	if d.Mode(later) != Idle {
		t.Errorf("mode=%v; expected Idle after cooldown", d.Mode(later))
	}
	d.PointerDown(10, 10)
	if !d.PointerUp(later) {
		t.Error("click after the cooldown should pass")
	}
}
