package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is triangle geometry in node local space. Indexes triple-group into
// triangles; Normals are optional and per-vertex when present.
type Mesh struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	Indexes  []uint32

	Material Material
}

type Material struct {
	Name  string
	Color mgl32.Vec4
}

func DefaultMaterial() Material {
	return Material{Name: "default", Color: mgl32.Vec4{0.8, 0.8, 0.8, 1}}
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indexes) / 3
}

// LocalBounds computes the AABB over the raw vertices. Empty meshes yield a
// degenerate box.
func (m *Mesh) LocalBounds() AABB {
	b := EmptyAABB()
	for _, v := range m.Vertices {
		b = b.ExtendPoint(v)
	}
	return b
}
