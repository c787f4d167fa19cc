package pick

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/partscope/partscope/scene"
)

type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// ScreenRay unprojects a normalized pointer coordinate (x,y in [-1,1],
// y up) through the inverse view-projection matrix into a world ray.
func ScreenRay(ndcX, ndcY float32, invViewProj mgl32.Mat4) Ray {
	unproject := func(z float32) mgl32.Vec3 {
		p := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, z, 1})
		if p.W() != 0 {
			return p.Vec3().Mul(1 / p.W())
		}
		return p.Vec3()
	}
	near := unproject(-1)
	far := unproject(1)

	dir := far.Sub(near)
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	return Ray{Origin: near, Direction: dir}
}

// IntersectAABB is the slab test. Returns the entry distance, or the exit
// distance when the origin is inside the box.
func (r Ray) IntersectAABB(box scene.AABB) (float32, bool) {
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))

	for i := 0; i < 3; i++ {
		if r.Direction[i] != 0 {
			t1 := (box.Min[i] - r.Origin[i]) / r.Direction[i]
			t2 := (box.Max[i] - r.Origin[i]) / r.Direction[i]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if r.Origin[i] < box.Min[i] || r.Origin[i] > box.Max[i] {
			return 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle is Moller-Trumbore, front and back faces both count.
func (r Ray) IntersectTriangle(v0, v1, v2 mgl32.Vec3) (float32, bool) {
	const eps = 1e-7

	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(v0)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := e2.Dot(q) * inv
	if t < eps {
		return 0, false
	}
	return t, true
}

// IntersectMesh tests every triangle of the mesh in world space and
// returns the nearest hit distance.
func (r Ray) IntersectMesh(m *scene.Mesh, world mgl32.Mat4) (float32, bool) {
	best := float32(math.Inf(1))
	hit := false
	for i := 0; i+2 < len(m.Indexes); i += 3 {
		v0 := world.Mul4x1(m.Vertices[m.Indexes[i]].Vec4(1)).Vec3()
		v1 := world.Mul4x1(m.Vertices[m.Indexes[i+1]].Vec4(1)).Vec3()
		v2 := world.Mul4x1(m.Vertices[m.Indexes[i+2]].Vec4(1)).Vec3()
		if t, ok := r.IntersectTriangle(v0, v1, v2); ok && t < best {
			best = t
			hit = true
		}
	}
	return best, hit
}

func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}
