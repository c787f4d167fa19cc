package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func (b AABB) IsDegenerate() bool {
	for i := 0; i < 3; i++ {
		if !(b.Min[i] <= b.Max[i]) {
			return true
		}
	}
	return b.Size().Len() == 0
}

func (b AABB) ExtendPoint(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

func (b AABB) Union(o AABB) AABB {
	if o.IsDegenerate() {
		return b
	}
	if b.IsDegenerate() {
		return o
	}
	return b.ExtendPoint(o.Min).ExtendPoint(o.Max)
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl32.Vec3 {
	if b.Min.X() > b.Max.X() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// LongestDimension returns the largest extent over the three axes.
func (b AABB) LongestDimension() float32 {
	s := b.Size()
	d := s.X()
	if s.Y() > d {
		d = s.Y()
	}
	if s.Z() > d {
		d = s.Z()
	}
	return d
}

// Transformed returns the AABB of the 8 transformed corners.
func (b AABB) Transformed(m mgl32.Mat4) AABB {
	if b.IsDegenerate() {
		return b
	}
	out := EmptyAABB()
	for i := 0; i < 8; i++ {
		c := mgl32.Vec3{b.Min.X(), b.Min.Y(), b.Min.Z()}
		if i&1 != 0 {
			c[0] = b.Max.X()
		}
		if i&2 != 0 {
			c[1] = b.Max.Y()
		}
		if i&4 != 0 {
			c[2] = b.Max.Z()
		}
		out = out.ExtendPoint(m.Mul4x1(c.Vec4(1)).Vec3())
	}
	return out
}

// WorldBounds unions the world-space mesh bounds of the whole subtree.
func (n *Node) WorldBounds() AABB {
	b := EmptyAABB()
	n.Traverse(func(cur *Node) bool {
		if cur.Kind == KindMesh && cur.Mesh != nil {
			b = b.Union(cur.Mesh.LocalBounds().Transformed(cur.WorldMatrix()))
		}
		return true
	})
	return b
}
