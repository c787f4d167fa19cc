package gizmo

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/partscope/partscope/scene"
)

// ProxyGroup is the virtual anchor a multi-selection gizmo attaches to.
// It composes member transforms without reparenting anyone: membership
// changes never touch the scene graph. The group exists only while the
// selection holds two or more nodes.
type ProxyGroup struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	members []*scene.Node
	epoch   uint64
}

// RotationFromEulerDeg builds a gizmo rotation from the euler angles (in
// degrees) the transform controls hand over. The control angle sense is
// clockwise when looking down the positive axis toward the origin: +90
// about Y carries +X onto +Z. Every rotation entering the gizmo layer
// must be constructed here so the sense stays uniform.
func RotationFromEulerDeg(e [3]float32) mgl32.Quat {
	return mgl32.AnglesToQuat(
		-mgl32.DegToRad(e[0]), -mgl32.DegToRad(e[1]), -mgl32.DegToRad(e[2]), mgl32.XYZ)
}

// Build captures a new proxy for the given members. The anchor sits at
// the arithmetic mean of member world positions with identity rotation
// and scale; each member caches its relative offset, current local
// rotation (as a quaternion, so later composition has no gimbal issues)
// and local scale, tagged with the selection epoch.
func Build(members []*scene.Node, epoch uint64) *ProxyGroup {
	if len(members) < 2 {
		return nil
	}

	mean := mgl32.Vec3{}
	for _, n := range members {
		mean = mean.Add(n.WorldPosition())
	}
	mean = mean.Mul(1 / float32(len(members)))

	g := &ProxyGroup{
		Position: mean,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		members:  append([]*scene.Node(nil), members...),
		epoch:    epoch,
	}
	for _, n := range members {
		n.Proxy = scene.ProxyCache{
			Valid:           true,
			Epoch:           epoch,
			RelativeOffset:  n.WorldPosition().Sub(mean),
			InitialRotation: n.Transform.Rotation,
			InitialScale:    n.Transform.Scale,
		}
	}
	return g
}

func (g *ProxyGroup) Epoch() uint64 {
	return g.epoch
}

func (g *ProxyGroup) Members() []*scene.Node {
	return g.members
}

// SyncIdle recenters the anchor on the live mean of member world
// positions, so movement from outside the gizmo (explosion) keeps the
// anchor visually centered. Runs on frames without an active drag.
func (g *ProxyGroup) SyncIdle() {
	mean := mgl32.Vec3{}
	count := 0
	for _, n := range g.members {
		if n.Proxy.Valid && n.Proxy.Epoch == g.epoch {
			mean = mean.Add(n.WorldPosition())
			count++
		}
	}
	if count == 0 {
		return
	}
	g.Position = mean.Mul(1 / float32(count))
}

// SyncDrag pushes the proxy transform onto every epoch-current member:
// the cached offset is rotated by the proxy quaternion, scaled
// componentwise, and added to the proxy position; the result is converted
// into the member's parent space. Rotation composes as quaternion product
// with the cached initial rotation, scale as componentwise product.
// The outcome is persisted as the member's user-modified transform, which
// becomes the explosion baseline from then on.
func (g *ProxyGroup) SyncDrag() {
	for _, n := range g.members {
		if !n.Proxy.Valid || n.Proxy.Epoch != g.epoch {
			continue
		}

		offset := g.Rotation.Rotate(n.Proxy.RelativeOffset)
		for i := 0; i < 3; i++ {
			offset[i] *= g.Scale[i]
		}
		worldPos := g.Position.Add(offset)

		localPos := n.ParentWorldMatrix().Inv().Mul4x1(worldPos.Vec4(1)).Vec3()
		localRot := g.Rotation.Mul(n.Proxy.InitialRotation).Normalize()
		localScale := n.Proxy.InitialScale
		for i := 0; i < 3; i++ {
			localScale[i] *= g.Scale[i]
		}

		n.Transform.Position = localPos
		n.Transform.Rotation = localRot
		n.Transform.Scale = localScale

		modified := n.Transform
		n.UserModified = &modified
	}
}

// Release clears every member's cached proxy fields. Must run whenever
// the selection drops below two members, so a later multi-select never
// reuses stale captures.
func (g *ProxyGroup) Release() {
	for _, n := range g.members {
		n.ClearProxyCache()
	}
	g.members = nil
}
