package snapshot

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/partscope/partscope/scene"
)

type Style int

const (
	StyleNormal Style = iota
	StyleDimmed
	StyleWireframe
)

const (
	normalizedSize = 2.0
	minScaleFactor = 0.001
	maxScaleFactor = 1000.0
)

var (
	dimmedColor    = mgl32.Vec4{0.45, 0.45, 0.5, 1}
	wireframeColor = mgl32.Vec4{0.1, 0.6, 0.9, 1}
)

// cloneSubtree deep-copies the node hierarchy for off-screen rendering.
// Registry back-links and proxy caches are not carried over, so the clone
// holds no references into the live scene; geometry slices are shared
// (immutable) while materials are copied so restyling stays clone-only.
func cloneSubtree(n *scene.Node) *scene.Node {
	c := scene.NewNode(n.Id, n.Name, n.Kind)
	c.Transform = n.Transform
	if n.Mesh != nil {
		mesh := *n.Mesh
		c.Mesh = &mesh
	}
	for _, child := range n.Childs {
		c.AddChild(cloneSubtree(child))
	}
	return c
}

// bakeWorldTransform folds the original node's accumulated world transform
// into the clone's local one, so the parentless clone lands where the
// original renders.
func bakeWorldTransform(clone, original *scene.Node) {
	clone.Transform.Position = original.WorldPosition()
	clone.Transform.Rotation = original.WorldRotation()

	s := original.Transform.Scale
	for p := original.Parent; p != nil; p = p.Parent {
		for i := 0; i < 3; i++ {
			s[i] *= p.Transform.Scale[i]
		}
	}
	clone.Transform.Scale = s
}

// restyle rewrites the clone's materials for the requested style. The live
// scene is never touched.
func restyle(clone *scene.Node, style Style) {
	clone.Traverse(func(n *scene.Node) bool {
		if n.Mesh == nil {
			return true
		}
		switch style {
		case StyleDimmed:
			n.Mesh.Material.Color = dimmedColor
		case StyleWireframe:
			n.Mesh.Material.Color = wireframeColor
		}
		return true
	})
}

// normalize wraps the clone in a pivot that rescales it to the normalized
// size (factor clamped) and recenters the bounds at the origin. Returns
// the pivot, or nil when the bounds are degenerate.
func normalize(clone *scene.Node) *scene.Node {
	bounds := clone.WorldBounds()
	if bounds.IsDegenerate() {
		return nil
	}
	dim := bounds.LongestDimension()
	if dim <= 0 {
		return nil
	}

	factor := float32(normalizedSize) / dim
	if factor < minScaleFactor {
		factor = minScaleFactor
	} else if factor > maxScaleFactor {
		factor = maxScaleFactor
	}

	pivot := scene.NewNode("__snapshot_pivot", "", scene.KindGroup)
	pivot.Transform.Scale = mgl32.Vec3{factor, factor, factor}
	pivot.Transform.Position = bounds.Center().Mul(-factor)
	pivot.AddChild(clone)
	return pivot
}
