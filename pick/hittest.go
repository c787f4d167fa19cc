package pick

import (
	"math"

	"github.com/partscope/partscope/scene"
)

// maxAncestorDepth bounds the upward walk when resolving a raw mesh hit to
// its owning model and selectable ancestor.
const maxAncestorDepth = 20

type Hit struct {
	// Node is the resolved selectable node, never the raw mesh unless that
	// mesh is itself the selectable one.
	Node  *scene.Node
	Model *scene.Model

	Distance float32
}

type HitTester struct {
	reg *scene.Registry
}

func NewHitTester(reg *scene.Registry) *HitTester {
	return &HitTester{reg: reg}
}

// Pick casts the ray against every mesh of every registered model, takes
// the nearest triangle intersection and resolves its ancestor chain.
// A miss (no geometry, or no selectable ancestor) returns nil.
func (h *HitTester) Pick(r Ray) *Hit {
	var nearest *scene.Node
	best := float32(math.Inf(1))

	for _, m := range h.reg.Models() {
		if m.Root == nil {
			continue
		}
		m.Root.Traverse(func(n *scene.Node) bool {
			if n.Kind != scene.KindMesh || n.Mesh == nil {
				return true
			}
			world := n.WorldMatrix()
			bounds := n.Mesh.LocalBounds()
			if bounds.IsDegenerate() {
				return true
			}
			// coarse reject on the world box before triangle tests
			if _, ok := r.IntersectAABB(bounds.Transformed(world)); !ok {
				return true
			}
			if t, ok := r.IntersectMesh(n.Mesh, world); ok && t < best {
				best = t
				nearest = n
			}
			return true
		})
	}

	if nearest == nil {
		return nil
	}
	return h.resolve(nearest, best)
}

// resolve walks up from the raw mesh hit: the nearest ancestor with an
// owner-model link names the model, the nearest selectable ancestor names
// the node, preferring a composite over a leaf.
func (h *HitTester) resolve(raw *scene.Node, dist float32) *Hit {
	var model *scene.Model
	var selected *scene.Node

	depth := 0
	for n := raw; n != nil && depth < maxAncestorDepth; n = n.Parent {
		if model == nil && n.OwnerModel >= 0 {
			model = h.reg.Model(n.OwnerModel)
		}
		if n.Selectable {
			if selected == nil {
				selected = n
			} else if !selected.IsComposite() && n.IsComposite() {
				selected = n
			}
			if selected.IsComposite() {
				break
			}
		}
		depth++
	}

	if selected == nil || model == nil {
		return nil
	}
	return &Hit{Node: selected, Model: model, Distance: dist}
}
