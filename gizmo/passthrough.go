package gizmo

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/partscope/partscope/scene"
)

// Passthrough attaches the gizmo directly to a single selected node.
// Drag detection diffs the local position against the drag-start capture;
// any movement persists the full local transform as user-modified.
type Passthrough struct {
	node     *scene.Node
	startPos mgl32.Vec3
}

func NewPassthrough(n *scene.Node) *Passthrough {
	return &Passthrough{node: n, startPos: n.Transform.Position}
}

func (p *Passthrough) Node() *scene.Node {
	return p.node
}

// Sync runs once per frame during a drag. Returns whether the node moved.
func (p *Passthrough) Sync() bool {
	if p.node.Transform.Position == p.startPos {
		return false
	}
	modified := p.node.Transform
	p.node.UserModified = &modified
	return true
}
